package api

import (
	"net/http"

	"safetyhub/internal"
	"safetyhub/ports"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the safety analytics report.
type AnalyticsHandler struct {
	analytics AnalyticsRunner
	reports   ports.ReportRenderer
	logger    *internal.Logger
}

func NewAnalyticsHandler(analytics AnalyticsRunner, reports ports.ReportRenderer, logger *internal.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		reports:   reports,
		logger:    logger,
	}
}

// Dashboard returns the cached report, running the analytics when nothing is cached.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	report, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, h.logger, "analytics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"analytics": report,
	})
}

// Run recomputes the analytics from the document store.
func (h *AnalyticsHandler) Run(c *gin.Context) {
	report, err := h.analytics.Run(c.Request.Context())
	if err != nil {
		fail(c, h.logger, "analytics_run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"analytics": report,
	})
}

// Report renders the dashboard report as an HTML page.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	report, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, h.logger, "analytics_report", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.reports.HTML(report))
}
