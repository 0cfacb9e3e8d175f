package api

import (
	"context"
	"net/http"

	"safetyhub/domain/analytics"
	"safetyhub/internal"
	"safetyhub/ports"

	"github.com/gin-gonic/gin"
)

// Prefix is the path prefix of every API route except the index.
const Prefix = "/api/v1"

// AnalyticsRunner runs the safety analytics and serves the dashboard report.
type AnalyticsRunner interface {
	Run(ctx context.Context) (*analytics.Report, error)
	Dashboard(ctx context.Context) (*analytics.Report, error)
}

// Dependencies are the collaborators the handlers delegate to.
type Dependencies struct {
	Store     ports.DocumentStore
	Charts    ports.ChartRenderer
	Reports   ports.ReportRenderer
	Analytics AnalyticsRunner

	// ModelPath is where trained models are saved when a request names no file.
	// Named files are placed in the same directory.
	ModelPath string
	// MaxBodyBytes limits request bodies; zero disables the limit.
	MaxBodyBytes int64
}

// Server represents the data processing HTTP API
type Server struct {
	router *gin.Engine
	logger *internal.Logger
}

// NewServer creates a server with every route registered.
func NewServer(deps Dependencies) *Server {
	s := &Server{
		router: gin.New(),
		logger: internal.DefaultLogger.With("api"),
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	if deps.MaxBodyBytes > 0 {
		s.router.Use(limitBody(deps.MaxBodyBytes))
	}
	s.setupRoutes(deps)
	return s
}

func (s *Server) setupRoutes(deps Dependencies) {
	data := NewDataHandler(deps.Store, deps.Charts, s.logger)
	models := NewModelHandler(deps.ModelPath, s.logger)
	dashboard := NewAnalyticsHandler(deps.Analytics, deps.Reports, s.logger)

	s.router.GET("/", s.index)

	v1 := s.router.Group(Prefix)
	{
		v1.GET("/health", s.health)
		v1.POST("/process-data", data.ProcessData)
		v1.POST("/visualize", data.Visualize)
		v1.POST("/upload", data.Upload)
		v1.GET("/collections/:name", data.Collection)

		v1.POST("/train-model", models.Train)
		v1.POST("/compare-models", models.Compare)
		v1.POST("/predict", models.Predict)

		v1.GET("/analytics", dashboard.Dashboard)
		v1.POST("/analytics/run", dashboard.Run)
		v1.GET("/analytics/report", dashboard.Report)
	}
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("Starting server on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Safety Hub Data Processing API",
		"version":     "1.0.0",
		"description": "Data processing, model training and safety analytics",
		"endpoints": gin.H{
			"health_check":     Prefix + "/health",
			"data_processing":  Prefix + "/process-data",
			"visualization":    Prefix + "/visualize",
			"ml_training":      Prefix + "/train-model",
			"ml_comparison":    Prefix + "/compare-models",
			"ml_prediction":    Prefix + "/predict",
			"upload":           Prefix + "/upload",
			"collections":      Prefix + "/collections/:name",
			"analytics":        Prefix + "/analytics",
			"analytics_run":    Prefix + "/analytics/run",
			"analytics_report": Prefix + "/analytics/report",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Data Processing API",
	})
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
