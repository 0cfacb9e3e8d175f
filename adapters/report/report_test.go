package report

import (
	"strings"
	"testing"
	"time"

	"safetyhub/domain/analytics"
	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleReport() *analytics.Report {
	return &analytics.Report{
		RunID:                       core.RunID("run-1"),
		Timestamp:                   core.NewTimestamp(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		CoreCollectionsAnalyzed:     []string{analytics.Incidents, analytics.Inspections},
		ExtendedCollectionsAnalyzed: []string{},
		PredictiveForecasting: &analytics.PredictiveForecast{
			CurrentRiskScore: 16.8,
			RiskLevel:        analytics.RiskLow,
			RiskFactors: analytics.RiskFactors{
				IncidentCount: intPtr(12),
				IncidentTrend: analytics.TrendIncreasing,
			},
			ForecastingModel: &analytics.ForecastModel{
				MSE:               1.5,
				FuturePredictions: []float64{3, 4, 5},
				TimePeriods:       []string{"Month 1", "Month 2", "Month 3"},
				TrainingRows:      7,
			},
		},
		ComplianceScorecard: &analytics.ComplianceScorecard{
			TotalInspections: intPtr(4),
			ComplianceRate:   floatPtr(75),
		},
		RootCauseAnalysis: &analytics.RootCause{
			TotalIncidents:           intPtr(12),
			IncidentLocations:        table.Counts{{Value: "Plant|A", Count: 8}, {Value: "Plant B", Count: 4}},
			NearMissToIncidentRatios: map[string]float64{"Plant B": 0.5},
		},
		CorrelationAnalysis: &analytics.CorrelationAnalysis{
			StrongCorrelations: []analytics.CorrelationPair{
				{Variable1: "Incidents_cost", Variable2: "Incidents_injuries", Correlation: 0.75},
				{Variable1: "Incidents_cost", Variable2: "Incidents_days", Correlation: -0.9},
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := string(NewRenderer().Markdown(sampleReport()))

	assert.True(t, strings.HasPrefix(md, "# Safety Analytics Report\n"))
	assert.Contains(t, md, "- Run: `run-1`")
	assert.Contains(t, md, "- Extended collections: none")
	assert.Contains(t, md, "Current risk score **16.80** (Low)")
	assert.Contains(t, md, "| Incident trend | increasing |")
	assert.Contains(t, md, "R² n/a")
	assert.Contains(t, md, "| Month 3 | 5.0 |")
	assert.Contains(t, md, "| Compliance rate | 75.0% |")
	assert.Contains(t, md, "| Plant/A | 8 |")
	assert.Contains(t, md, "| Plant B | 0.50 |")
	assert.NotContains(t, md, "## Benchmarking")
	assert.Less(t, strings.Index(md, "r=-0.900"), strings.Index(md, "r=0.750"), "pairs are ordered by strength")
}

func TestMarkdownWithoutReport(t *testing.T) {
	assert.Contains(t, string(NewRenderer().Markdown(nil)), "No analytics have been run yet.")
}

func TestHTML(t *testing.T) {
	page := string(NewRenderer().HTML(sampleReport()))
	assert.Contains(t, page, "<title>Safety Analytics Report</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<code>run-1</code>")
}
