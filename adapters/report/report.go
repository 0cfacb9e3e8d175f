// Package report renders analytics reports as Markdown and as HTML pages.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
	"safetyhub/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const pageTitle = "Safety Analytics Report"

// maxStrongPairs caps the correlation list.
const maxStrongPairs = 10

// Renderer implements ports.ReportRenderer.
type Renderer struct{}

var _ ports.ReportRenderer = Renderer{}

// NewRenderer creates a renderer.
func NewRenderer() Renderer {
	return Renderer{}
}

// HTML renders the Markdown report as a complete HTML page.
func (r Renderer) HTML(report *analytics.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(r.Markdown(report))
	renderer := html.NewRenderer(html.RendererOptions{
		Title: pageTitle,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// Markdown renders the report. Sections absent from the report are skipped.
func (r Renderer) Markdown(report *analytics.Report) []byte {
	var b strings.Builder
	b.WriteString("# " + pageTitle + "\n\n")
	if report == nil {
		b.WriteString("No analytics have been run yet.\n")
		return []byte(b.String())
	}
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.Timestamp)
	fmt.Fprintf(&b, "- Core collections: %s\n", list(report.CoreCollectionsAnalyzed))
	fmt.Fprintf(&b, "- Extended collections: %s\n", list(report.ExtendedCollectionsAnalyzed))

	if f := report.PredictiveForecasting; f != nil {
		writeRisk(&b, f)
	}
	if c := report.ComplianceScorecard; c != nil {
		writeCompliance(&b, c)
	}
	if rc := report.RootCauseAnalysis; rc != nil {
		writeRootCause(&b, rc)
	}
	if bm := report.BenchmarkingAnalysis; bm != nil {
		writeBenchmark(&b, bm)
	}
	if ca := report.CorrelationAnalysis; ca != nil {
		writeCorrelations(&b, ca)
	}
	return []byte(b.String())
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}

func writeRisk(b *strings.Builder, f *analytics.PredictiveForecast) {
	b.WriteString("\n## Risk Assessment\n\n")
	fmt.Fprintf(b, "Current risk score **%.2f** (%s)\n\n", f.CurrentRiskScore, f.RiskLevel)

	rows := [][2]string{}
	add := func(name string, v *int) {
		if v != nil {
			rows = append(rows, [2]string{name, fmt.Sprint(*v)})
		}
	}
	factors := f.RiskFactors
	add("Incidents", factors.IncidentCount)
	add("High severity incidents", factors.HighSeverityIncidents)
	if factors.AvgMonthlyIncidents != nil {
		rows = append(rows, [2]string{"Average monthly incidents", fmt.Sprintf("%.2f", *factors.AvgMonthlyIncidents)})
	}
	if factors.IncidentTrend != "" {
		rows = append(rows, [2]string{"Incident trend", string(factors.IncidentTrend)})
	}
	add("Inspections", factors.InspectionCount)
	add("Non-compliant inspections", factors.NonCompliantInspections)
	add("Trainings", factors.TrainingCount)
	add("Incomplete trainings", factors.IncompleteTrainings)
	writeTable(b, []string{"Factor", "Value"}, rows)

	m := f.ForecastingModel
	if m == nil {
		return
	}
	b.WriteString("\n### Incident Forecast\n\n")
	r2 := "n/a"
	if m.R2Score != nil {
		r2 = fmt.Sprintf("%.3f", *m.R2Score)
	}
	fmt.Fprintf(b, "Trained on %d monthly rows (MSE %.3f, R² %s).\n\n", m.TrainingRows, m.MSE, r2)
	rows = rows[:0]
	for i, p := range m.FuturePredictions {
		period := fmt.Sprintf("Month %d", i+1)
		if i < len(m.TimePeriods) {
			period = m.TimePeriods[i]
		}
		rows = append(rows, [2]string{period, fmt.Sprintf("%.1f", p)})
	}
	writeTable(b, []string{"Period", "Predicted incidents"}, rows)
}

func writeCompliance(b *strings.Builder, c *analytics.ComplianceScorecard) {
	b.WriteString("\n## Compliance Scorecard\n\n")
	var rows [][2]string
	if c.TotalInspections != nil {
		rows = append(rows,
			[2]string{"Inspections", fmt.Sprint(*c.TotalInspections)},
			[2]string{"Compliance rate", fmt.Sprintf("%.1f%%", deref(c.ComplianceRate))},
		)
	}
	if c.TotalTrainings != nil {
		rows = append(rows,
			[2]string{"Trainings", fmt.Sprint(*c.TotalTrainings)},
			[2]string{"Completion rate", fmt.Sprintf("%.1f%%", deref(c.TrainingCompletionRate))},
		)
	}
	if len(rows) == 0 {
		b.WriteString("No inspection or training status data.\n")
		return
	}
	writeTable(b, []string{"Metric", "Value"}, rows)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func writeRootCause(b *strings.Builder, rc *analytics.RootCause) {
	b.WriteString("\n## Root Cause Analysis\n\n")
	if rc.TotalIncidents != nil {
		fmt.Fprintf(b, "Total incidents: %d\n\n", *rc.TotalIncidents)
	}
	writeCounts(b, "Incidents by location", "Location", rc.IncidentLocations)
	writeCounts(b, "Incidents by department", "Department", rc.IncidentDepartments)
	writeCounts(b, "Monthly incident trend", "Month", rc.MonthlyIncidentTrend)
	writeCounts(b, "Severity distribution", "Severity", rc.IncidentSeverityDistribution)

	if len(rc.NearMissToIncidentRatios) > 0 {
		b.WriteString("\n### Near-miss to incident ratio\n\n")
		locations := make([]string, 0, len(rc.NearMissToIncidentRatios))
		for loc := range rc.NearMissToIncidentRatios {
			locations = append(locations, loc)
		}
		sort.Strings(locations)
		var rows [][2]string
		for _, loc := range locations {
			rows = append(rows, [2]string{safeVal(loc), fmt.Sprintf("%.2f", rc.NearMissToIncidentRatios[loc])})
		}
		writeTable(b, []string{"Location", "Ratio"}, rows)
	}
	if rc.AuditNonComplianceFindings != nil {
		fmt.Fprintf(b, "\nAudit non-compliance findings: %d\n", *rc.AuditNonComplianceFindings)
	}
	if rc.TotalViolations != nil {
		fmt.Fprintf(b, "\nSafety violations recorded: %d\n", *rc.TotalViolations)
	}
}

func writeBenchmark(b *strings.Builder, bm *analytics.Benchmark) {
	b.WriteString("\n## Benchmarking\n")
	writeCounts(b, "Incidents by department", "Department", bm.IncidentsByDepartment)
	writeCounts(b, "Incidents by location", "Location", bm.IncidentsByLocation)
	writeCounts(b, "Inspections by department", "Department", bm.InspectionsByDepartment)
	writeCounts(b, "Inspections by location", "Location", bm.InspectionsByLocation)
	writeCounts(b, "Trainings by department", "Department", bm.TrainingsByDepartment)
	writeCounts(b, "Trainings by location", "Location", bm.TrainingsByLocation)
}

func writeCorrelations(b *strings.Builder, ca *analytics.CorrelationAnalysis) {
	if len(ca.StrongCorrelations) == 0 {
		return
	}
	b.WriteString("\n## Strong Correlations\n\n")
	pairs := append([]analytics.CorrelationPair(nil), ca.StrongCorrelations...)
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Correlation) > math.Abs(pairs[j].Correlation)
	})
	for i, p := range pairs {
		if i == maxStrongPairs {
			break
		}
		fmt.Fprintf(b, "- %s ~ %s: r=%.3f\n", p.Variable1, p.Variable2, p.Correlation)
	}
}

func writeCounts(b *strings.Builder, title, label string, counts table.Counts) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	rows := make([][2]string, len(counts))
	for i, c := range counts {
		rows[i] = [2]string{safeVal(c.Value), fmt.Sprint(c.Count)}
	}
	writeTable(b, []string{label, "Count"}, rows)
}

func writeTable(b *strings.Builder, header []string, rows [][2]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", row[0], row[1])
	}
}
