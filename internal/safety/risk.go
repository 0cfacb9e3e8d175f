package safety

import (
	"github.com/montanaflynn/stats"

	"safetyhub/domain/analytics"
)

// Composite risk weights.
const (
	incidentWeight     = 0.4
	highSeverityWeight = 2.0
	nonCompliantWeight = 0.3
	incompleteWeight   = 0.2

	increasingFactor = 1.2
	decreasingFactor = 0.8

	lowRiskBelow    = 20.0
	mediumRiskBelow = 50.0
)

func assessRisk(ds *Dataset) *analytics.RiskAssessment {
	var f analytics.RiskFactors

	incidents := ds.Table(analytics.Incidents)
	if !incidents.IsEmpty() {
		f.IncidentCount = intPtr(incidents.NumRows())
		if values, ok := columnValues(incidents, "severity", "level"); ok {
			f.HighSeverityIncidents = intPtr(countContaining(values, "high", "critical"))
		}
		if col, ok := dateColumn(incidents); ok {
			if series, ok := monthlyCounts(incidents, col); ok && len(series.counts) > 1 {
				counts := make([]float64, len(series.counts))
				for i, c := range series.counts {
					counts[i] = float64(c)
				}
				if avg, err := stats.Mean(counts); err == nil {
					f.AvgMonthlyIncidents = floatPtr(avg)
				}
				if len(counts) >= 3 {
					f.IncidentTrend = incidentTrend(counts)
				}
			}
		}
	}

	inspections := ds.Table(analytics.Inspections)
	if !inspections.IsEmpty() {
		f.InspectionCount = intPtr(inspections.NumRows())
		if values, ok := columnValues(inspections, "compliance", "status"); ok {
			f.NonCompliantInspections = intPtr(countContaining(values, "non"))
		}
	}

	trainings := ds.Table(analytics.Trainings)
	if !trainings.IsEmpty() {
		f.TrainingCount = intPtr(trainings.NumRows())
		if values, ok := columnValues(trainings, "complet", "status"); ok {
			f.IncompleteTrainings = intPtr(len(values) - countContaining(values, "complet"))
		}
	}

	score := riskScore(f)
	return &analytics.RiskAssessment{Factors: f, Score: score, Level: riskLevel(score)}
}

// incidentTrend compares the last month with the one before it. counts is in
// month order and holds at least three months.
func incidentTrend(counts []float64) analytics.Trend {
	recent := counts[len(counts)-3:]
	last, prev := recent[2], recent[1]
	switch {
	case last > prev*1.1:
		return analytics.TrendIncreasing
	case last < prev*0.9:
		return analytics.TrendDecreasing
	default:
		return analytics.TrendStable
	}
}

func riskScore(f analytics.RiskFactors) float64 {
	score := 0.0
	if f.IncidentCount != nil {
		score += float64(*f.IncidentCount) * incidentWeight
	}
	if f.HighSeverityIncidents != nil {
		score += float64(*f.HighSeverityIncidents) * highSeverityWeight
	}
	if f.NonCompliantInspections != nil {
		score += float64(*f.NonCompliantInspections) * nonCompliantWeight
	}
	if f.IncompleteTrainings != nil {
		score += float64(*f.IncompleteTrainings) * incompleteWeight
	}
	switch f.IncidentTrend {
	case analytics.TrendIncreasing:
		score *= increasingFactor
	case analytics.TrendDecreasing:
		score *= decreasingFactor
	}
	return score
}

func riskLevel(score float64) analytics.RiskLevel {
	switch {
	case score < lowRiskBelow:
		return analytics.RiskLow
	case score < mediumRiskBelow:
		return analytics.RiskMedium
	default:
		return analytics.RiskHigh
	}
}
