package safety

import (
	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
)

func complianceScorecard(inspections, trainings *table.Table) *analytics.ComplianceScorecard {
	res := &analytics.ComplianceScorecard{}

	if !inspections.IsEmpty() {
		total := inspections.NumRows()
		res.TotalInspections = intPtr(total)
		if values, ok := columnValues(inspections, "compliance", "status"); ok {
			compliant := countContaining(values, "complian")
			res.CompliantInspections = intPtr(compliant)
			res.NonCompliantInspections = intPtr(total - compliant)
			res.ComplianceRate = floatPtr(percent(compliant, total))
		}
	}

	if !trainings.IsEmpty() {
		total := trainings.NumRows()
		res.TotalTrainings = intPtr(total)
		if values, ok := columnValues(trainings, "complet", "status"); ok {
			completed := countContaining(values, "complet")
			res.CompletedTrainings = intPtr(completed)
			res.IncompleteTrainings = intPtr(total - completed)
			res.TrainingCompletionRate = floatPtr(percent(completed, total))
		}
	}
	return res
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
