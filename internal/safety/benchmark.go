package safety

import (
	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
)

func benchmark(ds *Dataset) *analytics.Benchmark {
	res := &analytics.Benchmark{}
	res.IncidentsByDepartment, res.IncidentsByLocation = groupCounts(ds.Table(analytics.Incidents))
	res.InspectionsByDepartment, res.InspectionsByLocation = groupCounts(ds.Table(analytics.Inspections))
	res.TrainingsByDepartment, res.TrainingsByLocation = groupCounts(ds.Table(analytics.Trainings))
	return res
}

// groupCounts tallies rows by the department and location columns, matched by
// exact name ignoring case.
func groupCounts(t *table.Table) (byDepartment, byLocation table.Counts) {
	if t.IsEmpty() {
		return nil, nil
	}
	if col, ok := t.FindColumnExact("department"); ok {
		byDepartment = table.CountColumn(t, col)
	}
	if col, ok := t.FindColumnExact("location"); ok {
		byLocation = table.CountColumn(t, col)
	}
	return byDepartment, byLocation
}
