package safety

import (
	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
)

func rootCause(ds *Dataset) *analytics.RootCause {
	incidents := ds.Table(analytics.Incidents)
	res := &analytics.RootCause{}
	if incidents.IsEmpty() {
		return res
	}
	res.TotalIncidents = intPtr(incidents.NumRows())

	locationCol, hasLocation := incidents.FindColumn("location")
	if hasLocation {
		res.IncidentLocations = table.CountColumn(incidents, locationCol)
	}
	if col, ok := incidents.FindColumn("department"); ok {
		res.IncidentDepartments = table.CountColumn(incidents, col)
	}
	if col, ok := dateColumn(incidents); ok {
		if series, ok := monthlyCounts(incidents, col); ok {
			res.MonthlyIncidentTrend = series.trendCounts()
		}
	}
	if col, ok := incidents.FindColumn("severity", "level"); ok {
		res.IncidentSeverityDistribution = table.CountColumn(incidents, col)
	}

	nearMiss := ds.Table(analytics.NearMissReports)
	if nmCol, ok := nearMiss.FindColumn("location"); ok && hasLocation && !nearMiss.IsEmpty() {
		compareNearMisses(res, table.CountColumn(nearMiss, nmCol))
	}

	if !ds.Table(analytics.MaintenanceRecords).IsEmpty() {
		res.MaintenanceDataAvailable = true
	}

	audits := ds.Table(analytics.AuditResults)
	if !audits.IsEmpty() {
		res.AuditDataAvailable = true
		if values, ok := columnValues(audits, "compliance", "finding"); ok {
			res.AuditNonComplianceFindings = intPtr(countContaining(values, "non"))
		}
	}

	violations := ds.Table(analytics.SafetyViolations)
	if !violations.IsEmpty() {
		res.ViolationsDataAvailable = true
		res.TotalViolations = intPtr(violations.NumRows())
	}
	return res
}

// compareNearMisses records the locations seen in both collections and the
// near-miss to incident ratio for each.
func compareNearMisses(res *analytics.RootCause, nearMisses table.Counts) {
	res.LocationsWithNearMissesAndIncidents = []string{}
	res.NearMissToIncidentRatios = map[string]float64{}
	for _, loc := range res.IncidentLocations {
		nm := nearMisses.Get(loc.Value)
		if nm == 0 {
			continue
		}
		res.LocationsWithNearMissesAndIncidents = append(res.LocationsWithNearMissesAndIncidents, loc.Value)
		if loc.Count > 0 {
			res.NearMissToIncidentRatios[loc.Value] = float64(nm) / float64(loc.Count)
		}
	}
}
