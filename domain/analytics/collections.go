// Package analytics holds the collection catalogue and the result records
// produced by the safety analytics engine.
package analytics

// Core collections are always analyzed.
const (
	Incidents   = "Incidents"
	Inspections = "Inspections"
	Trainings   = "Trainings"
)

// Extended collections enrich root-cause and risk analysis when present.
const (
	MaintenanceRecords      = "Maintenance Records"
	NearMissReports         = "Near-Miss Reports"
	SafetyViolations        = "Safety Violations"
	AuditResults            = "Audit Results"
	EnvironmentalConditions = "Environmental Conditions"
	EquipmentLogs           = "Equipment Logs"
)

// CoreCollections lists the core collections in analysis order.
func CoreCollections() []string {
	return []string{Incidents, Inspections, Trainings}
}

// ExtendedCollections lists the optional collections in analysis order.
func ExtendedCollections() []string {
	return []string{
		MaintenanceRecords,
		NearMissReports,
		SafetyViolations,
		AuditResults,
		EnvironmentalConditions,
		EquipmentLogs,
	}
}

// AllCollections is the core list followed by the extended list.
func AllCollections() []string {
	return append(CoreCollections(), ExtendedCollections()...)
}

// IsCore reports whether name is a core collection.
func IsCore(name string) bool {
	for _, c := range CoreCollections() {
		if c == name {
			return true
		}
	}
	return false
}

// IsExtended reports whether name is an extended collection.
func IsExtended(name string) bool {
	for _, c := range ExtendedCollections() {
		if c == name {
			return true
		}
	}
	return false
}
