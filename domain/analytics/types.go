package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
)

// CorrelationPair is one pair of prefixed columns and their Pearson coefficient.
type CorrelationPair struct {
	Variable1   string  `json:"variable1"`
	Variable2   string  `json:"variable2"`
	Correlation float64 `json:"correlation"`
}

// CorrelationMatrix is a square matrix over Columns. A nil cell is undefined
// (fewer than two shared observations or a constant column).
type CorrelationMatrix struct {
	Columns []string
	Values  [][]*float64
}

// At returns the coefficient for columns i and j.
func (m *CorrelationMatrix) At(i, j int) (float64, bool) {
	v := m.Values[i][j]
	if v == nil {
		return 0, false
	}
	return *v, true
}

// MarshalJSON encodes the matrix column-major as {column: {row: r}} keeping column order.
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for j, col := range m.Columns {
		if j > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(col)
		buf.Write(key)
		buf.WriteString(":{")
		for i, row := range m.Columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			rk, _ := json.Marshal(row)
			buf.Write(rk)
			buf.WriteByte(':')
			if v := m.Values[i][j]; v != nil {
				num, err := json.Marshal(*v)
				if err != nil {
					return nil, err
				}
				buf.Write(num)
			} else {
				buf.WriteString("null")
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (m *CorrelationMatrix) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var columns []string
	var cells []map[string]*float64
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		col, _ := tok.(string)
		var cell map[string]*float64
		if err := dec.Decode(&cell); err != nil {
			return fmt.Errorf("correlation column %q: %w", col, err)
		}
		columns = append(columns, col)
		cells = append(cells, cell)
	}
	values := make([][]*float64, len(columns))
	for i, row := range columns {
		values[i] = make([]*float64, len(columns))
		for j := range columns {
			values[i][j] = cells[j][row]
		}
	}
	m.Columns, m.Values = columns, values
	return nil
}

// CorrelationAnalysis is empty when fewer than two numeric columns exist.
type CorrelationAnalysis struct {
	CorrelationMatrix      *CorrelationMatrix           `json:"correlation_matrix,omitempty"`
	StrongCorrelations     []CorrelationPair            `json:"strong_correlations,omitempty"`
	CollectionCorrelations map[string][]CorrelationPair `json:"collection_correlations,omitempty"`
}

// RootCause traces incident patterns and their precursors.
type RootCause struct {
	TotalIncidents                      *int               `json:"total_incidents,omitempty"`
	IncidentLocations                   table.Counts       `json:"incident_locations,omitempty"`
	IncidentDepartments                 table.Counts       `json:"incident_departments,omitempty"`
	MonthlyIncidentTrend                table.Counts       `json:"monthly_incident_trend,omitempty"`
	IncidentSeverityDistribution        table.Counts       `json:"incident_severity_distribution,omitempty"`
	LocationsWithNearMissesAndIncidents []string           `json:"locations_with_near_misses_and_incidents,omitempty"`
	NearMissToIncidentRatios            map[string]float64 `json:"near_miss_to_incident_ratios,omitempty"`
	MaintenanceDataAvailable            bool               `json:"maintenance_data_available,omitempty"`
	AuditDataAvailable                  bool               `json:"audit_data_available,omitempty"`
	AuditNonComplianceFindings          *int               `json:"audit_non_compliance_findings,omitempty"`
	ViolationsDataAvailable             bool               `json:"violations_data_available,omitempty"`
	TotalViolations                     *int               `json:"total_violations,omitempty"`
}

// ForecastModel is the lag-feature forecast of monthly incident counts.
type ForecastModel struct {
	MSE               float64   `json:"mse"`
	R2Score           *float64  `json:"r2_score"`
	FuturePredictions []float64 `json:"future_predictions"`
	TimePeriods       []string  `json:"time_periods"`
	TrainingRows      int       `json:"training_rows"`
}

// Trend is the direction of recent monthly incident counts.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// RiskLevel classifies a composite risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskFactors are the named signals feeding the composite score. Absent
// signals are nil.
type RiskFactors struct {
	IncidentCount           *int     `json:"incident_count,omitempty"`
	HighSeverityIncidents   *int     `json:"high_severity_incidents,omitempty"`
	AvgMonthlyIncidents     *float64 `json:"avg_monthly_incidents,omitempty"`
	IncidentTrend           Trend    `json:"incident_trend,omitempty"`
	InspectionCount         *int     `json:"inspection_count,omitempty"`
	NonCompliantInspections *int     `json:"non_compliant_inspections,omitempty"`
	TrainingCount           *int     `json:"training_count,omitempty"`
	IncompleteTrainings     *int     `json:"incomplete_trainings,omitempty"`
}

// RiskAssessment is the composite score with its classification.
type RiskAssessment struct {
	Factors RiskFactors `json:"risk_factors"`
	Score   float64     `json:"current_risk_score"`
	Level   RiskLevel   `json:"risk_level"`
}

// PredictiveForecast merges the incident forecast with the risk assessment.
type PredictiveForecast struct {
	ForecastingModel *ForecastModel `json:"forecasting_model,omitempty"`
	CurrentRiskScore float64        `json:"current_risk_score"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	RiskFactors      RiskFactors    `json:"risk_factors"`
}

// ComplianceScorecard reports inspection compliance and training completion.
type ComplianceScorecard struct {
	TotalInspections        *int     `json:"total_inspections,omitempty"`
	ComplianceRate          *float64 `json:"compliance_rate,omitempty"`
	CompliantInspections    *int     `json:"compliant_inspections,omitempty"`
	NonCompliantInspections *int     `json:"non_compliant_inspections,omitempty"`
	TotalTrainings          *int     `json:"total_trainings,omitempty"`
	TrainingCompletionRate  *float64 `json:"training_completion_rate,omitempty"`
	CompletedTrainings      *int     `json:"completed_trainings,omitempty"`
	IncompleteTrainings     *int     `json:"incomplete_trainings,omitempty"`
}

// Benchmark holds group counts per department and location.
type Benchmark struct {
	IncidentsByDepartment   table.Counts `json:"incidents_by_department,omitempty"`
	IncidentsByLocation     table.Counts `json:"incidents_by_location,omitempty"`
	InspectionsByDepartment table.Counts `json:"inspections_by_department,omitempty"`
	InspectionsByLocation   table.Counts `json:"inspections_by_location,omitempty"`
	TrainingsByDepartment   table.Counts `json:"trainings_by_department,omitempty"`
	TrainingsByLocation     table.Counts `json:"trainings_by_location,omitempty"`
}

// Report is the merged output of a full analytics run. Sections that failed
// are nil and omitted.
type Report struct {
	RunID                       core.RunID           `json:"run_id"`
	Timestamp                   core.Timestamp       `json:"timestamp"`
	CoreCollectionsAnalyzed     []string             `json:"core_collections_analyzed"`
	ExtendedCollectionsAnalyzed []string             `json:"extended_collections_analyzed"`
	CorrelationAnalysis         *CorrelationAnalysis `json:"correlation_analysis,omitempty"`
	RootCauseAnalysis           *RootCause           `json:"root_cause_analysis,omitempty"`
	PredictiveForecasting       *PredictiveForecast  `json:"predictive_forecasting,omitempty"`
	ComplianceScorecard         *ComplianceScorecard `json:"compliance_scorecard,omitempty"`
	BenchmarkingAnalysis        *Benchmark           `json:"benchmarking_analysis,omitempty"`
}
