package testkit

import (
	"math/rand/v2"
	"time"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
)

// SafetyGeneratorConfig configures the synthetic safety data generator
type SafetyGeneratorConfig struct {
	Months            int       `json:"months"`
	IncidentsPerMonth int       `json:"incidents_per_month"`
	InspectionCount   int       `json:"inspection_count"`
	TrainingCount     int       `json:"training_count"`
	NearMissCount     int       `json:"near_miss_count"`
	NonComplianceRate float64   `json:"non_compliance_rate"`
	IncompleteRate    float64   `json:"incomplete_rate"`
	StartDate         time.Time `json:"start_date"`
	Seed              uint64    `json:"seed"`
}

// DefaultSafetyConfig returns a year of data for three sites.
func DefaultSafetyConfig() SafetyGeneratorConfig {
	return SafetyGeneratorConfig{
		Months:            12,
		IncidentsPerMonth: 6,
		InspectionCount:   40,
		TrainingCount:     60,
		NearMissCount:     30,
		NonComplianceRate: 0.2,
		IncompleteRate:    0.25,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:              42,
	}
}

var (
	locations   = []string{"Plant A", "Plant B", "Warehouse"}
	departments = []string{"Operations", "Maintenance", "Logistics"}
	severities  = []string{"Low", "Medium", "High", "Critical"}
)

// SafetyDataGenerator generates incidents, inspections, trainings and near-miss reports.
type SafetyDataGenerator struct {
	config SafetyGeneratorConfig
	rng    *rand.Rand
}

// NewSafetyDataGenerator creates a generator. Equal configs produce equal data.
func NewSafetyDataGenerator(config SafetyGeneratorConfig) *SafetyDataGenerator {
	return &SafetyDataGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed)),
	}
}

// Generate returns one table per collection, keyed by collection name.
func (g *SafetyDataGenerator) Generate() map[string]*table.Table {
	return map[string]*table.Table{
		analytics.Incidents:       g.incidents(),
		analytics.Inspections:     g.inspections(),
		analytics.Trainings:       g.trainings(),
		analytics.NearMissReports: g.nearMisses(),
	}
}

func (g *SafetyDataGenerator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}

func (g *SafetyDataGenerator) date() string {
	days := g.config.Months * 30
	if days < 1 {
		days = 1
	}
	return g.config.StartDate.AddDate(0, 0, g.rng.IntN(days)).Format(time.DateOnly)
}

func (g *SafetyDataGenerator) incidents() *table.Table {
	var rows [][]interface{}
	for m := 0; m < g.config.Months; m++ {
		// Counts drift upward so the series has a trend to forecast.
		n := g.config.IncidentsPerMonth + m/3 + g.rng.IntN(3)
		for i := 0; i < n; i++ {
			day := 1 + g.rng.IntN(28)
			when := g.config.StartDate.AddDate(0, m, day-1)
			rows = append(rows, []interface{}{
				when.Format(time.DateOnly),
				g.pick(locations),
				g.pick(departments),
				g.pick(severities),
				float64(g.rng.IntN(3)),
				float64(100 + g.rng.IntN(5000)),
			})
		}
	}
	t, _ := table.FromRows([]string{"incident_date", "location", "department", "severity", "injuries", "cost"}, rows)
	return t
}

func (g *SafetyDataGenerator) inspections() *table.Table {
	rows := make([][]interface{}, g.config.InspectionCount)
	for i := range rows {
		status := "Compliant"
		if g.rng.Float64() < g.config.NonComplianceRate {
			status = "Non-Compliant"
		}
		rows[i] = []interface{}{g.date(), g.pick(locations), g.pick(departments), status, float64(60 + g.rng.IntN(41))}
	}
	t, _ := table.FromRows([]string{"inspection_date", "location", "department", "compliance_status", "score"}, rows)
	return t
}

func (g *SafetyDataGenerator) trainings() *table.Table {
	rows := make([][]interface{}, g.config.TrainingCount)
	for i := range rows {
		status := "Completed"
		if g.rng.Float64() < g.config.IncompleteRate {
			status = "In Progress"
		}
		rows[i] = []interface{}{g.date(), g.pick(locations), g.pick(departments), status, float64(1 + g.rng.IntN(8))}
	}
	t, _ := table.FromRows([]string{"training_date", "location", "department", "completion_status", "hours"}, rows)
	return t
}

func (g *SafetyDataGenerator) nearMisses() *table.Table {
	rows := make([][]interface{}, g.config.NearMissCount)
	for i := range rows {
		rows[i] = []interface{}{g.date(), g.pick(locations), g.pick(severities)}
	}
	t, _ := table.FromRows([]string{"report_date", "location", "potential_severity"}, rows)
	return t
}
