// Package safety computes the dashboard analytics over safety collections:
// correlation, root cause, forecasting, risk, compliance and benchmarking.
//
// Unlike the transform and ml packages, nothing here returns an error. Each
// sub-analysis works with whatever tables and columns are present and
// recovers from internal faults into an empty section.
package safety

import (
	"time"

	"safetyhub/domain/analytics"
	"safetyhub/domain/core"
	"safetyhub/internal"
)

// Engine runs the safety sub-analyses.
type Engine struct {
	logger *internal.Logger
	now    func() time.Time
}

// NewEngine creates an engine logging through the default logger.
func NewEngine() *Engine {
	return &Engine{
		logger: internal.DefaultLogger.With("safety"),
		now:    time.Now,
	}
}

// WithLogger replaces the engine's logger.
func (e *Engine) WithLogger(l *internal.Logger) *Engine {
	e.logger = l
	return e
}

// runSection calls fn and turns a panic into a logged nil result.
func runSection[T any](logger *internal.Logger, name string, fn func() *T) (out *T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("%s failed: %v", name, r)
			out = nil
		}
	}()
	return fn()
}

// orEmpty is runSection with a zero-valued section in place of nil.
func orEmpty[T any](logger *internal.Logger, name string, fn func() *T) *T {
	if out := runSection(logger, name, fn); out != nil {
		return out
	}
	return new(T)
}

// Correlate correlates the numeric columns of every table in ds.
func (e *Engine) Correlate(ds *Dataset) *analytics.CorrelationAnalysis {
	return orEmpty(e.logger, "correlation analysis", func() *analytics.CorrelationAnalysis {
		return correlate(ds)
	})
}

// RootCause analyzes incident patterns against the extended collections in ds.
func (e *Engine) RootCause(ds *Dataset) *analytics.RootCause {
	return orEmpty(e.logger, "root cause analysis", func() *analytics.RootCause {
		return rootCause(ds)
	})
}

// Forecast fits the lag model over ds's incidents. Nil means too little history.
func (e *Engine) Forecast(ds *Dataset) *analytics.ForecastModel {
	return runSection(e.logger, "forecasting", func() *analytics.ForecastModel {
		return e.forecast(ds.Table(analytics.Incidents))
	})
}

// AssessRisk computes the composite risk score.
func (e *Engine) AssessRisk(ds *Dataset) *analytics.RiskAssessment {
	return orEmpty(e.logger, "risk assessment", func() *analytics.RiskAssessment {
		return assessRisk(ds)
	})
}

// PredictiveForecast merges Forecast and AssessRisk.
func (e *Engine) PredictiveForecast(ds *Dataset) *analytics.PredictiveForecast {
	return orEmpty(e.logger, "predictive forecasting", func() *analytics.PredictiveForecast {
		return e.predictiveForecast(ds)
	})
}

// ComplianceScorecard scores inspection compliance and training completion.
func (e *Engine) ComplianceScorecard(ds *Dataset) *analytics.ComplianceScorecard {
	return orEmpty(e.logger, "compliance scorecard", func() *analytics.ComplianceScorecard {
		return complianceScorecard(ds.Table(analytics.Inspections), ds.Table(analytics.Trainings))
	})
}

// Benchmark counts core records per department and location.
func (e *Engine) Benchmark(ds *Dataset) *analytics.Benchmark {
	return orEmpty(e.logger, "benchmarking", func() *analytics.Benchmark {
		return benchmark(ds)
	})
}

func (e *Engine) predictiveForecast(ds *Dataset) *analytics.PredictiveForecast {
	risk := assessRisk(ds)
	return &analytics.PredictiveForecast{
		ForecastingModel: e.Forecast(ds),
		CurrentRiskScore: risk.Score,
		RiskLevel:        risk.Level,
		RiskFactors:      risk.Factors,
	}
}

// RunAll runs every sub-analysis in order and merges the sections. A section
// that panics is logged and left out of the report.
func (e *Engine) RunAll(ds *Dataset) *analytics.Report {
	report := &analytics.Report{
		RunID:                       core.NewRunID(),
		Timestamp:                   core.NewTimestamp(e.now()),
		CoreCollectionsAnalyzed:     []string{},
		ExtendedCollectionsAnalyzed: []string{},
	}
	for _, name := range ds.Names() {
		switch {
		case analytics.IsCore(name):
			report.CoreCollectionsAnalyzed = append(report.CoreCollectionsAnalyzed, name)
		case analytics.IsExtended(name):
			report.ExtendedCollectionsAnalyzed = append(report.ExtendedCollectionsAnalyzed, name)
		}
	}
	e.logger.Info("Running safety analytics over %d core and %d extended collections",
		len(report.CoreCollectionsAnalyzed), len(report.ExtendedCollectionsAnalyzed))

	coreData := ds.Subset(analytics.CoreCollections()...)

	e.logger.Debug("Running correlation analysis")
	report.CorrelationAnalysis = runSection(e.logger, "correlation analysis", func() *analytics.CorrelationAnalysis {
		return correlate(coreData)
	})
	e.logger.Debug("Running root cause analysis")
	report.RootCauseAnalysis = runSection(e.logger, "root cause analysis", func() *analytics.RootCause {
		return rootCause(ds)
	})
	e.logger.Debug("Running predictive forecasting")
	report.PredictiveForecasting = runSection(e.logger, "predictive forecasting", func() *analytics.PredictiveForecast {
		return e.predictiveForecast(ds)
	})
	e.logger.Debug("Generating compliance scorecard")
	report.ComplianceScorecard = runSection(e.logger, "compliance scorecard", func() *analytics.ComplianceScorecard {
		return complianceScorecard(ds.Table(analytics.Inspections), ds.Table(analytics.Trainings))
	})
	e.logger.Debug("Performing benchmarking analysis")
	report.BenchmarkingAnalysis = runSection(e.logger, "benchmarking", func() *analytics.Benchmark {
		return benchmark(ds)
	})

	e.logger.Info("Safety analytics run %s completed", report.RunID)
	return report
}
