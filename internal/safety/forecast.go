package safety

import (
	"fmt"
	"math"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
	"safetyhub/internal/ml"
)

const (
	lagCount        = 3
	minLagRows      = 4
	forecastHorizon = 3
)

// forecast fits a random forest on lag1..lag3 of the zero-filled monthly
// incident counts and rolls it forward forecastHorizon months.
func (e *Engine) forecast(incidents *table.Table) *analytics.ForecastModel {
	if incidents.IsEmpty() {
		return nil
	}
	col, ok := dateColumn(incidents)
	if !ok {
		e.logger.Debug("No date column in incidents, skipping forecast")
		return nil
	}
	series, ok := monthlyCounts(incidents, col)
	if !ok {
		e.logger.Warn("Column %q does not parse as dates, skipping forecast", col)
		return nil
	}

	x, y := lagRows(series.filled())
	if len(x) < minLagRows {
		e.logger.Debug("Only %d lag rows, need %d for a forecast", len(x), minLagRows)
		return nil
	}

	var trainIdx, testIdx []int
	if len(x) <= minLagRows {
		for i := range x {
			trainIdx = append(trainIdx, i)
		}
		testIdx = []int{len(x) - 1}
	} else {
		var err error
		trainIdx, testIdx, err = ml.SplitIndices(len(x), ml.DefaultTestFraction)
		if err != nil {
			e.logger.Warn("Forecast split failed: %v", err)
			return nil
		}
	}

	xTrain, yTrain := make([][]float64, len(trainIdx)), make([]float64, len(trainIdx))
	for i, j := range trainIdx {
		xTrain[i], yTrain[i] = x[j], y[j]
	}
	forest, err := ml.FitRegressor(xTrain, yTrain)
	if err != nil {
		e.logger.Warn("Forecast model failed to fit: %v", err)
		return nil
	}

	yTest, preds := make([]float64, len(testIdx)), make([]float64, len(testIdx))
	for i, j := range testIdx {
		yTest[i] = y[j]
		preds[i] = forest.PredictRow(x[j])
	}
	mse, err := ml.MeanSquaredError(yTest, preds)
	if err != nil {
		e.logger.Warn("Forecast evaluation failed: %v", err)
		return nil
	}

	model := &analytics.ForecastModel{
		MSE:          mse,
		TrainingRows: len(trainIdx),
	}
	if r2, ok := ml.R2Score(yTest, preds); ok {
		model.R2Score = floatPtr(r2)
	}

	current := append([]float64(nil), x[len(x)-1]...)
	for i := 1; i <= forecastHorizon; i++ {
		p := forest.PredictRow(current)
		model.FuturePredictions = append(model.FuturePredictions, math.Max(0, p))
		model.TimePeriods = append(model.TimePeriods, fmt.Sprintf("Month %d", i))
		current = append([]float64{p}, current[:lagCount-1]...)
	}
	return model
}

// lagRows builds one row per month that has lagCount months of history:
// features are the counts 1, 2 and 3 months back, the target is the count.
func lagRows(counts []float64) ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for t := lagCount; t < len(counts); t++ {
		row := make([]float64, lagCount)
		for k := 1; k <= lagCount; k++ {
			row[k-1] = counts[t-k]
		}
		x = append(x, row)
		y = append(y, counts[t])
	}
	return x, y
}
