package ml

import (
	"fmt"
	"math"

	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"github.com/montanaflynn/stats"
)

// Metrics is a held-out score record. Fields that do not apply to the model
// type, or are undefined for the data (R² of a constant target), are nil.
type Metrics struct {
	MSE      *float64 `json:"mse,omitempty"`
	RMSE     *float64 `json:"rmse,omitempty"`
	R2       *float64 `json:"r2,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Primary returns R² for regression and accuracy for classification; false when undefined.
func (m Metrics) Primary(modelType ModelType) (float64, bool) {
	if modelType == Classification {
		if m.Accuracy == nil {
			return 0, false
		}
		return *m.Accuracy, true
	}
	if m.R2 == nil {
		return 0, false
	}
	return *m.R2, true
}

func ptr(v float64) *float64 { return &v }

// MeanSquaredError returns the mean squared difference of two equal-length series.
func MeanSquaredError(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("need matching non-empty series, got %d and %d", len(yTrue), len(yPred))
	}
	sq := make([]float64, len(yTrue))
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sq[i] = d * d
	}
	return stats.Mean(sq)
}

// R2Score is the coefficient of determination; false when yTrue has no variance.
func R2Score(yTrue, yPred []float64) (float64, bool) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0, false
	}
	mean, _ := stats.Mean(yTrue)
	var ssRes, ssTot float64
	for i, y := range yTrue {
		ssRes += (y - yPred[i]) * (y - yPred[i])
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 0, false
	}
	return 1 - ssRes/ssTot, true
}

func regressionMetrics(yTrue, yPred []float64, withMSE bool) (Metrics, error) {
	mse, err := MeanSquaredError(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{RMSE: ptr(math.Sqrt(mse))}
	if withMSE {
		m.MSE = ptr(mse)
	}
	if r2, ok := R2Score(yTrue, yPred); ok {
		m.R2 = ptr(r2)
	}
	return m, nil
}

func accuracy(yTrue, yPred []string) (float64, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("need matching non-empty label lists, got %d and %d", len(yTrue), len(yPred))
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue)), nil
}

// Evaluate scores predictions against ground truth: mse, rmse and r2 for
// regression, accuracy for classification.
func Evaluate(yTrue, yPred []table.Value, modelType ModelType) (Metrics, error) {
	if modelType == Classification {
		t := make([]string, len(yTrue))
		for i, v := range yTrue {
			t[i] = v.Key()
		}
		p := make([]string, len(yPred))
		for i, v := range yPred {
			p[i] = v.Key()
		}
		acc, err := accuracy(t, p)
		if err != nil {
			return Metrics{}, core.NewDataError("evaluate", "", err)
		}
		return Metrics{Accuracy: ptr(acc)}, nil
	}

	t, err := numericSeries(yTrue)
	if err != nil {
		return Metrics{}, core.NewDataError("evaluate", "y_true", err)
	}
	p, err := numericSeries(yPred)
	if err != nil {
		return Metrics{}, core.NewDataError("evaluate", "y_pred", err)
	}
	m, err := regressionMetrics(t, p, true)
	if err != nil {
		return Metrics{}, core.NewDataError("evaluate", "", err)
	}
	return m, nil
}

func numericSeries(values []table.Value) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if !v.IsNumeric() {
			return nil, fmt.Errorf("value %d (%s) is not numeric", i, v)
		}
		out[i] = v.AsFloat64()
	}
	return out, nil
}
