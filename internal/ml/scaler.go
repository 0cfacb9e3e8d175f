package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features with per-column mean and population standard deviation.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler learns column statistics from x. Constant columns get scale 1.
func FitScaler(x [][]float64) *Scaler {
	if len(x) == 0 {
		return &Scaler{}
	}
	p := len(x[0])
	s := &Scaler{Mean: make([]float64, p), Scale: make([]float64, p)}
	col := make([]float64, len(x))
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s
}

// Transform returns a scaled copy of x.
func (s *Scaler) Transform(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("row %d has %d features, scaler expects %d", i, len(row), len(s.Mean))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}
