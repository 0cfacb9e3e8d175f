package transform

import (
	"fmt"
	"math"
	"sort"
)

// quantile returns the q-th quantile of data using linear interpolation between
// closest ranks (h = (n-1)q). data need not be sorted.
func quantile(data []float64, q float64) (float64, error) {
	if len(data) == 0 {
		return math.NaN(), fmt.Errorf("quantile of empty column")
	}
	if q < 0 || q > 1 {
		return math.NaN(), fmt.Errorf("quantile %v out of range", q)
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)], nil
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)]), nil
}

// iqrBounds returns the inclusive [Q1-1.5*IQR, Q3+1.5*IQR] fence.
func iqrBounds(data []float64) (lower, upper float64, err error) {
	q1, err := quantile(data, 0.25)
	if err != nil {
		return 0, 0, err
	}
	q3, err := quantile(data, 0.75)
	if err != nil {
		return 0, 0, err
	}
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr, nil
}
