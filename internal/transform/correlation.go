package transform

import (
	"math"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"

	"gonum.org/v1/gonum/stat"
)

// Pearson correlates the positions where both a and b hold a value. It is
// undefined for fewer than two such positions or a constant series.
func Pearson(a, b []table.Value) (float64, bool) {
	n := min(len(a), len(b))
	x := make([]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if a[i].IsNumeric() && b[i].IsNumeric() {
			x = append(x, a[i].AsFloat64())
			y = append(y, b[i].AsFloat64())
		}
	}
	if len(x) < 2 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// Correlation is the pairwise-complete Pearson matrix of t's numeric columns.
func Correlation(t *table.Table) *analytics.CorrelationMatrix {
	names := t.NumericColumns()
	columns := make([][]table.Value, len(names))
	for i, name := range names {
		columns[i], _ = t.Column(name)
	}
	return CorrelationOf(names, columns)
}

// CorrelationOf builds the matrix for parallel name and value slices.
func CorrelationOf(names []string, columns [][]table.Value) *analytics.CorrelationMatrix {
	n := len(names)
	m := &analytics.CorrelationMatrix{
		Columns: append([]string(nil), names...),
		Values:  make([][]*float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]*float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r, ok := Pearson(columns[i], columns[j])
			if !ok {
				continue
			}
			if i == j {
				r = 1
			}
			m.Values[i][j] = &r
			m.Values[j][i] = &r
		}
	}
	return m
}
