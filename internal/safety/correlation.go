package safety

import (
	"math"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
	"safetyhub/internal/transform"
)

const (
	strongThreshold     = 0.7
	collectionThreshold = 0.5
)

// wideColumn is one prefixed numeric column of the side-by-side table.
type wideColumn struct {
	name   string
	source string
	values []table.Value
}

func correlate(ds *Dataset) *analytics.CorrelationAnalysis {
	var cols []wideColumn
	for _, name := range ds.Names() {
		t := ds.Table(name)
		for _, c := range t.NumericColumns() {
			values, _ := t.Column(c)
			cols = append(cols, wideColumn{name: name + "_" + c, source: name, values: values})
		}
	}
	if len(cols) < 2 {
		return &analytics.CorrelationAnalysis{}
	}

	n := len(cols)
	names := make([]string, n)
	series := make([][]table.Value, n)
	for i, c := range cols {
		names[i] = c.name
		series[i] = c.values
	}
	matrix := transform.CorrelationOf(names, series)

	res := &analytics.CorrelationAnalysis{
		CorrelationMatrix:      matrix,
		StrongCorrelations:     []analytics.CorrelationPair{},
		CollectionCorrelations: map[string][]analytics.CorrelationPair{},
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r, ok := matrix.At(i, j); ok && math.Abs(r) > strongThreshold {
				res.StrongCorrelations = append(res.StrongCorrelations, analytics.CorrelationPair{
					Variable1: cols[i].name, Variable2: cols[j].name, Correlation: r,
				})
			}
		}
	}

	sources := ds.Names()
	for _, a := range sources {
		for _, b := range sources {
			if a == b {
				continue
			}
			var pairs []analytics.CorrelationPair
			for i := range cols {
				if cols[i].source != a {
					continue
				}
				for j := range cols {
					if cols[j].source != b {
						continue
					}
					if r, ok := matrix.At(i, j); ok && math.Abs(r) > collectionThreshold {
						pairs = append(pairs, analytics.CorrelationPair{
							Variable1: cols[i].name, Variable2: cols[j].name, Correlation: r,
						})
					}
				}
			}
			if len(pairs) > 0 {
				res.CollectionCorrelations[a+"_vs_"+b] = pairs
			}
		}
	}
	return res
}
