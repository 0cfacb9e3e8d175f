package transform

import (
	"fmt"

	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"github.com/montanaflynn/stats"
)

const topValueCount = 5

// Summary is the statistics record returned alongside processed data.
type Summary struct {
	Shape              [2]int                        `json:"shape"`
	Columns            []string                      `json:"columns"`
	DataTypes          map[string]table.StorageKind  `json:"data_types"`
	DetectedTypes      map[string]table.DetectedType `json:"detected_types"`
	MissingValues      map[string]int                `json:"missing_values"`
	MissingPercentage  map[string]float64            `json:"missing_percentage"`
	Duplicates         int                           `json:"duplicates"`
	MemoryUsage        int64                         `json:"memory_usage"`
	NumericalSummary   map[string]NumericSummary     `json:"numerical_summary,omitempty"`
	CategoricalSummary map[string]CategoricalSummary `json:"categorical_summary,omitempty"`
}

// NumericSummary is the describe() block for one numeric column.
type NumericSummary struct {
	Count float64 `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"25%"`
	Q50   float64 `json:"50%"`
	Q75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// CategoricalSummary holds the distinct count and most frequent values of an object column.
type CategoricalSummary struct {
	UniqueValues int          `json:"unique_values"`
	TopValues    table.Counts `json:"top_values"`
}

// Summarize computes the statistics record. It never mutates t.
func Summarize(t *table.Table) (*Summary, error) {
	rows := t.NumRows()
	s := &Summary{
		Shape:             [2]int{rows, t.NumCols()},
		Columns:           t.ColumnNames(),
		DataTypes:         make(map[string]table.StorageKind, t.NumCols()),
		DetectedTypes:     table.DetectTypes(t),
		MissingValues:     make(map[string]int, t.NumCols()),
		MissingPercentage: make(map[string]float64, t.NumCols()),
		Duplicates:        rows - dropDuplicates(t).NumRows(),
		MemoryUsage:       memoryUsage(t),
	}

	for _, c := range t.Columns() {
		s.DataTypes[c.Name] = c.Kind
		values, _ := t.Column(c.Name)
		missing := 0
		for _, v := range values {
			if v.IsMissing() {
				missing++
			}
		}
		s.MissingValues[c.Name] = missing
		if rows > 0 {
			s.MissingPercentage[c.Name] = float64(missing) / float64(rows) * 100
		} else {
			s.MissingPercentage[c.Name] = 0
		}
	}

	if numeric := t.NumericColumns(); len(numeric) > 0 {
		s.NumericalSummary = make(map[string]NumericSummary, len(numeric))
		for _, name := range numeric {
			values, _ := t.Column(name)
			ns, err := describe(presentFloats(values))
			if err != nil {
				return nil, core.NewDataError("summarize", name, err)
			}
			s.NumericalSummary[name] = ns
		}
	}

	if object := t.ObjectColumns(); len(object) > 0 {
		s.CategoricalSummary = make(map[string]CategoricalSummary, len(object))
		for _, name := range object {
			counts := table.CountColumn(t, name)
			s.CategoricalSummary[name] = CategoricalSummary{
				UniqueValues: len(counts),
				TopValues:    counts.Head(topValueCount),
			}
		}
	}
	return s, nil
}

func describe(data []float64) (NumericSummary, error) {
	if len(data) == 0 {
		return NumericSummary{}, fmt.Errorf("no values to describe")
	}
	ns := NumericSummary{Count: float64(len(data))}
	var err error
	if ns.Mean, err = stats.Mean(data); err != nil {
		return ns, err
	}
	if len(data) > 1 {
		if ns.Std, err = stats.StandardDeviationSample(data); err != nil {
			return ns, err
		}
	}
	if ns.Min, err = stats.Min(data); err != nil {
		return ns, err
	}
	if ns.Max, err = stats.Max(data); err != nil {
		return ns, err
	}
	if ns.Q25, err = quantile(data, 0.25); err != nil {
		return ns, err
	}
	if ns.Q50, err = quantile(data, 0.5); err != nil {
		return ns, err
	}
	if ns.Q75, err = quantile(data, 0.75); err != nil {
		return ns, err
	}
	return ns, nil
}

// memoryUsage approximates the in-memory footprint: 8 bytes per fixed-width
// cell, string payloads plus header for text cells, and a fixed index cost.
func memoryUsage(t *table.Table) int64 {
	const (
		indexBytes  = 128
		cellBytes   = 8
		stringBytes = 49
	)
	total := int64(indexBytes)
	for i := 0; i < t.NumRows(); i++ {
		for _, v := range t.Row(i) {
			if v.IsString() {
				total += stringBytes + int64(len(v.AsString()))
				continue
			}
			total += cellBytes
		}
	}
	return total
}
