// Package transform implements the data-quality transforms applied to uploaded
// tables: cleaning, normalization, categorical encoding and summary statistics.
package transform

import (
	"fmt"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"

	"github.com/montanaflynn/stats"
)

const unknownFill = "Unknown"

var logger = internal.DefaultLogger.With("transform")

// Clean removes duplicate rows, imputes missing values and drops IQR outliers.
//
// Fill values (median for numeric columns, mode otherwise) come from the input
// table before any row is removed. Outlier fences are applied one numeric column
// at a time, each computed on the rows that survived the previous columns.
func Clean(t *table.Table) (*table.Table, error) {
	fills, err := fillValues(t)
	if err != nil {
		return nil, core.NewDataError("clean", "impute", err)
	}

	out := dropDuplicates(t)
	if removed := t.NumRows() - out.NumRows(); removed > 0 {
		logger.Info("Removed %d duplicate rows", removed)
	}

	out, err = impute(out, fills)
	if err != nil {
		return nil, core.NewDataError("clean", "impute", err)
	}
	// imputation can make rows identical; dropping them again keeps Clean idempotent
	out = dropDuplicates(out)

	out, err = removeOutliers(out)
	if err != nil {
		return nil, core.NewDataError("clean", "outliers", err)
	}
	return out, nil
}

func dropDuplicates(t *table.Table) *table.Table {
	seen := make(map[string]bool, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		key := t.RowKey(i)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return t.SelectRows(keep)
}

// fillValues computes the imputation value for every column.
func fillValues(t *table.Table) (map[string]table.Value, error) {
	fills := make(map[string]table.Value, t.NumCols())
	for _, c := range t.Columns() {
		values, _ := t.Column(c.Name)
		if c.Kind == table.StorageNumeric {
			present := presentFloats(values)
			median, err := stats.Median(present)
			if err != nil {
				return nil, fmt.Errorf("median of %q: %w", c.Name, err)
			}
			fills[c.Name] = table.NewNumericValue(median)
			continue
		}
		fills[c.Name] = mode(values)
	}
	return fills, nil
}

// mode returns the most frequent non-missing value; ties go to the first seen.
func mode(values []table.Value) table.Value {
	counts := make(map[string]int)
	for _, v := range values {
		if !v.IsMissing() {
			counts[v.Key()]++
		}
	}

	best := table.NewStringValue(unknownFill)
	bestCount := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if n := counts[v.Key()]; n > bestCount {
			best = v
			bestCount = n
		}
	}
	return best
}

func impute(t *table.Table, fills map[string]table.Value) (*table.Table, error) {
	out := t.Clone()
	for _, c := range t.Columns() {
		values, _ := out.Column(c.Name)
		filled := 0
		for i, v := range values {
			if v.IsMissing() {
				values[i] = fills[c.Name]
				filled++
			}
		}
		if filled == 0 {
			continue
		}
		if err := out.SetColumn(c.Name, values); err != nil {
			return nil, err
		}
		logger.Debug("Filled %d missing values in column %s", filled, c.Name)
	}
	return out, nil
}

func removeOutliers(t *table.Table) (*table.Table, error) {
	out := t
	for _, name := range t.NumericColumns() {
		if out.IsEmpty() {
			break
		}
		values, _ := out.Column(name)
		lower, upper, err := iqrBounds(presentFloats(values))
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		idx, _ := out.ColumnIndex(name)
		before := out.NumRows()
		out = out.Filter(func(row []table.Value) bool {
			x := row[idx].AsFloat64()
			return x >= lower && x <= upper
		})
		if removed := before - out.NumRows(); removed > 0 {
			logger.Info("Removing %d outliers from column %s", removed, name)
		}
	}
	return out, nil
}

func presentFloats(values []table.Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsNumeric() {
			out = append(out, v.AsFloat64())
		}
	}
	return out
}
