package transform

import (
	"math"

	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"gonum.org/v1/gonum/stat"
)

// Normalize standardizes every numeric column to zero mean and unit population
// variance. Zero-variance columns are centred only. Missing values stay missing.
func Normalize(t *table.Table) (*table.Table, error) {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		logger.Warn("No numerical columns found for normalization")
		return t.Clone(), nil
	}

	out := t.Clone()
	for _, name := range numeric {
		values, _ := out.Column(name)
		mean, std := stat.PopMeanStdDev(presentFloats(values), nil)
		if math.IsNaN(mean) || math.IsNaN(std) {
			return nil, core.NewDataError("normalize", name, errNonFinite)
		}
		if std == 0 {
			std = 1
		}
		for i, v := range values {
			if v.IsNumeric() {
				values[i] = table.NewNumericValue((v.AsFloat64() - mean) / std)
			}
		}
		if err := out.SetColumn(name, values); err != nil {
			return nil, core.NewDataError("normalize", name, err)
		}
	}
	return out, nil
}
