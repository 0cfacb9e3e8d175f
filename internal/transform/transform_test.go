package transform

import (
	"encoding/json"
	"math"
	"testing"

	"safetyhub/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func mustTable(t *testing.T, columns []string, rows [][]interface{}) *table.Table {
	t.Helper()
	tbl, err := table.FromRows(columns, rows)
	require.NoError(t, err)
	return tbl
}

func floats(t *testing.T, tbl *table.Table, column string) []float64 {
	t.Helper()
	values, ok := tbl.Column(column)
	require.True(t, ok, column)
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsNumeric() {
			out = append(out, v.AsFloat64())
		}
	}
	return out
}

func TestCleanDropsExactDuplicates(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, [][]interface{}{
		{1.0, "x"},
		{1.0, "x"},
		{5.0, "y"},
	})

	out, err := Clean(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, []string{"a", "b"}, out.ColumnNames())
	assert.Equal(t, "x", out.At(0, 1).AsString())
	assert.Equal(t, "y", out.At(1, 1).AsString())
}

func TestCleanImputesFromInputBeforeDedupe(t *testing.T) {
	// duplicates pull the median towards 1; the fill must see them
	tbl := mustTable(t, []string{"a", "b"}, [][]interface{}{
		{1.0, "x"},
		{1.0, "x"},
		{1.0, "x"},
		{4.0, nil},
		{nil, "y"},
	})

	out, err := Clean(tbl)
	require.NoError(t, err)

	for i := 0; i < out.NumRows(); i++ {
		for _, v := range out.Row(i) {
			assert.False(t, v.IsMissing())
		}
	}
	a, _ := out.Column("a")
	b, _ := out.Column("b")
	// row {nil, "y"} gets the input median 1
	assert.Equal(t, 1.0, a[len(a)-1].AsFloat64())
	assert.Equal(t, "y", b[len(b)-1].AsString())
}

func TestCleanModeFallsBackToUnknown(t *testing.T) {
	tbl := mustTable(t, []string{"a", "notes"}, [][]interface{}{
		{1.0, nil},
		{2.0, nil},
	})

	out, err := Clean(tbl)
	require.NoError(t, err)
	notes, _ := out.Column("notes")
	for _, v := range notes {
		assert.Equal(t, "Unknown", v.AsString())
	}
}

func TestCleanModeTieKeepsFirstSeen(t *testing.T) {
	tbl := mustTable(t, []string{"id", "c"}, [][]interface{}{
		{1.0, "b"},
		{2.0, "a"},
		{3.0, nil},
	})
	out, err := Clean(tbl)
	require.NoError(t, err)
	assert.Equal(t, "b", out.At(2, 1).AsString())

	interleaved := mustTable(t, []string{"id", "c"}, [][]interface{}{
		{1.0, "x"},
		{2.0, "y"},
		{3.0, "y"},
		{4.0, "x"},
		{5.0, nil},
	})
	out, err = Clean(interleaved)
	require.NoError(t, err)
	assert.Equal(t, "x", out.At(4, 1).AsString())
}

func TestCleanRemovesOutliersSequentially(t *testing.T) {
	rows := make([][]interface{}, 0, 9)
	for i := 1; i <= 8; i++ {
		w := 0.0
		if i > 6 {
			w = 5.0
		}
		rows = append(rows, []interface{}{float64(i), w})
	}
	rows = append(rows, []interface{}{100.0, 5.0})
	tbl := mustTable(t, []string{"v", "w"}, rows)

	// w fences are computed after v drops 100, so the remaining 5s become outliers
	out, err := Clean(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, floats(t, out, "v"))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, floats(t, out, "w"))
}

func TestCleanIsIdempotentForDuplicates(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, [][]interface{}{
		{1.0, "x"},
		{nil, "x"},
		{2.0, nil},
		{2.0, "y"},
		{3.0, "z"},
		{1.0, "x"},
	})

	once, err := Clean(tbl)
	require.NoError(t, err)
	twice, err := Clean(once)
	require.NoError(t, err)

	summary, err := Summarize(once)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, once.NumRows(), twice.NumRows())

	onceJSON, _ := json.Marshal(once)
	twiceJSON, _ := json.Marshal(twice)
	assert.JSONEq(t, string(onceJSON), string(twiceJSON))
}

func TestNormalizeProducesZeroMeanUnitStd(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b", "label"}, [][]interface{}{
		{1.0, 10.0, "p"},
		{2.0, 30.0, "q"},
		{3.0, 20.0, "r"},
		{7.0, nil, "s"},
	})

	out, err := Normalize(tbl)
	require.NoError(t, err)
	for _, name := range []string{"a", "b"} {
		mean, std := stat.PopMeanStdDev(floats(t, out, name), nil)
		assert.InDelta(t, 0, mean, 1e-9, name)
		assert.InDelta(t, 1, std, 1e-9, name)
	}
	assert.True(t, out.At(3, 1).IsMissing())
	assert.Equal(t, "p", out.At(0, 2).AsString())
	assert.Equal(t, 1.0, tbl.At(0, 0).AsFloat64(), "input must not change")
}

func TestNormalizeZeroVarianceAndNoNumericColumns(t *testing.T) {
	tbl := mustTable(t, []string{"c"}, [][]interface{}{{4.0}, {4.0}})
	out, err := Normalize(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, floats(t, out, "c"))

	text := mustTable(t, []string{"s"}, [][]interface{}{{"a"}})
	out, err = Normalize(text)
	require.NoError(t, err)
	assert.Equal(t, "a", out.At(0, 0).AsString())
}

func TestEncodeUsesFirstAppearanceOrder(t *testing.T) {
	tbl := mustTable(t, []string{"dept", "n"}, [][]interface{}{
		{"Zeta", 1.0},
		{"Alpha", 2.0},
		{"Zeta", 3.0},
		{nil, 4.0},
		{"Mid", 5.0},
	})

	out, err := Encode(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 2, 3}, floats(t, out, "dept"))
	assert.Equal(t, table.StorageNumeric, out.Kind("dept"))
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, floats(t, out, "n"))

	mapping, err := Encoding(tbl, "dept")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "Alpha", "nan", "Mid"}, mapping)
}

func TestSummarize(t *testing.T) {
	tbl := mustTable(t, []string{"n", "c"}, [][]interface{}{
		{1.0, "a"},
		{2.0, "a"},
		{3.0, "b"},
		{nil, "a"},
		{1.0, "a"},
	})

	s, err := Summarize(tbl)
	require.NoError(t, err)
	assert.Equal(t, [2]int{5, 2}, s.Shape)
	assert.Equal(t, 1, s.MissingValues["n"])
	assert.InDelta(t, 20.0, s.MissingPercentage["n"], 1e-9)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, table.TypeNumerical, s.DetectedTypes["n"])
	assert.Equal(t, table.TypeCategorical, s.DetectedTypes["c"])

	ns := s.NumericalSummary["n"]
	assert.Equal(t, 4.0, ns.Count)
	assert.InDelta(t, 1.75, ns.Mean, 1e-9)
	assert.InDelta(t, 1.0, ns.Q25, 1e-9)
	assert.InDelta(t, 1.5, ns.Q50, 1e-9)
	assert.InDelta(t, 2.25, ns.Q75, 1e-9)

	cs := s.CategoricalSummary["c"]
	assert.Equal(t, 2, cs.UniqueValues)
	assert.Equal(t, 4, cs.TopValues.Get("a"))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_values":{"a":4,"b":1}`)
}

func TestSummarizeOmitsAbsentBlocks(t *testing.T) {
	s, err := Summarize(mustTable(t, []string{"n"}, [][]interface{}{{1.0}}))
	require.NoError(t, err)
	assert.Nil(t, s.CategoricalSummary)
	assert.Equal(t, 0.0, s.NumericalSummary["n"].Std)

	empty, err := Summarize(table.New("a"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.MissingPercentage["a"])
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "numerical_summary")
}

func TestProcessChainsInOrder(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b"}, [][]interface{}{
		{1.0, "x"},
		{1.0, "x"},
		{3.0, "y"},
	})

	res, err := Process(tbl, Options{Clean: true, Normalize: true, EncodeCategorical: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Data.NumRows())
	assert.Equal(t, []float64{0, 1}, floats(t, res.Data, "b"))
	a := floats(t, res.Data, "a")
	assert.InDelta(t, -1, a[0], 1e-9)
	assert.InDelta(t, 1, a[1], 1e-9)
	assert.False(t, math.IsNaN(res.Statistics.NumericalSummary["a"].Mean))
}

func TestQuantileLinearInterpolation(t *testing.T) {
	q, err := quantile([]float64{4, 1, 3, 2}, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, q, 1e-12)

	_, err = quantile(nil, 0.5)
	assert.Error(t, err)
}

func TestCorrelationPairwiseComplete(t *testing.T) {
	tbl := mustTable(t, []string{"a", "b", "c", "label"}, [][]interface{}{
		{1.0, 2.0, 5.0, "x"},
		{2.0, 4.0, 5.0, "y"},
		{3.0, nil, 5.0, "z"},
		{4.0, 8.0, 5.0, "w"},
	})

	m := Correlation(tbl)
	assert.Equal(t, []string{"a", "b", "c"}, m.Columns)

	r, ok := m.At(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	_, ok = m.At(0, 2)
	assert.False(t, ok, "constant column has no correlation")
	_, ok = m.At(2, 2)
	assert.False(t, ok)
	r, ok = m.At(1, 1)
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
}

func TestPearsonNeedsTwoPairs(t *testing.T) {
	a := []table.Value{table.NewNumericValue(1), table.NewMissingValue()}
	b := []table.Value{table.NewNumericValue(2), table.NewNumericValue(3), table.NewNumericValue(4)}
	_, ok := Pearson(a, b)
	assert.False(t, ok)
}
