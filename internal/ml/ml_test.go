package ml

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearTable(t *testing.T, n int) *table.Table {
	t.Helper()
	rows := make([][]interface{}, n)
	for i := 0; i < n; i++ {
		a := float64(i)
		b := float64((i * 7) % 5)
		rows[i] = []interface{}{a, b, 2*a + 3*b + 1}
	}
	tbl, err := table.FromRows([]string{"a", "b", "y"}, rows)
	require.NoError(t, err)
	return tbl
}

func clusterTable(t *testing.T) *table.Table {
	t.Helper()
	var rows [][]interface{}
	for i := 0; i < 10; i++ {
		rows = append(rows, []interface{}{float64(i), float64(i % 3), "low"})
		rows = append(rows, []interface{}{float64(100 + i), float64(i % 3), "high"})
	}
	tbl, err := table.FromRows([]string{"x", "noise", "label"}, rows)
	require.NoError(t, err)
	return tbl
}

func TestSelect(t *testing.T) {
	_, err := Select("clustering", "random_forest")
	assert.True(t, core.IsConfigurationError(err))

	m, err := Select("regression", "linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, m.Algorithm())
	assert.False(t, m.IsTrained())

	m, err = Select("regression", "logistic")
	require.NoError(t, err)
	assert.Equal(t, RandomForest, m.Algorithm(), "unsupported names fall back to random_forest")

	m, err = Select("classification", "svm")
	require.NoError(t, err)
	assert.Equal(t, RandomForest, m.Algorithm())
}

func TestPredictBeforeTrainIsStateError(t *testing.T) {
	m, err := Select("regression", "random_forest")
	require.NoError(t, err)

	preds, err := m.Predict(linearTable(t, 5))
	assert.Nil(t, preds)
	assert.True(t, core.IsStateError(err))
}

func TestSplitIndicesIsDeterministic(t *testing.T) {
	train1, test1, err := SplitIndices(10, 0.2)
	require.NoError(t, err)
	train2, test2, err := SplitIndices(10, 0.2)
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
	assert.Len(t, test1, 2)
	assert.Len(t, train1, 8)

	_, test, err := SplitIndices(3, 0.2)
	require.NoError(t, err)
	assert.Len(t, test, 1)

	_, _, err = SplitIndices(1, 0.2)
	assert.ErrorIs(t, err, core.ErrInsufficientRows)

	_, _, err = SplitIndices(10, 1.5)
	assert.True(t, core.IsConfigurationError(err))
}

func TestTrainLinearRegression(t *testing.T) {
	m, err := Select("regression", "linear")
	require.NoError(t, err)

	score, err := m.Train(linearTable(t, 30), "y", DefaultTestFraction)
	require.NoError(t, err)
	require.NotNil(t, score.R2)
	require.NotNil(t, score.RMSE)
	assert.InDelta(t, 1.0, *score.R2, 1e-9)
	assert.InDelta(t, 0.0, *score.RMSE, 1e-6)
	assert.Nil(t, score.Accuracy)
	assert.Equal(t, []string{"a", "b"}, m.FeatureNames())
	assert.True(t, m.IsTrained())
}

func TestTrainRandomForestClassifier(t *testing.T) {
	m, err := Select("classification", "random_forest")
	require.NoError(t, err)

	score, err := m.Train(clusterTable(t), "label", DefaultTestFraction)
	require.NoError(t, err)
	require.NotNil(t, score.Accuracy)
	assert.Equal(t, 1.0, *score.Accuracy)

	m.Scaling = ScalingTrained
	probe, err := table.FromRows([]string{"x", "noise"}, [][]interface{}{{2.0, 1.0}, {105.0, 0.0}})
	require.NoError(t, err)
	preds, err := m.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, "low", preds[0].AsString())
	assert.Equal(t, "high", preds[1].AsString())
}

func TestTrainLogisticClassifier(t *testing.T) {
	m, err := Select("classification", "logistic")
	require.NoError(t, err)

	score, err := m.Train(clusterTable(t), "label", DefaultTestFraction)
	require.NoError(t, err)
	require.NotNil(t, score.Accuracy)
	assert.Equal(t, 1.0, *score.Accuracy)
}

func TestTrainRejectsUnusableColumns(t *testing.T) {
	tbl, err := table.FromRows([]string{"site", "y"}, [][]interface{}{
		{"north", 1.0}, {"south", 2.0}, {"east", 3.0},
	})
	require.NoError(t, err)

	m, err := Select("regression", "linear")
	require.NoError(t, err)
	_, err = m.Train(tbl, "y", DefaultTestFraction)
	assert.True(t, core.IsDataError(err))
	assert.Contains(t, err.Error(), "site")

	_, err = m.Train(tbl, "missing", DefaultTestFraction)
	assert.ErrorIs(t, err, core.ErrData)
	assert.False(t, m.IsTrained())
}

func TestPredictRefitScalingIsShiftInvariant(t *testing.T) {
	m, err := Select("regression", "linear")
	require.NoError(t, err)
	_, err = m.Train(linearTable(t, 30), "y", DefaultTestFraction)
	require.NoError(t, err)
	require.Equal(t, ScalingRefit, m.Scaling)

	base, err := table.FromRows([]string{"a", "b"}, [][]interface{}{{1.0, 0.0}, {5.0, 2.0}, {9.0, 4.0}})
	require.NoError(t, err)
	shifted, err := table.FromRows([]string{"a", "b"}, [][]interface{}{{101.0, 50.0}, {105.0, 52.0}, {109.0, 54.0}})
	require.NoError(t, err)

	p1, err := m.Predict(base)
	require.NoError(t, err)
	p2, err := m.Predict(shifted)
	require.NoError(t, err)
	require.Len(t, p1, 3)
	for i := range p1 {
		assert.InDelta(t, p1[i].AsFloat64(), p2[i].AsFloat64(), 1e-9)
	}

	m.Scaling = ScalingTrained
	p3, err := m.Predict(base)
	require.NoError(t, err)
	assert.InDelta(t, 2*5.0+3*2.0+1, p3[1].AsFloat64(), 1e-6)
}

func TestPredictIgnoresExtraColumnsAndRequiresFeatures(t *testing.T) {
	m, err := Select("regression", "linear")
	require.NoError(t, err)
	_, err = m.Train(linearTable(t, 20), "y", DefaultTestFraction)
	require.NoError(t, err)

	preds, err := m.Predict(linearTable(t, 4))
	require.NoError(t, err)
	assert.Len(t, preds, 4)

	onlyA, err := table.FromRows([]string{"a"}, [][]interface{}{{1.0}})
	require.NoError(t, err)
	_, err = m.Predict(onlyA)
	assert.True(t, core.IsDataError(err))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		modelType, algorithm, target string
		data                         *table.Table
	}{
		{"regression", "random_forest", "y", linearTable(t, 25)},
		{"regression", "linear", "y", linearTable(t, 25)},
		{"classification", "logistic", "label", clusterTable(t)},
		{"classification", "random_forest", "label", clusterTable(t)},
	} {
		t.Run(tc.modelType+"_"+tc.algorithm, func(t *testing.T) {
			m, err := Select(tc.modelType, tc.algorithm)
			require.NoError(t, err)
			_, err = m.Train(tc.data, tc.target, DefaultTestFraction)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, m.SaveFile(path))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, m.Type(), loaded.Type())
			assert.Equal(t, m.Algorithm(), loaded.Algorithm())
			assert.Equal(t, m.FeatureNames(), loaded.FeatureNames())
			assert.True(t, loaded.IsTrained())

			want, err := m.Predict(tc.data)
			require.NoError(t, err)
			got, err := loaded.Predict(tc.data)
			require.NoError(t, err)
			for i := range want {
				assert.True(t, want[i].Equal(got[i]), "row %d: %v != %v", i, want[i], got[i])
			}
		})
	}
}

func TestSaveUntrainedIsStateError(t *testing.T) {
	m, err := Select("regression", "linear")
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.True(t, core.IsStateError(m.Save(&buf)))
	assert.Zero(t, buf.Len())
}

func TestLoadRejectsMismatchedDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":      `pickle`,
		"unknown field": `{"model_type":"regression","algorithm":"linear","weights":[1]}`,
		"untrained":     `{"model_type":"regression","algorithm":"linear","feature_names":["a"],"is_trained":false,"scaler":{"mean":[0],"scale":[1]},"linear":{"coef":[1],"intercept":0}}`,
		"bad type":      `{"model_type":"ranking","algorithm":"linear","feature_names":["a"],"is_trained":true,"scaler":{"mean":[0],"scale":[1]},"linear":{"coef":[1],"intercept":0}}`,
		"wrong params":  `{"model_type":"regression","algorithm":"linear","feature_names":["a"],"is_trained":true,"scaler":{"mean":[0],"scale":[1]},"logistic":{"weights":[[1]],"intercepts":[0]}}`,
		"short coef":    `{"model_type":"regression","algorithm":"linear","feature_names":["a","b"],"is_trained":true,"scaler":{"mean":[0,0],"scale":[1,1]},"linear":{"coef":[1],"intercept":0}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.True(t, core.IsFormatError(err), "got %v", err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, core.IsFormatError(err))
}

func TestLoadAcceptsHandWrittenLinearModel(t *testing.T) {
	doc := `{"model_type":"regression","algorithm":"linear","feature_names":["a"],"is_trained":true,"scaler":{"mean":[0],"scale":[1]},"linear":{"coef":[2],"intercept":1}}`
	m, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	m.Scaling = ScalingTrained

	tbl, err := table.FromRows([]string{"a"}, [][]interface{}{{3.0}})
	require.NoError(t, err)
	preds, err := m.Predict(tbl)
	require.NoError(t, err)
	assert.Equal(t, 7.0, preds[0].AsFloat64())
}

func TestSelectBestKeepsFirstOnTie(t *testing.T) {
	best := selectBest([]CandidateScore{
		{Algorithm: "random_forest", Score: ptr(0.8)},
		{Algorithm: "linear", Score: ptr(0.8)},
	})
	assert.Equal(t, "random_forest", best.Algorithm)

	best = selectBest([]CandidateScore{
		{Algorithm: "random_forest", Score: nil},
		{Algorithm: "logistic", Score: ptr(0.0)},
	})
	assert.Equal(t, "logistic", best.Algorithm)

	best = selectBest([]CandidateScore{
		{Algorithm: "random_forest", Score: ptr(0.1)},
		{Algorithm: "linear", Score: ptr(0.9)},
	})
	assert.Equal(t, "linear", best.Algorithm)
}

func TestCompareClassificationTieGoesToRandomForest(t *testing.T) {
	res, err := Compare(clusterTable(t), "label", "classification")
	require.NoError(t, err)
	require.Len(t, res.Scores, 2)
	assert.Equal(t, "random_forest", res.Scores[0].Algorithm)
	assert.Equal(t, "logistic", res.Scores[1].Algorithm)
	assert.Equal(t, 1.0, *res.Scores[0].Score)
	assert.Equal(t, 1.0, *res.Scores[1].Score)
	assert.Equal(t, "random_forest", res.BestModel)
	assert.Equal(t, 1.0, *res.BestScore)
}

func TestCompareRegression(t *testing.T) {
	res, err := Compare(linearTable(t, 40), "y", "regression")
	require.NoError(t, err)
	assert.Equal(t, "random_forest", res.Scores[0].Algorithm)
	assert.Equal(t, "linear", res.Scores[1].Algorithm)
	assert.Equal(t, "linear", res.BestModel)

	_, err = Compare(linearTable(t, 10), "y", "ranking")
	assert.True(t, core.IsConfigurationError(err))
}

func TestEvaluate(t *testing.T) {
	vals := func(xs ...float64) []table.Value {
		out := make([]table.Value, len(xs))
		for i, x := range xs {
			out[i] = table.NewNumericValue(x)
		}
		return out
	}

	m, err := Evaluate(vals(1, 2, 3), vals(1, 2, 5), Regression)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, *m.MSE, 1e-12)
	assert.InDelta(t, -1.0, *m.R2, 1e-12)

	m, err = Evaluate(
		[]table.Value{table.NewStringValue("a"), table.NewStringValue("b")},
		[]table.Value{table.NewStringValue("a"), table.NewStringValue("a")},
		Classification)
	require.NoError(t, err)
	assert.Equal(t, 0.5, *m.Accuracy)

	_, err = Evaluate(vals(1), vals(1, 2), Regression)
	assert.True(t, core.IsDataError(err))
}
