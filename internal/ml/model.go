package ml

import (
	"fmt"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"
)

var logger = internal.DefaultLogger.With("ml")

// PredictScaling selects how Predict scales its input.
type PredictScaling int

const (
	// ScalingRefit fits a fresh scaler on each prediction input. Predictions on a
	// single row therefore see all-zero features. This is the default.
	ScalingRefit PredictScaling = iota
	// ScalingTrained reuses the scaler fitted on the training partition.
	ScalingTrained
)

type estimator interface {
	predict(x [][]float64) []float64
}

// Model is a selectable regression or classification model.
type Model struct {
	modelType    ModelType
	algorithm    Algorithm
	featureNames []string
	trained      bool
	scaler       *Scaler
	classes      []table.Value
	est          estimator

	// Scaling controls feature scaling in Predict.
	Scaling PredictScaling
}

// Select returns an untrained model. Unsupported algorithm names fall back to random_forest.
func Select(modelType, algorithm string) (*Model, error) {
	mt, err := ParseModelType(modelType)
	if err != nil {
		return nil, err
	}
	return &Model{modelType: mt, algorithm: resolveAlgorithm(mt, algorithm)}, nil
}

func (m *Model) Type() ModelType      { return m.modelType }
func (m *Model) Algorithm() Algorithm { return m.algorithm }
func (m *Model) IsTrained() bool      { return m.trained }

// FeatureNames returns the feature order used at training time.
func (m *Model) FeatureNames() []string {
	return append([]string(nil), m.featureNames...)
}

// Train fits the model on every column of data except target and scores it on a
// seeded held-out partition. Re-training replaces the previous fit.
func (m *Model) Train(data *table.Table, target string, testFraction float64) (Metrics, error) {
	ds, err := prepare(data, target, m.modelType)
	if err != nil {
		return Metrics{}, err
	}
	sp, err := ds.split(testFraction)
	if err != nil {
		return Metrics{}, err
	}

	est, err := fitEstimator(m.algorithm, m.modelType, sp.xTrain, sp.yTrain, len(ds.classes))
	if err != nil {
		return Metrics{}, core.NewDataError("train", "fit", err)
	}
	score, err := ds.score(est, sp)
	if err != nil {
		return Metrics{}, core.NewDataError("train", "evaluate", err)
	}

	m.featureNames = ds.features
	m.scaler = sp.scaler
	m.classes = ds.classes
	m.est = est
	m.trained = true
	logger.Info("Trained %s %s on %d rows (%d held out)", m.modelType, m.algorithm, len(sp.xTrain), len(sp.xTest))
	return score, nil
}

// Predict returns one prediction per row of features, in row order. Columns
// other than the training features are ignored.
func (m *Model) Predict(features *table.Table) ([]table.Value, error) {
	if !m.trained {
		return nil, core.NewStateError("predict", "model must be trained before making predictions")
	}
	x, err := featureMatrix(features, m.featureNames)
	if err != nil {
		return nil, core.NewDataError("predict", "features", err)
	}

	scaler := m.scaler
	if m.Scaling == ScalingRefit {
		scaler = FitScaler(x)
	}
	if len(x) > 0 {
		if x, err = scaler.Transform(x); err != nil {
			return nil, core.NewDataError("predict", "scale", err)
		}
	}

	raw := m.est.predict(x)
	out := make([]table.Value, len(raw))
	for i, v := range raw {
		if m.modelType == Classification {
			out[i] = m.classes[int(v)]
			continue
		}
		out[i] = table.NewNumericValue(v)
	}
	return out, nil
}

func fitEstimator(alg Algorithm, modelType ModelType, x [][]float64, y []float64, numClasses int) (estimator, error) {
	switch {
	case alg == Linear:
		return fitLinear(x, y)
	case alg == Logistic:
		return fitLogistic(x, toClasses(y), numClasses)
	case modelType == Classification:
		return fitClassifierForest(x, toClasses(y), numClasses)
	default:
		return FitRegressor(x, y)
	}
}

func toClasses(y []float64) []int {
	out := make([]int, len(y))
	for i, v := range y {
		out[i] = int(v)
	}
	return out
}

// dataset is a table converted to a feature matrix and encoded target.
type dataset struct {
	modelType ModelType
	features  []string
	x         [][]float64
	y         []float64 // regression values or class indices
	classes   []table.Value
}

type partition struct {
	xTrain, xTest [][]float64
	yTrain, yTest []float64
	scaler        *Scaler
}

func prepare(data *table.Table, target string, modelType ModelType) (*dataset, error) {
	if !data.HasColumn(target) {
		return nil, core.NewDataError("train", "target", core.NewColumnNotFoundError(target))
	}
	var features []string
	for _, name := range data.ColumnNames() {
		if name != target {
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return nil, core.NewDataError("train", "features", fmt.Errorf("no feature columns besides %q", target))
	}
	x, err := featureMatrix(data, features)
	if err != nil {
		return nil, core.NewDataError("train", "features", err)
	}

	ds := &dataset{modelType: modelType, features: features, x: x}
	values, _ := data.Column(target)
	if modelType == Regression {
		if data.Kind(target) != table.StorageNumeric {
			return nil, core.NewDataError("train", "target", fmt.Errorf("regression target %q must be numeric", target))
		}
		ds.y = make([]float64, len(values))
		for i, v := range values {
			if v.IsMissing() {
				return nil, core.NewDataError("train", "target", fmt.Errorf("target %q has missing values", target))
			}
			ds.y[i] = v.AsFloat64()
		}
		return ds, nil
	}

	index := make(map[string]int)
	ds.y = make([]float64, len(values))
	for i, v := range values {
		if v.IsMissing() {
			return nil, core.NewDataError("train", "target", fmt.Errorf("target %q has missing values", target))
		}
		c, ok := index[v.Key()]
		if !ok {
			c = len(ds.classes)
			index[v.Key()] = c
			ds.classes = append(ds.classes, v)
		}
		ds.y[i] = float64(c)
	}
	return ds, nil
}

// split partitions the rows with the fixed seed and scales both partitions with
// a scaler fitted on the training rows only.
func (ds *dataset) split(testFraction float64) (*partition, error) {
	train, test, err := SplitIndices(len(ds.x), testFraction)
	if err != nil {
		if core.IsConfigurationError(err) {
			return nil, err
		}
		return nil, core.NewDataError("train", "split", err)
	}
	sp := &partition{
		yTrain: pickFloats(ds.y, train),
		yTest:  pickFloats(ds.y, test),
	}
	rawTrain := pickRows(ds.x, train)
	sp.scaler = FitScaler(rawTrain)
	if sp.xTrain, err = sp.scaler.Transform(rawTrain); err != nil {
		return nil, core.NewDataError("train", "scale", err)
	}
	if sp.xTest, err = sp.scaler.Transform(pickRows(ds.x, test)); err != nil {
		return nil, core.NewDataError("train", "scale", err)
	}
	return sp, nil
}

func (ds *dataset) score(est estimator, sp *partition) (Metrics, error) {
	pred := est.predict(sp.xTest)
	if ds.modelType == Regression {
		return regressionMetrics(sp.yTest, pred, false)
	}
	want := make([]string, len(sp.yTest))
	got := make([]string, len(pred))
	for i := range pred {
		want[i] = ds.classes[int(sp.yTest[i])].Key()
		got[i] = ds.classes[int(pred[i])].Key()
	}
	acc, err := accuracy(want, got)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{Accuracy: ptr(acc)}, nil
}

// featureMatrix extracts the named columns as a row-major matrix. Every column
// must be numeric or boolean with no missing values.
func featureMatrix(t *table.Table, names []string) ([][]float64, error) {
	cols := make([]int, len(names))
	for j, name := range names {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, core.NewColumnNotFoundError(name)
		}
		kind := t.Kind(name)
		if kind != table.StorageNumeric && kind != table.StorageBoolean && t.NumRows() > 0 {
			return nil, fmt.Errorf("feature %q has %s values; encode it first", name, kind)
		}
		cols[j] = idx
	}
	x := make([][]float64, t.NumRows())
	for i := range x {
		row := make([]float64, len(cols))
		for j, idx := range cols {
			v := t.At(i, idx)
			if v.IsMissing() {
				return nil, fmt.Errorf("feature %q has a missing value at row %d", names[j], i)
			}
			row[j] = v.AsFloat64()
		}
		x[i] = row
	}
	return x, nil
}
