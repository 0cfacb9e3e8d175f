package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"
)

const modelArtifact = "model file"

// modelDocument is the persisted form of a trained model.
type modelDocument struct {
	ModelType    ModelType      `json:"model_type"`
	Algorithm    string         `json:"algorithm"`
	FeatureNames []string       `json:"feature_names"`
	IsTrained    bool           `json:"is_trained"`
	Scaler       *Scaler        `json:"scaler"`
	Classes      []table.Value  `json:"classes,omitempty"`
	Forest       *Forest        `json:"random_forest,omitempty"`
	Linear       *linearModel   `json:"linear,omitempty"`
	Logistic     *logisticModel `json:"logistic,omitempty"`
}

// Save writes the trained model as one JSON document.
func (m *Model) Save(w io.Writer) error {
	data, err := m.marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return core.NewExternalServiceError(modelArtifact, err)
	}
	return nil
}

// SaveFile writes the model to path atomically.
func (m *Model) SaveFile(path string) error {
	data, err := m.marshal()
	if err != nil {
		return err
	}
	if err := internal.WriteFileAtomic(path, data); err != nil {
		return core.NewExternalServiceError(modelArtifact, err)
	}
	logger.Info("Saved %s model to %s", m.algorithm, path)
	return nil
}

func (m *Model) marshal() ([]byte, error) {
	if !m.trained {
		return nil, core.NewStateError("save", "model must be trained before saving")
	}
	doc := modelDocument{
		ModelType:    m.modelType,
		Algorithm:    m.algorithm.String(),
		FeatureNames: m.featureNames,
		IsTrained:    m.trained,
		Scaler:       m.scaler,
		Classes:      m.classes,
	}
	switch est := m.est.(type) {
	case *Forest:
		doc.Forest = est
	case *linearModel:
		doc.Linear = est
	case *logisticModel:
		doc.Logistic = est
	}
	return json.Marshal(doc)
}

// Load reads a model written by Save. Any structural mismatch is a FormatError.
func Load(r io.Reader) (*Model, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc modelDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, core.NewFormatError(modelArtifact, err)
	}
	m, err := doc.model()
	if err != nil {
		return nil, core.NewFormatError(modelArtifact, err)
	}
	return m, nil
}

// LoadFile reads a model from path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewFormatError(modelArtifact, err)
	}
	return Load(bytes.NewReader(data))
}

func (doc *modelDocument) model() (*Model, error) {
	mt, err := ParseModelType(string(doc.ModelType))
	if err != nil || mt != doc.ModelType {
		return nil, fmt.Errorf("invalid model_type %q", doc.ModelType)
	}
	alg, ok := parseAlgorithm(mt, doc.Algorithm)
	if !ok {
		return nil, fmt.Errorf("invalid algorithm %q for %s", doc.Algorithm, mt)
	}
	if !doc.IsTrained {
		return nil, errors.New("model is not trained")
	}
	p := len(doc.FeatureNames)
	if p == 0 {
		return nil, errors.New("feature_names is empty")
	}
	if doc.Scaler == nil || len(doc.Scaler.Mean) != p || len(doc.Scaler.Scale) != p {
		return nil, errors.New("scaler does not match feature_names")
	}

	numClasses := 0
	if mt == Classification {
		numClasses = len(doc.Classes)
		if numClasses == 0 {
			return nil, errors.New("classification model has no classes")
		}
	} else if len(doc.Classes) > 0 {
		return nil, errors.New("regression model has classes")
	}

	m := &Model{
		modelType:    mt,
		algorithm:    alg,
		featureNames: doc.FeatureNames,
		trained:      true,
		scaler:       doc.Scaler,
		classes:      doc.Classes,
	}
	set := 0
	if doc.Forest != nil {
		set++
	}
	if doc.Linear != nil {
		set++
	}
	if doc.Logistic != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("expected exactly one estimator, found %d", set)
	}

	switch alg {
	case RandomForest:
		if doc.Forest == nil {
			return nil, errors.New("random_forest parameters missing")
		}
		if err := doc.Forest.validate(p, numClasses); err != nil {
			return nil, err
		}
		m.est = doc.Forest
	case Linear:
		if doc.Linear == nil {
			return nil, errors.New("linear parameters missing")
		}
		if err := doc.Linear.validate(p); err != nil {
			return nil, err
		}
		m.est = doc.Linear
	case Logistic:
		if doc.Logistic == nil {
			return nil, errors.New("logistic parameters missing")
		}
		if err := doc.Logistic.validate(p, numClasses); err != nil {
			return nil, err
		}
		m.est = doc.Logistic
	}
	return m, nil
}
