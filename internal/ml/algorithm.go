// Package ml wraps the regression and classification algorithms used by the
// service behind a single train/predict/persist model type.
package ml

import (
	"fmt"
	"strings"

	"safetyhub/domain/core"
)

// ModelType is the learning task.
type ModelType string

const (
	Regression     ModelType = "regression"
	Classification ModelType = "classification"
)

// ParseModelType validates a model type name.
func ParseModelType(s string) (ModelType, error) {
	switch ModelType(strings.ToLower(strings.TrimSpace(s))) {
	case Regression:
		return Regression, nil
	case Classification:
		return Classification, nil
	}
	return "", core.NewConfigurationError("model_type", fmt.Sprintf("must be 'regression' or 'classification', got %q", s))
}

// Algorithm is the estimator family, resolved once when a model is selected.
type Algorithm int

const (
	RandomForest Algorithm = iota
	Linear
	Logistic
)

func (a Algorithm) String() string {
	switch a {
	case Linear:
		return "linear"
	case Logistic:
		return "logistic"
	default:
		return "random_forest"
	}
}

// parseAlgorithm accepts only exact names valid for the model type.
func parseAlgorithm(modelType ModelType, name string) (Algorithm, bool) {
	switch {
	case name == "random_forest":
		return RandomForest, true
	case name == "linear" && modelType == Regression:
		return Linear, true
	case name == "logistic" && modelType == Classification:
		return Logistic, true
	}
	return RandomForest, false
}

// resolveAlgorithm maps an algorithm name to its variant, falling back to
// random forest for names the model type does not support.
func resolveAlgorithm(modelType ModelType, name string) Algorithm {
	alg, ok := parseAlgorithm(modelType, strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		logger.Debug("Unknown algorithm %q for %s, using random_forest", name, modelType)
	}
	return alg
}

// candidates is the fixed comparison set in declared order.
func candidates(modelType ModelType) []Algorithm {
	if modelType == Classification {
		return []Algorithm{RandomForest, Logistic}
	}
	return []Algorithm{RandomForest, Linear}
}
