package ml

import (
	"errors"
	"fmt"
)

const (
	ModelDecisionTree = "decision_tree"
	ModelRandomForest = "random_forest"
	ModelLinear       = "linear"
)

var ErrUnsupportedModel = errors.New("unsupported model type")

// LoadModel reads the artifact at path. An empty modelType accepts whatever
// the artifact declares; otherwise the two must agree.
func LoadModel(modelType, path string) (*Model, error) {
	artifact, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	if modelType != "" && modelType != artifact.ModelType {
		return nil, fmt.Errorf("artifact %s is a %q model, configured %q", path, artifact.ModelType, modelType)
	}
	model, err := NewModel(artifact)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", path, err)
	}
	return model, nil
}
