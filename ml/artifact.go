package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	FeatureNumeric     = "numeric"
	FeatureCategorical = "categorical"

	UnknownIgnore = "ignore"
	UnknownError  = "error"
)

// Artifact is the on-disk form of a trained regression model.
type Artifact struct {
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	ModelType    string        `json:"model_type"`
	Target       string        `json:"target"`
	Features     []FeatureSpec `json:"features"`
	Trees        [][]TreeNode  `json:"trees,omitempty"`
	Intercept    float64       `json:"intercept,omitempty"`
	Coefficients []float64     `json:"coefficients,omitempty"`
}

// FeatureSpec tells the encoder how to turn one input column into model
// inputs. Categorical columns are one-hot encoded in Categories order.
type FeatureSpec struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Categories    []string `json:"categories,omitempty"`
	HandleUnknown string   `json:"handle_unknown,omitempty"`
}

// ReadArtifact loads and decodes an artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return &artifact, nil
}

// Save writes the artifact as JSON.
func (a *Artifact) Save(path string) error {
	if len(a.Features) == 0 {
		return errors.New("artifact has no features")
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
