package ml

import "fmt"

// Regressor is anything that scores a frame, one output per row.
type Regressor interface {
	Predict(frame Frame) ([]float64, error)
}

type estimator interface {
	predictVector(features []float64) (float64, error)
}

// ModelInfo identifies a loaded artifact.
type ModelInfo struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	ModelType string   `json:"model_type"`
	Target    string   `json:"target"`
	Columns   []string `json:"columns"`
}

// Model is a loaded artifact: the encoder plus the fitted estimator. It is
// never modified after construction.
type Model struct {
	info      ModelInfo
	encoder   *Encoder
	estimator estimator
}

// NewModel builds a Model from a decoded artifact.
func NewModel(artifact *Artifact) (*Model, error) {
	encoder, err := NewEncoder(artifact.Features)
	if err != nil {
		return nil, err
	}

	var est estimator
	switch artifact.ModelType {
	case ModelDecisionTree:
		if len(artifact.Trees) != 1 {
			return nil, fmt.Errorf("decision_tree needs exactly one tree, got %d", len(artifact.Trees))
		}
		est, err = NewDecisionTree(artifact.Trees[0], encoder.Width())
	case ModelRandomForest:
		est, err = NewRandomForest(artifact.Trees, encoder.Width())
	case ModelLinear:
		est, err = NewLinearRegression(artifact.Intercept, artifact.Coefficients, encoder.Width())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, artifact.ModelType)
	}
	if err != nil {
		return nil, err
	}

	return &Model{
		info: ModelInfo{
			Name:      artifact.Name,
			Version:   artifact.Version,
			ModelType: artifact.ModelType,
			Target:    artifact.Target,
			Columns:   encoder.Columns(),
		},
		encoder:   encoder,
		estimator: est,
	}, nil
}

// Info describes the loaded artifact.
func (m *Model) Info() ModelInfo {
	info := m.info
	info.Columns = append([]string(nil), m.info.Columns...)
	return info
}

// Predict encodes the frame and scores every row.
func (m *Model) Predict(frame Frame) ([]float64, error) {
	vectors, err := m.encoder.Encode(frame)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vectors))
	for i, vector := range vectors {
		v, err := m.estimator.predictVector(vector)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
