package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Encoder maps frame rows onto the numeric vector a model was fitted on.
type Encoder struct {
	features []FeatureSpec
	offsets  []int
	width    int
	lookup   []map[string]int
}

// NewEncoder validates the feature list and precomputes vector offsets.
func NewEncoder(features []FeatureSpec) (*Encoder, error) {
	if len(features) == 0 {
		return nil, errors.New("no features declared")
	}
	enc := &Encoder{
		features: features,
		offsets:  make([]int, len(features)),
		lookup:   make([]map[string]int, len(features)),
	}
	seen := make(map[string]bool, len(features))
	for i, f := range features {
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("feature %q declared twice", f.Name)
		}
		seen[f.Name] = true
		enc.offsets[i] = enc.width

		switch f.Kind {
		case FeatureNumeric:
			enc.width++
		case FeatureCategorical:
			if len(f.Categories) == 0 {
				return nil, fmt.Errorf("feature %q has no categories", f.Name)
			}
			switch f.HandleUnknown {
			case "", UnknownIgnore, UnknownError:
			default:
				return nil, fmt.Errorf("feature %q: unsupported handle_unknown %q", f.Name, f.HandleUnknown)
			}
			positions := make(map[string]int, len(f.Categories))
			for j, c := range f.Categories {
				positions[c] = j
			}
			enc.lookup[i] = positions
			enc.width += len(f.Categories)
		default:
			return nil, fmt.Errorf("feature %q: unsupported kind %q", f.Name, f.Kind)
		}
	}
	return enc, nil
}

// Width is the length of every encoded vector.
func (e *Encoder) Width() int {
	return e.width
}

// Columns lists the input columns the encoder requires.
func (e *Encoder) Columns() []string {
	names := make([]string, len(e.features))
	for i, f := range e.features {
		names[i] = f.Name
	}
	return names
}

// Encode turns every frame row into a vector. The frame must carry exactly
// the declared columns, in any order.
func (e *Encoder) Encode(frame Frame) ([][]float64, error) {
	index, err := frame.columnIndex()
	if err != nil {
		return nil, err
	}
	for _, f := range e.features {
		if _, ok := index[f.Name]; !ok {
			return nil, fmt.Errorf("missing column %q", f.Name)
		}
	}
	if len(index) != len(e.features) {
		declared := make(map[string]bool, len(e.features))
		for _, f := range e.features {
			declared[f.Name] = true
		}
		for _, name := range frame.Columns {
			if !declared[name] {
				return nil, fmt.Errorf("unexpected column %q", name)
			}
		}
	}

	vectors := make([][]float64, len(frame.Rows))
	for r, row := range frame.Rows {
		if len(row) != len(frame.Columns) {
			return nil, fmt.Errorf("row %d has %d values, want %d", r, len(row), len(frame.Columns))
		}
		vector := make([]float64, e.width)
		for i, f := range e.features {
			if err := e.encodeValue(vector, i, row[index[f.Name]]); err != nil {
				return nil, err
			}
		}
		vectors[r] = vector
	}
	return vectors, nil
}

func (e *Encoder) encodeValue(vector []float64, i int, value any) error {
	f := e.features[i]
	offset := e.offsets[i]
	if f.Kind == FeatureNumeric {
		v, err := numericValue(value)
		if err != nil {
			return fmt.Errorf("column %q: %w", f.Name, err)
		}
		vector[offset] = v
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("column %q: expected string value, got %T", f.Name, value)
	}
	if s == "" {
		return fmt.Errorf("column %q: missing value", f.Name)
	}
	pos, known := e.lookup[i][s]
	if !known {
		if f.HandleUnknown == UnknownError {
			return fmt.Errorf("column %q: unknown category %q", f.Name, s)
		}
		return nil
	}
	vector[offset+pos] = 1
	return nil
}

func numericValue(value any) (float64, error) {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		v = f
	case nil:
		return 0, errors.New("missing value")
	default:
		return 0, fmt.Errorf("expected numeric value, got %T", value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %v", v)
	}
	return v, nil
}
