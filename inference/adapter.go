// Package inference turns one InputRecord into one sales prediction.
//
// The Adapter owns the loaded model for the lifetime of the process. It is
// immutable after construction and may be shared by concurrent callers.
package inference

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"grocerysales/ml"
	"grocerysales/schema"
)

// ErrModelUnavailable marks predictions made while no artifact is loaded.
var ErrModelUnavailable = errors.New("model artifact unavailable")

// InferenceError is the only error Predict returns. Message carries the
// underlying failure text verbatim.
type InferenceError struct {
	Message string
	Err     error
}

func (e *InferenceError) Error() string {
	return e.Message
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func newInferenceError(err error) *InferenceError {
	return &InferenceError{Message: err.Error(), Err: err}
}

// Adapter wraps a loaded model behind the prediction boundary.
type Adapter struct {
	model   ml.Regressor
	info    ml.ModelInfo
	loadErr error
	logger  *zap.Logger
}

// New wraps an already loaded model.
func New(model ml.Regressor, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{model: model, logger: logger}
	if m, ok := model.(interface{ Info() ml.ModelInfo }); ok {
		a.info = m.Info()
	}
	return a
}

// Open loads the artifact once. Callers keep the returned Adapter for the
// rest of the process.
func Open(modelType, path string, logger *zap.Logger) (*Adapter, error) {
	model, err := ml.LoadModel(modelType, path)
	if err != nil {
		return nil, err
	}
	a := New(model, logger)
	a.logger.Info("model artifact loaded",
		zap.String("path", path),
		zap.String("name", a.info.Name),
		zap.String("model_type", a.info.ModelType),
		zap.String("version", a.info.Version))
	return a, nil
}

// Unavailable returns an Adapter whose predictions all fail with loadErr.
func Unavailable(loadErr error, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{loadErr: fmt.Errorf("%w: %v", ErrModelUnavailable, loadErr), logger: logger}
}

// Ready reports whether a model is loaded.
func (a *Adapter) Ready() bool {
	return a.model != nil
}

// ModelInfo describes the loaded artifact, if any.
func (a *Adapter) ModelInfo() ml.ModelInfo {
	info := a.info
	info.Columns = append([]string(nil), a.info.Columns...)
	return info
}

// Predict returns the predicted sales for one record. Values are passed to
// the model as given; only the presence of every field is checked.
func (a *Adapter) Predict(record schema.InputRecord) (float64, error) {
	frame, err := RecordFrame(record)
	if err != nil {
		return 0, a.fail(err)
	}
	return a.PredictFrame(frame)
}

// PredictFrame scores a single-row frame and returns its only output.
func (a *Adapter) PredictFrame(frame ml.Frame) (sales float64, err error) {
	if a.model == nil {
		return 0, a.fail(a.loadErr)
	}
	if frame.Len() != 1 {
		return 0, a.fail(fmt.Errorf("expected a single row, got %d", frame.Len()))
	}

	defer func() {
		if r := recover(); r != nil {
			sales, err = 0, a.fail(fmt.Errorf("model panic: %v", r))
		}
	}()

	start := time.Now()
	out, err := a.model.Predict(frame)
	if err != nil {
		return 0, a.fail(err)
	}
	if len(out) == 0 {
		return 0, a.fail(errors.New("model returned no predictions"))
	}
	sales = out[0]
	if math.IsNaN(sales) || math.IsInf(sales, 0) {
		return 0, a.fail(fmt.Errorf("model returned non-finite prediction %v", sales))
	}
	a.logger.Debug("prediction", zap.Float64("sales", sales), zap.Duration("took", time.Since(start)))
	return sales, nil
}

func (a *Adapter) fail(err error) *InferenceError {
	if err == nil {
		err = ErrModelUnavailable
	}
	ie := newInferenceError(err)
	a.logger.Warn("prediction failed", zap.Error(err))
	return ie
}
