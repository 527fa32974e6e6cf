package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"grocerysales/display"
	"grocerysales/inference"
	"grocerysales/ml"
	"grocerysales/monitoring"
	"grocerysales/schema"
)

type handlers struct {
	adapter   *inference.Adapter
	validator *schema.BodyValidator
	cache     *predictionCache
	display   *display.Formatter
	metrics   *monitoring.MetricsCollector
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

type healthResponse struct {
	Status string       `json:"status"`
	Model  ml.ModelInfo `json:"model"`
}

type schemaResponse struct {
	Columns  []string           `json:"columns"`
	Fields   []schema.FieldSpec `json:"fields"`
	Defaults schema.InputRecord `json:"defaults"`
}

type predictionResponse struct {
	Prediction float64                 `json:"prediction"`
	Display    string                  `json:"display"`
	Summary    []schema.NumericSummary `json:"summary"`
	Cached     bool                    `json:"cached"`
}

type errorResponse struct {
	Error      string             `json:"error"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

func RegisterHandlers(mux *http.ServeMux, h *handlers) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.adapter.Ready() {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, healthResponse{Status: status, Model: h.adapter.ModelInfo()})
}

func (h *handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newSchemaResponse())
}

func newSchemaResponse() schemaResponse {
	return schemaResponse{
		Columns:  schema.AllFieldNames(),
		Fields:   schema.Fields(),
		Defaults: schema.DefaultRecord(),
	}
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.RecordRejected("http")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.validator.Decode(body)
	if err != nil {
		h.metrics.RecordRejected("http")
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Violations: ve.Violations})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.predict("http", record)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, inference.ErrModelUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		respondError(w, status, h.display.Failure(err))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// predict runs one record through the cache and the adapter. Both the JSON
// endpoint and the WebSocket form session go through here.
func (h *handlers) predict(source string, record schema.InputRecord) (predictionResponse, error) {
	start := time.Now()
	sales, cached := h.cache.get(record)
	if !cached {
		var err error
		sales, err = h.adapter.Predict(record)
		if err != nil {
			h.metrics.RecordPrediction(source, time.Since(start), 0, err, false)
			return predictionResponse{}, err
		}
		h.cache.add(record, sales)
	}
	h.metrics.RecordPrediction(source, time.Since(start), sales, nil, cached)

	return predictionResponse{
		Prediction: sales,
		Display:    h.display.Sales(sales),
		Summary:    schema.Summarize(record),
		Cached:     cached,
	}, nil
}

func (h *handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "prometheus" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = io.WriteString(w, h.metrics.ExportPrometheus())
		return
	}
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// respondJSON 统一JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
