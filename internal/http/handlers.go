package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/temperature-average-service/internal/extract"
	"github.com/kjstillabower/temperature-average-service/internal/health"
	"github.com/kjstillabower/temperature-average-service/internal/models"
	"github.com/kjstillabower/temperature-average-service/internal/observability"
	"github.com/kjstillabower/temperature-average-service/internal/validation"
	"github.com/kjstillabower/temperature-average-service/internal/variant"
	"github.com/kjstillabower/temperature-average-service/internal/views"
)

// Averager computes the extraction result for a text. Implemented by service.AverageService.
type Averager interface {
	Compute(ctx context.Context, text string) models.ExtractionResult
}

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	health.Config
	// CachePing, when set, is called to check cache reachability. Used for remote cache backends.
	CachePing func() error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	averager         Averager
	opts             variant.Options
	route            string
	maxInputRunes    int
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. route is the URL the form posts back to.
// maxInputRunes of 0 disables the length limit.
func NewHandler(
	averager Averager,
	opts variant.Options,
	route string,
	maxInputRunes int,
	healthConfig *HealthConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		averager:      averager,
		opts:          opts,
		route:         route,
		maxInputRunes: maxInputRunes,
		healthConfig:  healthConfig,
		logger:        logger,
	}
}

// TemperatureAverage handles GET (input form) and POST (compute averages) on the configured route.
func (h *Handler) TemperatureAverage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.serveForm(w, r)
	case http.MethodPost:
		h.computeAverages(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are supported")
	}
}

func (h *Handler) serveForm(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderForm(&buf, views.FormData{Action: h.route}); err != nil {
		writeInternalError(w, r, "render form", err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (h *Handler) computeAverages(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
			return
		}
		writeError(w, r, http.StatusBadRequest, "UNREADABLE_BODY", "Unable to read request body")
		return
	}

	text, format := extractInput(body, r.Header.Get("Content-Type"), h.opts.DecodeStructuredBodies)
	observability.InputFormatTotal.WithLabelValues(string(format)).Inc()

	if h.opts.StrictValidation {
		if _, err := validation.ValidateInput(text, h.maxInputRunes); err != nil {
			h.writeValidationError(w, r, err, format)
			return
		}
	}

	result := h.averager.Compute(r.Context(), text)

	if h.opts.NegotiateHTML && wantsHTML(r.Header.Get("Accept")) {
		var buf bytes.Buffer
		err := views.RenderResult(&buf, views.ResultData{
			Action:   h.route,
			Count:    result.Count,
			DayAvg:   extract.Round1(result.DayAverage),
			NightAvg: extract.Round1(result.NightAverage),
			Input:    text,
		})
		if err != nil {
			writeInternalError(w, r, "render result", err)
			return
		}
		observability.RecordExtraction(h.opts.Label(), "html", result.Count)
		writeHTML(w, http.StatusOK, buf.Bytes())
		return
	}

	observability.RecordExtraction(h.opts.Label(), "json", result.Count)
	writeJSON(w, http.StatusOK, toResponse(result, h.opts.IncludeCountInJSON))
}

func (h *Handler) writeValidationError(w http.ResponseWriter, r *http.Request, err error, format inputFormat) {
	if logger := observability.LoggerFromContext(r.Context()); logger != nil {
		logger.Debug("rejected input", zap.Error(err), zap.String("input_format", string(format)))
	}
	switch {
	case errors.Is(err, validation.ErrInputTooLong):
		writeError(w, r, http.StatusBadRequest, "INPUT_TOO_LONG",
			fmt.Sprintf("Input exceeds %d characters", h.maxInputRunes))
	default:
		observability.MissingInputTotal.Inc()
		writeError(w, r, http.StatusBadRequest, "MISSING_INPUT", validation.MissingInputMessage)
	}
}

// toResponse rounds the averages for the wire and drops count when the variant excludes it.
func toResponse(result models.ExtractionResult, includeCount bool) models.AverageResponse {
	resp := models.AverageResponse{
		DayAvg:   extract.Round1(result.DayAverage),
		NightAvg: extract.Round1(result.NightAverage),
	}
	if includeCount {
		count := result.Count
		resp.Count = &count
	}
	return resp
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	var cfg health.Config
	if h.healthConfig != nil {
		cfg = h.healthConfig.Config
	}
	result := health.Evaluate(cfg, health.Default, time.Now())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.Status && h.logger != nil {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.Status),
			zap.String("reason", result.Reason))
	}
	h.healthStatusPrev = result.Status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"templates": "healthy"}
	if err := views.RenderForm(io.Discard, views.FormData{Action: h.route}); err != nil {
		checks["templates"] = "unhealthy"
	}
	if h.healthConfig != nil && h.healthConfig.CachePing != nil {
		if h.healthConfig.CachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	writeJSON(w, result.StatusCode, map[string]interface{}{
		"status":    result.Status,
		"service":   observability.ServiceName,
		"version":   "dev",
		"variant":   h.opts.Label(),
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes {"error": message, "code": code, "requestId": id}. requestId
// is omitted when no correlation ID is on the request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := map[string]string{
		"error": message,
		"code":  code,
	}
	if id := observability.CorrelationID(r.Context()); id != "" {
		body["requestId"] = id
	}
	writeJSON(w, status, body)
}

// writeInternalError logs err and answers a generic 500 so no internals reach the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if logger := observability.LoggerFromContext(r.Context()); logger != nil {
		logger.Error(op, zap.Error(err))
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Internal server error")
}
