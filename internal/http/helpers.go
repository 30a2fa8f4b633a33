package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fincoach/internal/core"
	"fincoach/internal/services"
	"fincoach/internal/source"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes and emits a JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	} else {
		slog.WarnContext(r.Context(), "Request rejected",
			"error", err, "status", status, "method", r.Method, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoTransactions),
		errors.Is(err, source.ErrNoHeader),
		errors.Is(err, source.ErrNoAmountColumn),
		errors.Is(err, source.ErrNoDateColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonths),
		errors.Is(err, core.ErrInvalidTimeframe),
		errors.Is(err, core.ErrNegativeValue),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyMerchant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeBadRequest reports a request parsing failure as 400 regardless of the
// underlying error value.
func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "Bad request",
		"error", err, "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
}

// decodeJSON decodes a request body into dst, capping the body size.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseWindowParam reads the window query parameter, defaulting to all data.
func parseWindowParam(r *http.Request) (core.Window, error) {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	if v == "" {
		return core.WindowAll, nil
	}
	return core.ParseWindow(v)
}

// parseExcludeParam reads the comma-separated exclude query parameter.
func parseExcludeParam(r *http.Request) []string {
	v := strings.TrimSpace(r.URL.Query().Get("exclude"))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseThresholdParam reads the detection threshold, defaulting when absent.
func parseThresholdParam(r *http.Request, fallback float64) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("threshold"))
	if v == "" {
		return fallback, nil
	}
	threshold, err := strconv.ParseFloat(v, 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return 0, fmt.Errorf("%w: threshold %q must be between 0 and 1", core.ErrInvalidAmount, v)
	}
	return threshold, nil
}
