package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/fitlyf/cart-service/internal/clients"
	"github.com/fjod/fitlyf/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context(), zap.L()).Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleUpstreamError maps a failed collaborator call to a response.
func handleUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *clients.APIError
	switch {
	case errors.Is(err, clients.ErrServiceUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable")
	case errors.Is(err, clients.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "timeout", "upstream timed out")
	case errors.As(err, &apiErr):
		respondError(w, r, http.StatusBadGateway, "upstream_error", apiErr.Error())
	default:
		logger.FromContext(r.Context(), zap.L()).Error("upstream call failed", zap.Error(err))
		respondError(w, r, http.StatusBadGateway, "upstream_error", "upstream request failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
