// Package handlers provides shared HTTP response and request-decoding helpers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing left to do but note it.
		slog.Warn("response encoding failed", "error", err)
	}
}

// RespondError logs err and writes a JSON error body with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Warn("request failed", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into out, rejecting unknown fields.
func DecodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
