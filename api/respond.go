package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"subscription-engine/internal/errors"
	"subscription-engine/internal/logging"
)

// successEnvelope is the wire format for successful responses
type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// errorEnvelope is the wire format for error responses
type errorEnvelope struct {
	Status    string         `json:"status"`
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Status: "success", Data: data})
}

// writeError maps domain errors onto the error envelope. Rule violations
// surface the complete ordered violation list so a client can fix every
// problem in one round-trip.
func writeError(w http.ResponseWriter, err error) {
	domainErr, ok := err.(*errors.Error)
	if !ok {
		logging.Error("unhandled error",
			zap.String("request_id", w.Header().Get("X-Request-ID")), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Status:    "error",
			ErrorCode: string(errors.TypeInternal),
			Message:   "internal error",
		})
		return
	}

	details := domainErr.Details
	if len(domainErr.Violations) > 0 {
		// Copy so the error value itself is never mutated.
		augmented := make(map[string]any, len(details)+1)
		for k, v := range details {
			augmented[k] = v
		}
		augmented["violations"] = domainErr.Violations
		details = augmented
	}

	writeJSON(w, domainErr.HTTPStatus(), errorEnvelope{
		Status:    "error",
		ErrorCode: string(domainErr.Type),
		Message:   domainErr.Message,
		Details:   details,
	})
}

func writeInvalidJSON(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Status:    "error",
		ErrorCode: string(errors.TypeValidation),
		Message:   "invalid JSON body: " + err.Error(),
	})
}
