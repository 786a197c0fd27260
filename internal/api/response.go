package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fjacquet/finance-advisor/internal/apperror"
	"fjacquet/finance-advisor/internal/logging"
)

const (
	maxJSONBody = 1 << 20
	maxCSVBody  = 10 << 20
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusFor maps a public error kind to an HTTP status.
func StatusFor(kind string) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperror.KindCapabilityTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err without leaking internals. Unexpected errors are
// logged in full.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger logging.Logger) {
	kind := apperror.Kind(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldStatus, status))
	} else {
		logger.WithError(err).Debug("Request rejected",
			logging.F(logging.FieldPath, r.URL.Path),
			logging.F(logging.FieldStatus, status))
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: apperror.PublicMessage(err)}})
}

// decodeJSON reads a JSON body into v. Malformed bodies become validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.NewValidationError("body", "", fmt.Sprintf("must not exceed %d bytes", maxErr.Limit))
		}
		if errors.Is(err, io.EOF) {
			return apperror.NewValidationError("body", "", "must not be empty")
		}
		return apperror.NewValidationError("body", "", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func capabilityMissing(capability string) error {
	return &apperror.CapabilityError{
		Capability: capability,
		Provider:   "none",
		Kind:       apperror.CapabilityKindUnavailable,
		Err:        errors.New("no provider configured"),
	}
}
