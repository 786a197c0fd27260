// Package apperror defines the error taxonomy shared by the advisory engine.
// Every surfaced failure maps to a public kind and a message that is safe to
// show to a caller.
package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Public error kinds.
const (
	KindValidation         = "validation"
	KindNotFound           = "not_found"
	KindServiceUnavailable = "service_unavailable"
	KindCapabilityTimeout  = "capability_timeout"
	KindInternal           = "internal"
)

// Capability failure kinds carried by CapabilityError.
const (
	CapabilityKindTimeout     = "timeout"
	CapabilityKindUnavailable = "unavailable"
	CapabilityKindMalformed   = "malformed"
)

// Sentinels matched through errors.Is on a CapabilityError.
var (
	ErrCapabilityTimeout  = errors.New("capability timed out")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed capability response")
)

// ValidationError is a per-item input failure. It never aborts a batch: CSV
// import and categorization report these alongside their results.
type ValidationError struct {
	Field  string `json:"field" yaml:"field"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
	// Row is the 1-based line number in the source file, 0 when not applicable.
	Row int `json:"row,omitempty" yaml:"row,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid %s '%s': %s", e.Row, e.Field, e.Value, e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError without row information.
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// CapabilityError wraps a failure of an external capability such as text
// completion or embedding.
type CapabilityError struct {
	Capability string
	Provider   string
	Kind       string
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s via %s: %s: %v", e.Capability, e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s via %s: %s", e.Capability, e.Provider, e.Kind)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel that corresponds to Kind.
func (e *CapabilityError) Is(target error) bool {
	switch target {
	case ErrCapabilityTimeout:
		return e.Kind == CapabilityKindTimeout
	case ErrServiceUnavailable:
		return e.Kind == CapabilityKindUnavailable
	case ErrMalformedResponse:
		return e.Kind == CapabilityKindMalformed
	}
	return false
}

// NewCapabilityError classifies err: deadline overruns become timeouts,
// everything else is reported as unavailable.
func NewCapabilityError(capability, provider string, err error) *CapabilityError {
	kind := CapabilityKindUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCapabilityTimeout) {
		kind = CapabilityKindTimeout
	}
	return &CapabilityError{Capability: capability, Provider: provider, Kind: kind, Err: err}
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}

// Kind maps err to one of the public kinds.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return KindNotFound
	}
	if errors.Is(err, ErrCapabilityTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return KindCapabilityTimeout
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrMalformedResponse) {
		return KindServiceUnavailable
	}
	return KindInternal
}

// PublicMessage returns a human-readable message that never leaks internals
// such as provider errors or file paths.
func PublicMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr.Error()
	}

	switch Kind(err) {
	case KindCapabilityTimeout:
		return "the advisory service took too long to respond, please try again"
	case KindServiceUnavailable:
		return "the advisory service is temporarily unavailable"
	case "":
		return ""
	default:
		return "an internal error occurred"
	}
}
