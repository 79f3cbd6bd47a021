// Package errors provides custom error types for the companion client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrTransport             = errors.New("transport failure")
	ErrService               = errors.New("service error")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrInvalidResponse       = errors.New("invalid response format")
)

// TransportError represents a network or connectivity failure. Timeouts surface as
// transport errors too.
type TransportError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Operation)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Endpoint)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *TransportError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	_, ok := target.(*TransportError)
	return ok
}

// NewTransportError creates a new TransportError
func NewTransportError(operation, endpoint string, cause error) *TransportError {
	return &TransportError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// ServiceError represents a non-success answer from the remote service
type ServiceError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("service error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("service error at %s: %s", e.Endpoint, e.Message)
}

// Is allows comparison with sentinel errors. A ServiceError caused by an
// unreadable body also matches ErrInvalidResponse.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrService:
		return true
	case ErrInvalidResponse:
		return e.StatusCode >= 200 && e.StatusCode < 300
	}
	_, ok := target.(*ServiceError)
	return ok
}

// NewServiceError creates a new ServiceError
func NewServiceError(statusCode int, endpoint, message string) *ServiceError {
	return &ServiceError{StatusCode: statusCode, Endpoint: endpoint, Message: message}
}

// CapabilityUnavailableError is returned when the platform lacks a speech capability
type CapabilityUnavailableError struct {
	Capability string
}

func (e *CapabilityUnavailableError) Error() string {
	if e.Capability == "" {
		return "capability unavailable"
	}
	return fmt.Sprintf("%s is not available on this system", e.Capability)
}

// Is allows comparison with sentinel errors
func (e *CapabilityUnavailableError) Is(target error) bool {
	if target == ErrCapabilityUnavailable {
		return true
	}
	_, ok := target.(*CapabilityUnavailableError)
	return ok
}

// NewCapabilityUnavailableError creates a new CapabilityUnavailableError
func NewCapabilityUnavailableError(capability string) *CapabilityUnavailableError {
	return &CapabilityUnavailableError{Capability: capability}
}

// IsTransportError reports whether err is or wraps a TransportError
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsServiceError reports whether err is or wraps a ServiceError
func IsServiceError(err error) bool {
	return errors.Is(err, ErrService)
}

// IsCapabilityUnavailable reports whether err is or wraps a CapabilityUnavailableError
func IsCapabilityUnavailable(err error) bool {
	return errors.Is(err, ErrCapabilityUnavailable)
}

// GetHTTPStatus extracts the HTTP status from a ServiceError, or 0
func GetHTTPStatus(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode
	}
	return 0
}
