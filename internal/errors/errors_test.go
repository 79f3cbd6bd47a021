package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("chat request", "/api/chat", cause)

	expected := "chat request failed (/api/chat): connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrTransport) {
		t.Error("Expected TransportError to match ErrTransport")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected TransportError to unwrap to its cause")
	}
	if errors.Is(err, ErrService) {
		t.Error("TransportError should not match ErrService")
	}
}

func TestServiceError(t *testing.T) {
	err := NewServiceError(500, "/api/chat", "internal error")

	expected := "service error [500] at /api/chat: internal error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrService) {
		t.Error("Expected ServiceError to match ErrService")
	}
	if errors.Is(err, ErrInvalidResponse) {
		t.Error("A 500 should not be reported as an invalid response")
	}

	noStatus := NewServiceError(0, "/api/topics", "bad body")
	if noStatus.Error() != "service error at /api/topics: bad body" {
		t.Errorf("Error() = %s", noStatus.Error())
	}
}

func TestServiceError_InvalidResponse(t *testing.T) {
	err := NewServiceError(200, "/api/sentiment", "missing sentiment field")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected 2xx ServiceError to match ErrInvalidResponse")
	}
}

func TestCapabilityUnavailableError(t *testing.T) {
	err := NewCapabilityUnavailableError("speech recognition")

	if err.Error() != "speech recognition is not available on this system" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !IsCapabilityUnavailable(err) {
		t.Error("Expected IsCapabilityUnavailable to be true")
	}

	empty := &CapabilityUnavailableError{}
	if empty.Error() != "capability unavailable" {
		t.Errorf("Error() = %s", empty.Error())
	}
}

func TestHelpers_Wrapped(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransport bool
		wantService   bool
		wantStatus    int
	}{
		{
			name:          "wrapped transport",
			err:           fmt.Errorf("sentiment: %w", NewTransportError("sentiment request", "/api/sentiment", errors.New("timeout"))),
			wantTransport: true,
		},
		{
			name:        "wrapped service",
			err:         fmt.Errorf("chat: %w", NewServiceError(503, "/api/chat", "unavailable")),
			wantService: true,
			wantStatus:  503,
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
		},
		{
			name: "nil",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportError(tt.err); got != tt.wantTransport {
				t.Errorf("IsTransportError() = %v, want %v", got, tt.wantTransport)
			}
			if got := IsServiceError(tt.err); got != tt.wantService {
				t.Errorf("IsServiceError() = %v, want %v", got, tt.wantService)
			}
			if got := GetHTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}
