package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"server", NewServer(errors.New("boom")), http.StatusInternalServerError},
		{"invalid input", NewInvalidInput(nil, "title", "required"), http.StatusUnprocessableEntity},
		{"invalid format", NewInvalidFormat(), http.StatusBadRequest},
		{"odd kv", NewInvalidInput(nil, "title"), http.StatusBadRequest},
		{"not found", NewNotFound("notification not found"), http.StatusNotFound},
		{"forbidden", NewForbidden(), http.StatusForbidden},
		{"unauthorized", NewUnauthorized(), http.StatusUnauthorized},
		{"unavailable", NewUnavailable("queue offline"), http.StatusServiceUnavailable},
		{"conflict", NewBusiness("dup", CodeConflict), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}

			// Act
			got := gerr.StatusCode()

			// Assert
			if got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewInvalidInput_Fields(t *testing.T) {
	// Act
	err := NewInvalidInput(nil, "title", "required", "body", "too long")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error")
	}
	if gerr.Fields()["body"] != "too long" || len(gerr.Fields()) != 2 {
		t.Fatalf("unexpected fields %v", gerr.Fields())
	}
}

func TestNotFoundWrapsSentinel(t *testing.T) {
	// Act
	err := NewNotFound("missing")

	// Assert
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("CodeOf() = %v", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors must map to CodeInternal")
	}
}
