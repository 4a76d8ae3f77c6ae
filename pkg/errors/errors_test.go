package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("store unreachable"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: store unreachable)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Internal("wrapped", originalErr)

	if unwrapped := errors.Unwrap(appErr); unwrapped != originalErr {
		t.Errorf("Unwrap() should return the original error")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Flight"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("not enough seats", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("bad credentials"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("access denied"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("duplicate"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")

	if err.Message != "Booking not found" {
		t.Errorf("message = %q, want %q", err.Message, "Booking not found")
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("details id = %v, want abc123", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError should return the same AppError")
	}

	wrapped := fmt.Errorf("outer: %w", Forbidden("nope"))
	if got := AsAppError(wrapped); got.Code != CodeForbidden {
		t.Errorf("AsAppError should unwrap nested AppError, got code %s", got.Code)
	}

	plain := errors.New("driver error")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("plain errors should map to %s, got %s", CodeInternal, got.Code)
	}
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("plain errors should map to 500, got %d", got.HTTPStatus)
	}
}
