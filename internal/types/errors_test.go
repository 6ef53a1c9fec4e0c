package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NotFound("missing"), want: KindNotFound},
		{name: "conflict", err: Conflict("duplicate"), want: KindConflict},
		{name: "invalid input", err: InvalidInput("bad"), want: KindInvalidInput},
		{name: "unauthorized", err: Unauthorized("nope"), want: KindUnauthorized},
		{name: "internal", err: Internal("boom", errors.New("cause")), want: KindInternal},
		{name: "plain error", err: errors.New("plain"), want: KindInternal},
		{name: "wrapped domain error", err: fmt.Errorf("context: %w", NotFound("missing")), want: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("Expected kind %v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("plant not found")
	if err.Error() != "plant not found" {
		t.Errorf("Expected bare message, got %q", err.Error())
	}

	cause := errors.New("connection refused")
	internal := Internal("query failed", cause)
	if internal.Error() != "query failed: connection refused" {
		t.Errorf("Expected message with cause, got %q", internal.Error())
	}
	if !errors.Is(internal, cause) {
		t.Error("Expected Internal error to unwrap to its cause")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND_404", "plant not found", nil)
	if resp.Error.Code != "NOT_FOUND_404" {
		t.Errorf("Expected code NOT_FOUND_404, got %s", resp.Error.Code)
	}
	if resp.Error.Message != "plant not found" {
		t.Errorf("Expected message to carry through, got %s", resp.Error.Message)
	}
	if resp.Error.Details != nil {
		t.Error("Expected nil details to stay nil")
	}
}
