package errors

import (
	"fmt"
	"testing"
)

func TestNovaError_Error(t *testing.T) {
	err := &NovaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "solution not found",
	}

	expected := "NOT_FOUND: solution not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("limit must be positive")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "limit must be positive" {
		t.Errorf("Message = %q, want %q", err.Message, "limit must be positive")
	}
}

func TestNewMissingFormula(t *testing.T) {
	err := NewMissingFormula()

	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	example, ok := err.Details["example"].(map[string]string)
	if !ok {
		t.Fatalf("Details[example] has type %T, want map[string]string", err.Details["example"])
	}
	if example["formula"] != ExampleFormula {
		t.Errorf("example formula = %q, want %q", example["formula"], ExampleFormula)
	}
}

func TestNewUnsupportedFormula(t *testing.T) {
	err := NewUnsupportedFormula("1/0", fmt.Errorf("division by zero"))

	if err.Code != ErrUnsupportedFormula {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnsupportedFormula)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Details["details"] != "division by zero" {
		t.Errorf("Details[details] = %v, want %q", err.Details["details"], "division by zero")
	}
	if err.Details["formula"] != "1/0" {
		t.Errorf("Details[formula] = %v, want %q", err.Details["formula"], "1/0")
	}
}

func TestNewUnsupportedFormula_NilCause(t *testing.T) {
	err := NewUnsupportedFormula("x", nil)
	if err.Details["details"] != "unknown failure" {
		t.Errorf("Details[details] = %v, want %q", err.Details["details"], "unknown failure")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HXYZ")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01HXYZ" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01HXYZ")
	}
}

func TestNewFormulaTooLarge(t *testing.T) {
	err := NewFormulaTooLarge(2000, 2500)

	if err.Code != ErrFormulaTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrFormulaTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_chars"] != 2000 {
		t.Errorf("Details[max_chars] = %v, want 2000", err.Details["max_chars"])
	}
	if err.Details["actual_chars"] != 2500 {
		t.Errorf("Details[actual_chars] = %v, want 2500", err.Details["actual_chars"])
	}
}

func TestNewRateLimited(t *testing.T) {
	err := NewRateLimited(100)
	if err.Status != 429 {
		t.Errorf("Status = %d, want 429", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	if !Is(NewNotFound("x"), ErrNotFound) {
		t.Error("Is(NotFound, ErrNotFound) = false, want true")
	}
	if Is(NewNotFound("x"), ErrInternal) {
		t.Error("Is(NotFound, ErrInternal) = true, want false")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is(plain error, ErrNotFound) = true, want false")
	}
}
