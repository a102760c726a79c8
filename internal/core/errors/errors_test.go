package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "node not found")
		if err.Error() != "[NOT_FOUND] node not found" {
			t.Errorf("expected [NOT_FOUND] node not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("permission denied")
		err := Wrap(original, CodeInvalidRoot, "project root unreadable")
		expected := "[INVALID_ROOT] project root unreadable: permission denied"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := Newf(CodeValidationError, "threshold must be > 0, got %d", -1)
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := New(CodeNotFound, "module not found")
		err = AddContext(err, CtxPath, "pkg/mod.py")
		err = AddContext(err, CtxModule, "pkg/mod")
		expected := "[NOT_FOUND] module not found (module=pkg/mod path=pkg/mod.py)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextOnPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxAnalyzer, "cycles")
		if !IsCode(err, CodeInternal) {
			t.Errorf("expected plain errors to become INTERNAL_ERROR, got %v", err)
		}
	})
}
