package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestReconcilerError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeInvalidFormat,
			message:    "invalid format",
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("negative tolerance"),
			expectCode: 4,
		},
		{
			name:       "internal error",
			category:   CategoryInternal,
			code:       CodeUnexpectedError,
			message:    "boom",
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *ReconcilerError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
			if len(err.StackTrace) == 0 {
				t.Error("expected a stack trace to be captured")
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
}

func TestReconcilerErrorWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "/path/to/bank.csv").
		WithContext("line", 42).
		WithSuggestion("check file path")

	if err.Context["file"] != "/path/to/bank.csv" {
		t.Errorf("expected file context, got %v", err.Context["file"])
	}
	if err.Context["line"] != 42 {
		t.Errorf("expected line context 42, got %v", err.Context["line"])
	}

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected error string '%s', got '%s'", expected, err.Error())
	}
}

func TestSpecificErrorConstructors(t *testing.T) {
	t.Run("FileError", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := FileError(CodeFilePermission, "/data/ledger.csv", cause)

		if err.Category != CategoryFile {
			t.Errorf("expected file category, got %s", err.Category)
		}
		if err.Context["file_path"] != "/data/ledger.csv" {
			t.Errorf("expected file_path context, got %v", err.Context["file_path"])
		}
		if err.Suggestion == "" {
			t.Error("expected suggestion to be set")
		}
		if err.Cause != cause {
			t.Errorf("expected cause to be %v, got %v", cause, err.Cause)
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		err := ParseError(CodeInvalidData, "bank.csv", 10, "amount", "12.3.4", nil)

		if err.Category != CategoryParse {
			t.Errorf("expected parse category, got %s", err.Category)
		}
		if err.Context["line"] != 10 {
			t.Errorf("expected line context, got %v", err.Context["line"])
		}
		if err.Context["value"] != "12.3.4" {
			t.Errorf("expected value context, got %v", err.Context["value"])
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := ValidationError(CodeInvalidAmount, "toleranceAmount", "-1", nil)

		if err.Category != CategoryValidation {
			t.Errorf("expected validation category, got %s", err.Category)
		}
		if err.Context["field"] != "toleranceAmount" {
			t.Errorf("expected field context, got %v", err.Context["field"])
		}
	})

	t.Run("ConfigurationError", func(t *testing.T) {
		err := ConfigurationError(CodeInvalidConfig, "matching.date_tolerance_days", -1, errors.New("negative"))

		if err.GetExitCode() != 4 {
			t.Errorf("expected exit code 4, got %d", err.GetExitCode())
		}
		if err.Context["setting"] != "matching.date_tolerance_days" {
			t.Errorf("expected setting context, got %v", err.Context["setting"])
		}
	})
}

func TestAsReconcilerError(t *testing.T) {
	reconcilerErr := New(CategoryFile, CodeFileNotFound, "test")
	genericErr := errors.New("generic error")
	wrapped := fmt.Errorf("loading bank file: %w", reconcilerErr)

	if extracted, ok := AsReconcilerError(reconcilerErr); !ok || extracted != reconcilerErr {
		t.Error("expected AsReconcilerError to extract ReconcilerError")
	}
	if extracted, ok := AsReconcilerError(wrapped); !ok || extracted != reconcilerErr {
		t.Error("expected AsReconcilerError to find ReconcilerError in a wrapped chain")
	}
	if _, ok := AsReconcilerError(genericErr); ok {
		t.Error("expected AsReconcilerError to return false for generic error")
	}
	if _, ok := AsReconcilerError(nil); ok {
		t.Error("expected AsReconcilerError to return false for nil")
	}

	if !IsReconcilerError(reconcilerErr) || IsReconcilerError(genericErr) {
		t.Error("unexpected IsReconcilerError result")
	}
}
