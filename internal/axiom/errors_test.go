package axiom

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolFailureError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ToolFailureError{Tool: "z3", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped cause")
	}

	var tf *ToolFailureError
	wrapped := fmt.Errorf("verify: %w", err)
	if !errors.As(wrapped, &tf) || tf.Tool != "z3" {
		t.Error("expected errors.As to recover the ToolFailureError")
	}
}

func TestValidationError_Message(t *testing.T) {
	withComponent := &ValidationError{Kind: TypeInconsistent, Component: "queue", Detail: "duplicate component name"}
	if got := withComponent.Error(); got != "validation failed (type_inconsistent) in component queue: duplicate component name" {
		t.Errorf("unexpected message: %s", got)
	}

	withoutComponent := &ValidationError{Kind: SyntaxInvalid, Detail: "empty source"}
	if got := withoutComponent.Error(); got != "validation failed (syntax_invalid): empty source" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestPipelineError_Message(t *testing.T) {
	err := &PipelineError{
		Kind:    AttemptsExhausted,
		Context: ErrorContext{Severity: SeverityError, Suggestion: "raise --max-attempts"},
	}
	if got := err.Error(); got != "pipeline attempts_exhausted: raise --max-attempts" {
		t.Errorf("unexpected message: %s", got)
	}
}
