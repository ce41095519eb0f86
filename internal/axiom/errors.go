package axiom

import (
	"errors"
	"fmt"
)

// Severity grades an ErrorContext.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ErrorContext carries diagnosis attached to a failed stage: which
// requirement it traces to and what to try next.
type ErrorContext struct {
	RequirementID  string   `json:"requirement_id,omitempty"`
	SourceLocation string   `json:"source_location,omitempty"`
	Severity       Severity `json:"severity"`
	Suggestion     string   `json:"suggestion,omitempty"`
}

// ErrUnderspecified means no requirement maps to any generated component.
var ErrUnderspecified = errors.New("no requirement maps to any specification component")

// ToolFailureError means an external collaborator or backend itself failed
// to run, as opposed to producing a negative verdict.
type ToolFailureError struct {
	Tool string
	Err  error
}

func (e *ToolFailureError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolFailureError) Unwrap() error { return e.Err }

// ValidationKind discriminates validation failures.
type ValidationKind string

const (
	SyntaxInvalid        ValidationKind = "syntax_invalid"
	TypeInconsistent     ValidationKind = "type_inconsistent"
	ProofObligationUnmet ValidationKind = "proof_obligation_unmet"
)

// ValidationError reports a specification that failed a validation depth.
type ValidationError struct {
	Kind      ValidationKind
	Component string
	Detail    string
}

func (e *ValidationError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("validation failed (%s) in component %s: %s", e.Kind, e.Component, e.Detail)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Detail)
}

// UnsupportedConstructError reports a component the target verification
// language cannot faithfully re-express.
type UnsupportedConstructError struct {
	Component string
	Target    VerificationLanguage
	Detail    string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("component %s cannot be expressed in %s: %s", e.Component, e.Target, e.Detail)
}

// PipelineKind discriminates budget exhaustion failures.
type PipelineKind string

const (
	AttemptsExhausted PipelineKind = "attempts_exhausted"
	DeadlineExceeded  PipelineKind = "deadline_exceeded"
)

// PipelineError is surfaced once the refinement budget runs out.
type PipelineError struct {
	Kind    PipelineKind
	Context ErrorContext
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %s", e.Kind, e.Context.Suggestion)
}
