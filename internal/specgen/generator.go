// Package specgen implements the Specification Builder: it drives an
// external natural-language-to-specification collaborator, parses and
// normalizes its output into checked components, and validates
// specifications at increasing depths.
package specgen

import (
	"context"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// Options control one generation request.
type Options struct {
	Language axiom.VerificationLanguage
	// Hints carries accumulated error contexts from failed attempts back
	// into the collaborator as opaque guidance.
	Hints []axiom.ErrorContext
}

// Generator is the NL-to-spec collaborator contract. Its output is
// untrusted and always passes through parsing and Typecheck validation
// before use.
type Generator interface {
	Name() string
	GenerateRaw(ctx context.Context, requirements []axiom.Requirement, domain axiom.Domain, opts Options) (string, error)
	IsAvailable(ctx context.Context) error
}

// FormalChecker is the slice of the Verification Orchestrator the builder
// needs for ValidationFormal: a short, low-proof-level pre-check.
type FormalChecker interface {
	QuickCheck(ctx context.Context, spec *axiom.FormalSpecification) (*axiom.VerificationResult, error)
}

// ValidationDepth selects how hard Validate works. Depths are strictly
// ordered by cost and strength.
type ValidationDepth int

const (
	// ValidationBasic checks syntax well-formedness of the source text.
	ValidationBasic ValidationDepth = iota
	// ValidationTypecheck adds dependency-DAG validity and symbol checks.
	ValidationTypecheck
	// ValidationFormal adds a quick verification pass through a backend.
	ValidationFormal
)

// ValidationReport is the outcome of Validate.
type ValidationReport struct {
	IsValid bool            `json:"is_valid"`
	Depth   ValidationDepth `json:"depth"`
	// CoverageGaps lists requirement ids no component covers.
	CoverageGaps []string `json:"coverage_gaps,omitempty"`
	Issues       []string `json:"issues,omitempty"`
}
