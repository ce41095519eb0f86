package pipeline

import (
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/specgen"
)

// RefineTarget names what the controller regenerates after a failed
// verification attempt.
type RefineTarget int

const (
	// RefineImplementation reuses the spec and regenerates only the code.
	RefineImplementation RefineTarget = iota
	// RefineSpecification regenerates the spec (and then everything after it).
	RefineSpecification
)

// RefinePolicy chooses the refinement target from the evidence of the last
// attempt. Heuristics are deliberately pluggable; only the two outcome
// classes are contractual.
type RefinePolicy interface {
	Decide(result *axiom.VerificationResult, report *specgen.ValidationReport) RefineTarget
}

// TracePolicy is the default policy: it regenerates the specification when
// a counterexample traces to an uncovered requirement or to an unmet
// precondition at the specification level, and otherwise regenerates only
// the implementation.
type TracePolicy struct{}

func (TracePolicy) Decide(result *axiom.VerificationResult, report *specgen.ValidationReport) RefineTarget {
	if result == nil {
		return RefineImplementation
	}

	gaps := map[string]bool{}
	if report != nil {
		for _, id := range report.CoverageGaps {
			gaps[id] = true
		}
	}

	for _, ce := range result.Counterexamples {
		if ce.RequirementID != "" && gaps[ce.RequirementID] {
			return RefineSpecification
		}
		if strings.Contains(strings.ToLower(ce.Obligation), "precondition") {
			return RefineSpecification
		}
	}
	return RefineImplementation
}

// ImplementationOnlyPolicy always regenerates the implementation, keeping
// the specification (and its checksum) fixed for the whole run.
type ImplementationOnlyPolicy struct{}

func (ImplementationOnlyPolicy) Decide(*axiom.VerificationResult, *specgen.ValidationReport) RefineTarget {
	return RefineImplementation
}
