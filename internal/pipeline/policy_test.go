package pipeline

import (
	"testing"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/specgen"
)

func TestTracePolicy_DefaultsToImplementation(t *testing.T) {
	result := &axiom.VerificationResult{
		Status:          axiom.StatusFalsified,
		Counterexamples: []axiom.Counterexample{{Obligation: "count >= 0"}},
	}
	if got := (TracePolicy{}).Decide(result, nil); got != RefineImplementation {
		t.Error("an ordinary counterexample should refine the implementation")
	}
}

func TestTracePolicy_CoverageGapRefinesSpec(t *testing.T) {
	result := &axiom.VerificationResult{
		Status:          axiom.StatusFalsified,
		Counterexamples: []axiom.Counterexample{{RequirementID: "REQ-007", Obligation: "whatever"}},
	}
	report := &specgen.ValidationReport{CoverageGaps: []string{"REQ-007"}}

	if got := (TracePolicy{}).Decide(result, report); got != RefineSpecification {
		t.Error("a counterexample on an uncovered requirement should refine the specification")
	}
}

func TestTracePolicy_PreconditionRefinesSpec(t *testing.T) {
	result := &axiom.VerificationResult{
		Status:          axiom.StatusFalsified,
		Counterexamples: []axiom.Counterexample{{Obligation: "Precondition x > 0 cannot be established"}},
	}
	if got := (TracePolicy{}).Decide(result, nil); got != RefineSpecification {
		t.Error("a precondition failure should refine the specification")
	}
}

func TestTracePolicy_NilResult(t *testing.T) {
	if got := (TracePolicy{}).Decide(nil, nil); got != RefineImplementation {
		t.Error("nil evidence should fall back to implementation refinement")
	}
}

func TestImplementationOnlyPolicy(t *testing.T) {
	result := &axiom.VerificationResult{
		Counterexamples: []axiom.Counterexample{{Obligation: "precondition violated"}},
	}
	if got := (ImplementationOnlyPolicy{}).Decide(result, nil); got != RefineImplementation {
		t.Error("the implementation-only policy must never touch the specification")
	}
}
