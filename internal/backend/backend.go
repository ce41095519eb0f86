// Package backend integrates external verification engines. Each engine is
// one Adapter registered in a lookup table keyed by its identifier; the
// Verification Orchestrator selects and invokes exactly one per attempt.
package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// RunRequest carries the sources and effort tier for one backend invocation.
type RunRequest struct {
	SpecSource string
	ImplSource string
	ProofLevel axiom.ProofLevel
}

// Adapter is the contract one verification backend implements.
//
// Tool unavailability (missing binary, crash before producing a verdict)
// must surface as a result with StatusToolError, never as StatusFalsified:
// the latter is reserved for a genuine counterexample. Cancellation of ctx
// must abort the underlying tool invocation.
type Adapter interface {
	Name() string
	IsAvailable(ctx context.Context) error
	Run(ctx context.Context, req RunRequest) (*axiom.VerificationResult, error)
}

var registry = map[string]Adapter{}

// Register adds an adapter under its name; called from each adapter file's
// init. Later registrations win, which lets tests swap in stubs.
func Register(a Adapter) {
	registry[a.Name()] = a
}

// Get returns the adapter registered under name.
func Get(name string) (Adapter, error) {
	a, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no verification backend registered as %q (have %v)", name, Names())
	}
	return a, nil
}

// Names lists registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Recommend returns the backend best suited to a domain, used as the
// default when the caller configures none.
func Recommend(domain axiom.Domain) string {
	switch domain {
	case axiom.DomainCryptography:
		return "fstar"
	case axiom.DomainDistributedSystems:
		return "tla"
	case axiom.DomainWebSecurity, axiom.DomainSystemsSoftware:
		return "dafny"
	default:
		return "z3"
	}
}
