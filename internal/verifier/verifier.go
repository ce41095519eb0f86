// Package verifier implements the Verification Orchestrator: it resolves
// one backend adapter, owns the invocation timeout and cancellation, and
// consults the artifact cache before dispatching.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/backend"
	"github.com/axiomforge/axiomforge/internal/cache"
	"github.com/axiomforge/axiomforge/internal/logger"
)

// Config tunes the orchestrator.
type Config struct {
	// QuickBackend runs ValidationFormal pre-checks. Empty selects the
	// domain recommendation for DomainGeneric.
	QuickBackend string
	// QuickTimeout bounds a pre-check invocation.
	QuickTimeout time.Duration
}

// Verifier is safe for concurrent use; multiple pipeline runs may share one
// instance and one cache.
type Verifier struct {
	cache *cache.Cache
	cfg   Config
	log   *slog.Logger
}

func New(c *cache.Cache, cfg Config) *Verifier {
	if cfg.QuickBackend == "" {
		cfg.QuickBackend = backend.Recommend(axiom.DomainGeneric)
	}
	if cfg.QuickTimeout <= 0 {
		cfg.QuickTimeout = 30 * time.Second
	}
	return &Verifier{cache: c, cfg: cfg, log: logger.ForComponent("verifier")}
}

// cacheable keeps deterministic verdicts only. Timeout and Inconclusive
// depend on machine load or randomness, ToolError on the environment;
// pinning any of them under a deterministic fingerprint would be wrong.
func cacheable(r *axiom.VerificationResult) bool {
	return r.Status == axiom.StatusVerified || r.Status == axiom.StatusFalsified
}

// Verify runs backendName against (impl, spec) at the given proof level.
// The cache is consulted by fingerprint first; on a hit the backend is not
// invoked. The invocation never exceeds timeout: on expiry the underlying
// tool is cancelled and a Timeout result is returned, preserving partial
// artifact refs. No lock is held across the backend call.
func (v *Verifier) Verify(ctx context.Context, impl *axiom.Implementation, spec *axiom.FormalSpecification, backendName string, level axiom.ProofLevel, timeout time.Duration) (*axiom.VerificationResult, error) {
	adapter, err := backend.Get(backendName)
	if err != nil {
		return nil, err
	}

	fp := axiom.ComputeFingerprint(spec.Checksum, impl.Checksum, backendName, level)

	result, err := v.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (*axiom.VerificationResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		v.log.Debug("dispatching backend",
			"backend", backendName,
			"proof_level", level.String(),
			"fingerprint", string(fp)[:12])

		result, err := adapter.Run(runCtx, backend.RunRequest{
			SpecSource: spec.SourceText,
			ImplSource: impl.SourceText,
			ProofLevel: level,
		})
		if err != nil {
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				return &axiom.VerificationResult{
					Status:     axiom.StatusTimeout,
					Backend:    backendName,
					ProofLevel: level,
					Duration:   timeout,
				}, nil
			}
			return nil, &axiom.ToolFailureError{Tool: backendName, Err: err}
		}
		return result, nil
	}, cacheable)
	if err != nil {
		return nil, err
	}

	v.log.Info("verification finished",
		"backend", backendName,
		"status", result.Status,
		"duration", result.Duration)
	return result, nil
}

// QuickCheck is the short, low-proof-level pass ValidationFormal delegates
// here. It verifies the specification against an empty implementation at
// the Quick level; because proof level feeds the fingerprint, it never
// collides with a real run in the cache.
func (v *Verifier) QuickCheck(ctx context.Context, spec *axiom.FormalSpecification) (*axiom.VerificationResult, error) {
	empty := axiom.NewImplementation("", "", axiom.OptNone)
	return v.Verify(ctx, &empty, spec, v.cfg.QuickBackend, axiom.Quick, v.cfg.QuickTimeout)
}

// CrossCheck runs several backends concurrently against the same pair and
// reconciles their verdicts: a counterexample from any backend beats every
// other status, a proof beats the indeterminate ones, and an indeterminate
// mix collapses to Inconclusive. All individual results are returned in
// backendNames order.
func (v *Verifier) CrossCheck(ctx context.Context, impl *axiom.Implementation, spec *axiom.FormalSpecification, backendNames []string, level axiom.ProofLevel, timeout time.Duration) (*axiom.VerificationResult, []*axiom.VerificationResult, error) {
	if len(backendNames) == 0 {
		return nil, nil, fmt.Errorf("no backends given")
	}

	results := make([]*axiom.VerificationResult, len(backendNames))
	errs := make([]error, len(backendNames))

	var wg sync.WaitGroup
	for i, name := range backendNames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = v.Verify(ctx, impl, spec, name, level, timeout)
		}(i, name)
	}
	wg.Wait()

	var chosen *axiom.VerificationResult
	for _, r := range results {
		if r == nil {
			continue
		}
		switch {
		case r.Status == axiom.StatusFalsified:
			return r, results, nil
		case r.Status == axiom.StatusVerified && chosen == nil:
			chosen = r
		}
	}
	if chosen != nil {
		return chosen, results, nil
	}
	for _, err := range errs {
		if err != nil {
			return nil, results, err
		}
	}
	return &axiom.VerificationResult{
		Status:     axiom.StatusInconclusive,
		Backend:    "crosscheck",
		ProofLevel: level,
	}, results, nil
}
