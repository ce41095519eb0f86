package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/backend"
	"github.com/axiomforge/axiomforge/internal/cache"
	"github.com/axiomforge/axiomforge/internal/specgen"
	"github.com/axiomforge/axiomforge/internal/synth"
	"github.com/axiomforge/axiomforge/internal/verifier"
)

var pipelineReqs = []axiom.Requirement{
	{ID: "REQ-001", Text: "the counter never goes negative"},
	{ID: "REQ-002", Text: "increment raises the counter by one"},
}

const pipelineSpecSource = `// component: counter  covers: REQ-001,REQ-002
var count : int
requires count >= 0
ensures result = count + 1
`

// scriptedGenerator emits a fixed valid specification on every call.
type scriptedGenerator struct {
	callCount atomic.Int32
}

func (g *scriptedGenerator) Name() string { return "scripted-gen" }

func (g *scriptedGenerator) GenerateRaw(ctx context.Context, reqs []axiom.Requirement, domain axiom.Domain, opts specgen.Options) (string, error) {
	g.callCount.Add(1)
	return pipelineSpecSource, nil
}

func (g *scriptedGenerator) IsAvailable(ctx context.Context) error { return nil }

// scriptedSynth emits distinct source per call so each attempt gets a fresh
// implementation checksum and therefore a fresh verification fingerprint.
// It records the specification source it was handed on every call.
type scriptedSynth struct {
	callCount   atomic.Int32
	specSources []string
}

func (s *scriptedSynth) Name() string { return "scripted-synth" }

func (s *scriptedSynth) SynthesizeRaw(ctx context.Context, specSource string, targetLang axiom.TargetLanguage, profile axiom.OptimizationProfile, hints []string) (string, error) {
	n := s.callCount.Add(1)
	s.specSources = append(s.specSources, specSource)
	return fmt.Sprintf("fn attempt_%d() {}", n), nil
}

func (s *scriptedSynth) IsAvailable(ctx context.Context) error { return nil }

// scriptedBackend replays a list of statuses, one per invocation, repeating
// the last one when exhausted.
type scriptedBackend struct {
	name      string
	statuses  []axiom.Status
	callCount atomic.Int32
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) IsAvailable(context.Context) error { return nil }

func (b *scriptedBackend) Run(ctx context.Context, req backend.RunRequest) (*axiom.VerificationResult, error) {
	n := int(b.callCount.Add(1)) - 1
	if n >= len(b.statuses) {
		n = len(b.statuses) - 1
	}
	status := b.statuses[n]
	result := &axiom.VerificationResult{Status: status, Backend: b.name, ProofLevel: req.ProofLevel}
	if status == axiom.StatusFalsified {
		result.Counterexamples = []axiom.Counterexample{{
			Variables:  map[string]string{"count": "-1"},
			Obligation: "count >= 0",
		}}
	}
	return result, nil
}

func newController(t *testing.T, backendName string, statuses []axiom.Status, cfg Config) (*Controller, *scriptedGenerator, *scriptedSynth, *scriptedBackend) {
	t.Helper()

	gen := &scriptedGenerator{}
	syn := &scriptedSynth{}
	bk := &scriptedBackend{name: backendName, statuses: statuses}
	backend.Register(bk)

	ver := verifier.New(cache.New(64, time.Minute), verifier.Config{QuickBackend: backendName, QuickTimeout: time.Second})

	cfg.VerificationLanguage = axiom.Dafny
	cfg.TargetLanguage = axiom.LangRust
	cfg.Domain = axiom.DomainGeneric
	cfg.Backend = backendName

	ctrl := New(specgen.New(gen, nil), synth.New(syn), ver, nil, cfg)
	return ctrl, gen, syn, bk
}

func TestRun_VerifiedFirstAttempt(t *testing.T) {
	ctrl, gen, syn, bk := newController(t, "pipe-ok", []axiom.Status{axiom.StatusVerified}, Config{MaxAttempts: 3})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("expected done, got %s", res.State)
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", res.Attempts)
	}
	if res.Artifact == nil || res.Artifact.Result.Status != axiom.StatusVerified {
		t.Error("expected a frozen verified artifact")
	}
	if res.Spec == nil || res.Implementation == nil {
		t.Error("expected spec and implementation on the result")
	}
	if gen.callCount.Load() != 1 || syn.callCount.Load() != 1 || bk.callCount.Load() != 1 {
		t.Errorf("unexpected stage invocations: gen=%d synth=%d backend=%d",
			gen.callCount.Load(), syn.callCount.Load(), bk.callCount.Load())
	}
}

func TestRun_RefinesUntilVerified(t *testing.T) {
	ctrl, _, syn, _ := newController(t, "pipe-retry",
		[]axiom.Status{axiom.StatusFalsified, axiom.StatusFalsified, axiom.StatusVerified},
		Config{MaxAttempts: 3})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("expected done, got %s (last error %+v)", res.State, res.LastError)
	}
	if res.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", res.Attempts)
	}
	// The counterexample traces to the implementation, so each refinement
	// regenerated only the code.
	if syn.callCount.Load() != 3 {
		t.Errorf("expected 3 syntheses, got %d", syn.callCount.Load())
	}
}

func TestRun_ImplementationOnlyKeepsSpecChecksum(t *testing.T) {
	gen := &scriptedGenerator{}
	syn := &scriptedSynth{}
	bk := &scriptedBackend{name: "pipe-implonly", statuses: []axiom.Status{
		axiom.StatusFalsified, axiom.StatusFalsified, axiom.StatusVerified,
	}}
	backend.Register(bk)

	ver := verifier.New(cache.New(64, time.Minute), verifier.Config{QuickBackend: "pipe-implonly"})
	ctrl := New(specgen.New(gen, nil), synth.New(syn), ver, ImplementationOnlyPolicy{}, Config{
		VerificationLanguage: axiom.Dafny,
		TargetLanguage:       axiom.LangRust,
		Domain:               axiom.DomainGeneric,
		Backend:              "pipe-implonly",
		MaxAttempts:          3,
	})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone || res.Attempts != 3 {
		t.Fatalf("expected done in 3 attempts, got %s/%d", res.State, res.Attempts)
	}
	if gen.callCount.Load() != 1 {
		t.Errorf("the specification must be generated exactly once, got %d", gen.callCount.Load())
	}

	// Every attempt must synthesize against a specification with the same
	// checksum as the first one.
	if len(syn.specSources) != 3 {
		t.Fatalf("expected 3 syntheses, got %d", len(syn.specSources))
	}
	want := axiom.Checksum(syn.specSources[0])
	for i, src := range syn.specSources {
		if got := axiom.Checksum(src); got != want {
			t.Errorf("attempt %d saw spec checksum %s, want %s", i+1, got, want)
		}
	}
	if res.Spec.Checksum != want {
		t.Errorf("final spec checksum %s differs from attempt 1's %s", res.Spec.Checksum, want)
	}
}

func TestRun_AttemptBudgetExhausted(t *testing.T) {
	ctrl, _, _, _ := newController(t, "pipe-stuck", []axiom.Status{axiom.StatusFalsified}, Config{MaxAttempts: 3})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if res.State != StateAbandoned {
		t.Fatalf("expected abandoned, got %s", res.State)
	}
	if res.Attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", res.Attempts)
	}

	var pe *axiom.PipelineError
	if !errors.As(err, &pe) || pe.Kind != axiom.AttemptsExhausted {
		t.Fatalf("expected AttemptsExhausted, got %v", err)
	}
	// Best attempt so far stays on the result for inspection.
	if res.Spec == nil || res.Implementation == nil || res.LastResult == nil {
		t.Error("abandoned result should retain the best attempt")
	}
	if res.Artifact != nil {
		t.Error("no artifact may exist without a verified result")
	}
}

func TestRun_BackendTimeoutAbandons(t *testing.T) {
	ctrl, _, _, _ := newController(t, "pipe-timeout", []axiom.Status{axiom.StatusTimeout}, Config{MaxAttempts: 3})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if res.State != StateAbandoned {
		t.Fatalf("expected abandoned, got %s", res.State)
	}
	if res.LastResult == nil || res.LastResult.Status != axiom.StatusTimeout {
		t.Error("expected the timeout result to be retained")
	}
	if res.LastError == nil || res.LastError.Severity != axiom.SeverityError {
		t.Errorf("expected an error-severity context, got %+v", res.LastError)
	}

	var pe *axiom.PipelineError
	if !errors.As(err, &pe) || pe.Kind != axiom.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRun_ToolErrorIsFatal(t *testing.T) {
	ctrl, _, _, bk := newController(t, "pipe-broken", []axiom.Status{axiom.StatusToolError}, Config{MaxAttempts: 3})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if res.State != StateAbandoned {
		t.Fatalf("expected abandoned, got %s", res.State)
	}
	if res.LastError == nil || res.LastError.Severity != axiom.SeverityFatal {
		t.Errorf("expected a fatal context, got %+v", res.LastError)
	}
	if err == nil {
		t.Fatal("expected an error")
	}
	// No retry against a broken tool.
	if bk.callCount.Load() != 1 {
		t.Errorf("expected one backend invocation, got %d", bk.callCount.Load())
	}
}

func TestRun_WallClockDeadline(t *testing.T) {
	gen := &scriptedGenerator{}
	syn := &scriptedSynth{}
	bk := &scriptedBackend{name: "pipe-deadline", statuses: []axiom.Status{axiom.StatusFalsified}}
	backend.Register(bk)

	ver := verifier.New(cache.New(64, time.Minute), verifier.Config{QuickBackend: "pipe-deadline"})
	ctrl := New(specgen.New(gen, nil), synth.New(syn), ver, nil, Config{
		VerificationLanguage: axiom.Dafny,
		TargetLanguage:       axiom.LangRust,
		Domain:               axiom.DomainGeneric,
		Backend:              "pipe-deadline",
		MaxAttempts:          1000,
		Deadline:             50 * time.Millisecond,
	})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if res.State != StateAbandoned {
		t.Fatalf("expected abandoned, got %s", res.State)
	}

	var pe *axiom.PipelineError
	if !errors.As(err, &pe) || pe.Kind != axiom.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRun_SpecRegeneratedOnPreconditionCounterexample(t *testing.T) {
	gen := &scriptedGenerator{}
	syn := &scriptedSynth{}

	// The counterexample names a precondition obligation, which TracePolicy
	// routes to specification refinement.
	bk := &preconditionBackend{}
	backend.Register(bk)

	ver := verifier.New(cache.New(64, time.Minute), verifier.Config{QuickBackend: "pipe-pre"})
	ctrl := New(specgen.New(gen, nil), synth.New(syn), ver, nil, Config{
		VerificationLanguage: axiom.Dafny,
		TargetLanguage:       axiom.LangRust,
		Domain:               axiom.DomainGeneric,
		Backend:              "pipe-pre",
		MaxAttempts:          2,
	})

	res, err := ctrl.Run(context.Background(), pipelineReqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("expected done, got %s", res.State)
	}
	if gen.callCount.Load() != 2 {
		t.Errorf("expected the specification to be regenerated, got %d generations", gen.callCount.Load())
	}
}

// preconditionBackend falsifies once with a precondition obligation, then
// verifies.
type preconditionBackend struct {
	callCount atomic.Int32
}

func (b *preconditionBackend) Name() string { return "pipe-pre" }

func (b *preconditionBackend) IsAvailable(context.Context) error { return nil }

func (b *preconditionBackend) Run(ctx context.Context, req backend.RunRequest) (*axiom.VerificationResult, error) {
	if b.callCount.Add(1) == 1 {
		return &axiom.VerificationResult{
			Status:     axiom.StatusFalsified,
			Backend:    "pipe-pre",
			ProofLevel: req.ProofLevel,
			Counterexamples: []axiom.Counterexample{{
				Obligation: "precondition count >= 0 cannot be established",
			}},
		}, nil
	}
	return &axiom.VerificationResult{Status: axiom.StatusVerified, Backend: "pipe-pre", ProofLevel: req.ProofLevel}, nil
}
