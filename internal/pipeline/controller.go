// Package pipeline composes the specification builder, the synthesizer and
// the verification orchestrator into the iterate-until-verified refinement
// loop, bounded by an attempt budget and a wall-clock deadline.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/logger"
	"github.com/axiomforge/axiomforge/internal/specgen"
	"github.com/axiomforge/axiomforge/internal/synth"
	"github.com/axiomforge/axiomforge/internal/verifier"
)

// State is one node of the refinement state machine.
type State string

const (
	StateStart        State = "start"
	StateSpecifying   State = "specifying"
	StateValidating   State = "validating"
	StateImplementing State = "implementing"
	StateVerifying    State = "verifying"
	StateRefining     State = "refining"
	StateDone         State = "done"
	StateFailed       State = "failed"
	StateAbandoned    State = "abandoned"
)

// Config parameterizes one pipeline run.
type Config struct {
	VerificationLanguage axiom.VerificationLanguage
	TargetLanguage       axiom.TargetLanguage
	Domain               axiom.Domain
	Profile              axiom.OptimizationProfile
	Backend              string
	ProofLevel           axiom.ProofLevel
	VerifyTimeout        time.Duration
	MaxAttempts          int
	Deadline             time.Duration
}

// Result is the terminal outcome of a run. When State is StateDone the
// Artifact is frozen and Spec/Implementation mirror its contents; otherwise
// Spec/Implementation/LastResult retain the best attempt produced so far.
type Result struct {
	RunID          string
	State          State
	Attempts       int
	Artifact       *axiom.VerifiedArtifact
	Spec           *axiom.FormalSpecification
	Implementation *axiom.Implementation
	LastResult     *axiom.VerificationResult
	LastError      *axiom.ErrorContext
}

// Controller drives one logical pipeline run at a time. Stages execute
// strictly in state-machine order: no stage ever observes a later stage's
// output.
type Controller struct {
	builder  *specgen.Builder
	synth    *synth.Synthesizer
	verifier *verifier.Verifier
	policy   RefinePolicy
	cfg      Config
	log      *slog.Logger
}

func New(builder *specgen.Builder, syn *synth.Synthesizer, ver *verifier.Verifier, policy RefinePolicy, cfg Config) *Controller {
	if policy == nil {
		policy = TracePolicy{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 5 * time.Minute
	}
	return &Controller{
		builder:  builder,
		synth:    syn,
		verifier: ver,
		policy:   policy,
		cfg:      cfg,
		log:      logger.ForComponent("pipeline"),
	}
}

// statusRank orders failure severities for best-artifact retention; lower
// is better.
var statusRank = map[axiom.Status]int{
	axiom.StatusVerified:     0,
	axiom.StatusInconclusive: 1,
	axiom.StatusFalsified:    2,
	axiom.StatusTimeout:      3,
	axiom.StatusToolError:    4,
}

// Run executes the refinement loop until a terminal state. Errors surfaced
// alongside a Failed or Abandoned result are the collaborator ToolFailure
// and budget PipelineError classes; validation failures and falsified
// attempts are absorbed as refinement triggers while budget remains.
func (c *Controller) Run(ctx context.Context, reqs []axiom.Requirement) (*Result, error) {
	if c.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Deadline)
		defer cancel()
	}

	res := &Result{RunID: uuid.New().String(), State: StateStart}
	c.log.Info("pipeline run starting",
		"run_id", res.RunID,
		"requirements", len(reqs),
		"backend", c.cfg.Backend,
		"max_attempts", c.cfg.MaxAttempts)

	var (
		spec     *axiom.FormalSpecification
		impl     *axiom.Implementation
		report   *specgen.ValidationReport
		last     *axiom.VerificationResult
		feedback []axiom.ErrorContext
		target   = RefineSpecification // first pass generates everything
		bestRank = len(statusRank)
	)

	// Best (lowest-severity-failure) artifacts survive into the result even
	// when a later attempt does worse; LastResult always holds the newest.
	keepBest := func(r *axiom.VerificationResult) {
		res.LastResult = r
		if rank, ok := statusRank[r.Status]; ok && rank < bestRank {
			bestRank = rank
			res.Spec = spec
			res.Implementation = impl
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			res.State = StateAbandoned
			res.LastError = &axiom.ErrorContext{
				Severity:   axiom.SeverityError,
				Suggestion: "wall-clock deadline exceeded; raise --deadline or lower the proof level",
			}
			return res, &axiom.PipelineError{Kind: axiom.DeadlineExceeded, Context: *res.LastError}
		}

		switch res.State {
		case StateStart:
			res.State = StateSpecifying

		case StateSpecifying:
			generated, err := c.builder.Generate(ctx, reqs, c.cfg.Domain, specgen.Options{
				Language: c.cfg.VerificationLanguage,
				Hints:    feedback,
			})
			if err != nil {
				res.State = StateFailed
				res.LastError = &axiom.ErrorContext{
					Severity:   axiom.SeverityFatal,
					Suggestion: fmt.Sprintf("specification generation failed: %v", err),
				}
				return res, err
			}
			spec = generated
			res.State = StateValidating

		case StateValidating:
			var err error
			report, err = c.builder.Validate(ctx, spec, reqs, specgen.ValidationTypecheck)
			if err != nil {
				res.State = StateFailed
				res.LastError = &axiom.ErrorContext{
					Severity:   axiom.SeverityFatal,
					Suggestion: fmt.Sprintf("validation failed to run: %v", err),
				}
				return res, err
			}
			if !report.IsValid {
				res.Attempts++
				if res.Attempts >= c.cfg.MaxAttempts {
					return c.abandon(res, axiom.AttemptsExhausted,
						"generated specifications never passed validation: "+strings.Join(report.Issues, "; "))
				}
				feedback = append(feedback, axiom.ErrorContext{
					Severity:   axiom.SeverityWarning,
					Suggestion: strings.Join(report.Issues, "; "),
				})
				target = RefineSpecification
				res.State = StateRefining
				continue
			}
			res.State = StateImplementing

		case StateImplementing:
			synthesized, err := c.synth.Synthesize(ctx, spec, c.cfg.TargetLanguage, c.cfg.Profile, feedback)
			if err != nil {
				res.State = StateFailed
				res.LastError = &axiom.ErrorContext{
					Severity:   axiom.SeverityFatal,
					Suggestion: fmt.Sprintf("synthesis failed: %v", err),
				}
				return res, err
			}
			impl = synthesized
			res.State = StateVerifying

		case StateVerifying:
			res.Attempts++
			result, err := c.verifier.Verify(ctx, impl, spec, c.cfg.Backend, c.cfg.ProofLevel, c.cfg.VerifyTimeout)
			if err != nil {
				if ctx.Err() != nil {
					continue // deadline branch reports it
				}
				res.State = StateFailed
				res.LastError = &axiom.ErrorContext{
					Severity:   axiom.SeverityFatal,
					Suggestion: fmt.Sprintf("verification failed to run: %v", err),
				}
				return res, err
			}
			last = result
			keepBest(result)
			c.log.Info("verification attempt finished",
				"run_id", res.RunID,
				"attempt", res.Attempts,
				"status", result.Status)

			switch result.Status {
			case axiom.StatusVerified:
				res.State = StateDone
				res.Spec = spec
				res.Implementation = impl
				res.LastResult = result
				res.Artifact = &axiom.VerifiedArtifact{
					Spec:           *spec,
					Implementation: *impl,
					Result:         *result,
				}
				return res, nil

			case axiom.StatusFalsified, axiom.StatusInconclusive:
				if res.Attempts >= c.cfg.MaxAttempts {
					return c.abandon(res, axiom.AttemptsExhausted,
						fmt.Sprintf("attempt budget of %d exhausted; last status %s", c.cfg.MaxAttempts, result.Status))
				}
				res.State = StateRefining

			case axiom.StatusTimeout:
				return c.abandonWith(res, axiom.DeadlineExceeded, &axiom.ErrorContext{
					Severity:   axiom.SeverityError,
					Suggestion: "backend timed out; raise --timeout or lower the proof level",
				})

			case axiom.StatusToolError:
				// Retrying an unavailable tool is futile.
				return c.abandonWith(res, axiom.AttemptsExhausted, &axiom.ErrorContext{
					Severity:   axiom.SeverityFatal,
					Suggestion: fmt.Sprintf("backend %s failed to run; check the tool installation", c.cfg.Backend),
				})
			}

		case StateRefining:
			if last != nil {
				feedback = append(feedback, contextsFromResult(last)...)
				target = c.policy.Decide(last, report)
				last = nil
			}
			if target == RefineSpecification {
				c.log.Debug("refining specification", "run_id", res.RunID)
				res.State = StateSpecifying
			} else {
				// Spec carried forward untouched: its checksum is stable
				// across implementation-only refinements.
				c.log.Debug("refining implementation", "run_id", res.RunID)
				res.State = StateImplementing
			}
		}
	}
}

func (c *Controller) abandon(res *Result, kind axiom.PipelineKind, suggestion string) (*Result, error) {
	return c.abandonWith(res, kind, &axiom.ErrorContext{
		Severity:   axiom.SeverityError,
		Suggestion: suggestion,
	})
}

func (c *Controller) abandonWith(res *Result, kind axiom.PipelineKind, ec *axiom.ErrorContext) (*Result, error) {
	res.State = StateAbandoned
	res.LastError = ec
	c.log.Warn("pipeline run abandoned", "run_id", res.RunID, "attempts", res.Attempts, "reason", ec.Suggestion)
	return res, &axiom.PipelineError{Kind: kind, Context: *ec}
}

// contextsFromResult converts counterexamples into refinement guidance.
func contextsFromResult(result *axiom.VerificationResult) []axiom.ErrorContext {
	var ecs []axiom.ErrorContext
	for _, ce := range result.Counterexamples {
		suggestion := "verification produced a counterexample"
		if ce.Obligation != "" {
			suggestion = fmt.Sprintf("obligation violated: %s", ce.Obligation)
		}
		if len(ce.Variables) > 0 {
			suggestion += fmt.Sprintf(" (witness %v)", ce.Variables)
		}
		ecs = append(ecs, axiom.ErrorContext{
			RequirementID: ce.RequirementID,
			Severity:      axiom.SeverityError,
			Suggestion:    suggestion,
		})
	}
	if len(ecs) == 0 {
		ecs = append(ecs, axiom.ErrorContext{
			Severity:   axiom.SeverityError,
			Suggestion: fmt.Sprintf("verification status %s with no counterexample detail", result.Status),
		})
	}
	return ecs
}
