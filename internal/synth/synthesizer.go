// Package synth implements the Implementation Synthesizer: it hands a
// formal specification to an external code-synthesis collaborator and wraps
// the produced source as a checksum-tracked Implementation.
package synth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/logger"
)

// Collaborator is the external synthesis backend contract.
type Collaborator interface {
	Name() string
	SynthesizeRaw(ctx context.Context, specSource string, targetLang axiom.TargetLanguage, profile axiom.OptimizationProfile, hints []string) (string, error)
	IsAvailable(ctx context.Context) error
}

// Synthesizer drives one collaborator.
type Synthesizer struct {
	collab Collaborator
	log    *slog.Logger
}

func New(collab Collaborator) *Synthesizer {
	return &Synthesizer{collab: collab, log: logger.ForComponent("synth")}
}

// Synthesize produces an Implementation for spec in targetLang. The
// optimization profile and the accumulated error contexts are passed to the
// collaborator as hints only; obligations encoded in spec are never relaxed.
func (s *Synthesizer) Synthesize(ctx context.Context, spec *axiom.FormalSpecification, targetLang axiom.TargetLanguage, profile axiom.OptimizationProfile, feedback []axiom.ErrorContext) (*axiom.Implementation, error) {
	hints := make([]string, 0, len(feedback))
	for _, fc := range feedback {
		if fc.Suggestion != "" {
			hints = append(hints, fc.Suggestion)
		}
	}

	source, err := s.collab.SynthesizeRaw(ctx, spec.SourceText, targetLang, profile, hints)
	if err != nil {
		return nil, &axiom.ToolFailureError{Tool: s.collab.Name(), Err: err}
	}
	if source == "" {
		return nil, &axiom.ToolFailureError{
			Tool: s.collab.Name(),
			Err:  fmt.Errorf("empty synthesis output for spec %s", spec.ID),
		}
	}

	impl := axiom.NewImplementation(targetLang, source, profile)
	s.log.Debug("implementation synthesized",
		"spec_id", spec.ID,
		"language", targetLang,
		"profile", profile,
		"checksum", impl.Checksum[:12])
	return &impl, nil
}
