// Package translator re-expresses formal specifications in another
// verification language while preserving exactly the set of requirement
// ids the source specification covers.
package translator

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/language"
	"github.com/axiomforge/axiomforge/internal/logger"
)

// Translator converts specifications between verification languages through
// the language adapter registry.
type Translator struct {
	log *slog.Logger
}

func New() *Translator {
	return &Translator{log: logger.ForComponent("translator")}
}

// Translate re-encodes spec into targetLang. Obligation sets are carried
// structurally, not summarized; the produced source text is not required to
// be byte-stable, only coverage- and obligation-preserving. Components the
// target language cannot faithfully express fail the whole translation with
// an UnsupportedConstructError.
func (t *Translator) Translate(spec *axiom.FormalSpecification, targetLang axiom.VerificationLanguage) (*axiom.FormalSpecification, error) {
	if spec.Language == targetLang {
		return spec, nil
	}

	target, err := language.Get(targetLang)
	if err != nil {
		return nil, err
	}

	for _, c := range spec.Components {
		if err := target.CanExpress(c); err != nil {
			return nil, &axiom.UnsupportedConstructError{
				Component: c.Name,
				Target:    targetLang,
				Detail:    err.Error(),
			}
		}
	}

	components := make([]axiom.Component, len(spec.Components))
	copy(components, spec.Components)

	translated := &axiom.FormalSpecification{
		ID:         uuid.New().String(),
		Language:   targetLang,
		Components: components,
	}
	translated.SetSourceText(target.Serialize(components))

	// Post-condition: requirement coverage must be preserved exactly.
	if err := sameCoverage(spec, translated); err != nil {
		return nil, err
	}

	t.log.Debug("specification translated",
		"from", spec.Language,
		"to", targetLang,
		"components", len(components))
	return translated, nil
}

// sameCoverage recomputes both coverage sets and compares them.
func sameCoverage(a, b *axiom.FormalSpecification) error {
	ca, cb := a.CoveredRequirements(), b.CoveredRequirements()
	if len(ca) != len(cb) {
		return fmt.Errorf("translation changed requirement coverage: %d ids became %d", len(ca), len(cb))
	}
	for id := range ca {
		if !cb[id] {
			return fmt.Errorf("translation lost coverage of requirement %s", id)
		}
	}
	return nil
}
