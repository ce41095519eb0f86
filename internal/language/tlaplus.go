package language

import (
	"regexp"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// TLA+ flavor. The only registered language with temporal operators, so
// temporal invariants survive translation into it but not out of it.
func newTLAPlus() Adapter {
	return &grammar{
		lang:        axiom.TLAPlus,
		commentOpen: `\*`,
		declFmt:     "VARIABLE %s",
		preFmt:      "ASSUME %s",
		postFmt:     "THEOREM %s",
		invFmt:      "INVARIANT %s",
		declRe:      regexp.MustCompile(`^VARIABLE\s+(.+)$`),
		preRe:       regexp.MustCompile(`^ASSUME\s+(.+)$`),
		postRe:      regexp.MustCompile(`^THEOREM\s+(.+)$`),
		invRe:       regexp.MustCompile(`^INVARIANT\s+(.+)$`),
		temporal:    true,
	}
}

func init() {
	Register(newTLAPlus())
}
