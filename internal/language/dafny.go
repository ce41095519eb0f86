package language

import (
	"regexp"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// Dafny flavor: method-style requires/ensures/invariant clauses.
func newDafny() Adapter {
	return &grammar{
		lang:        axiom.Dafny,
		commentOpen: "//",
		declFmt:     "var %s",
		preFmt:      "requires %s",
		postFmt:     "ensures %s",
		invFmt:      "invariant %s",
		declRe:      regexp.MustCompile(`^var\s+(.+)$`),
		preRe:       regexp.MustCompile(`^requires\s+(.+)$`),
		postRe:      regexp.MustCompile(`^ensures\s+(.+)$`),
		invRe:       regexp.MustCompile(`^invariant\s+(.+)$`),
		temporal:    false,
	}
}

func init() {
	Register(newDafny())
}
