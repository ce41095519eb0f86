package language

import (
	"regexp"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// Coq flavor: Variable/Hypothesis/Theorem sentences terminated by a period.
func newCoq() Adapter {
	return &grammar{
		lang:         axiom.Coq,
		commentOpen:  "(*",
		commentClose: "*)",
		declFmt:      "Variable %s.",
		preFmt:       "Hypothesis pre : %s.",
		postFmt:      "Theorem post : %s.",
		invFmt:       "Axiom inv : %s.",
		declRe:       regexp.MustCompile(`^Variable\s+(.+?)\.$`),
		preRe:        regexp.MustCompile(`^Hypothesis\s+\w+\s*:\s*(.+?)\.$`),
		postRe:       regexp.MustCompile(`^Theorem\s+\w+\s*:\s*(.+?)\.$`),
		invRe:        regexp.MustCompile(`^Axiom\s+\w+\s*:\s*(.+?)\.$`),
		temporal:     false,
	}
}

func init() {
	Register(newCoq())
}
