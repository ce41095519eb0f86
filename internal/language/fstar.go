package language

import (
	"regexp"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// F* flavor: val declarations with requires/ensures obligation lines.
func newFStar() Adapter {
	return &grammar{
		lang:         axiom.FStar,
		commentOpen:  "(*",
		commentClose: "*)",
		declFmt:      "val %s",
		preFmt:       "requires (%s)",
		postFmt:      "ensures (%s)",
		invFmt:       "invariant (%s)",
		declRe:       regexp.MustCompile(`^val\s+(.+)$`),
		preRe:        regexp.MustCompile(`^requires\s+\((.+)\)$`),
		postRe:       regexp.MustCompile(`^ensures\s+\((.+)\)$`),
		invRe:        regexp.MustCompile(`^invariant\s+\((.+)\)$`),
		temporal:     false,
	}
}

func init() {
	Register(newFStar())
}
