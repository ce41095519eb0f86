package language

import (
	"regexp"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// SMT-LIB flavor for Z3: s-expression asserts annotated with the
// obligation kind.
func newZ3SMT() Adapter {
	return &grammar{
		lang:        axiom.Z3SMT,
		commentOpen: ";",
		declFmt:     "(declare-const %s)",
		preFmt:      "(assert (! %s :kind pre))",
		postFmt:     "(assert (! %s :kind post))",
		invFmt:      "(assert (! %s :kind inv))",
		declRe:      regexp.MustCompile(`^\(declare-const\s+(.+)\)$`),
		preRe:       regexp.MustCompile(`^\(assert \(! (.+) :kind pre\)\)$`),
		postRe:      regexp.MustCompile(`^\(assert \(! (.+) :kind post\)\)$`),
		invRe:       regexp.MustCompile(`^\(assert \(! (.+) :kind inv\)\)$`),
		temporal:    false,
	}
}

func init() {
	Register(newZ3SMT())
}
