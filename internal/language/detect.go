package language

import (
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// markers are distinctive surface tokens per language, checked in order of
// specificity. SMT s-expressions and TLA+ comments are unambiguous; the
// (*-comment languages are told apart by their keywords.
var markers = []struct {
	lang   axiom.VerificationLanguage
	tokens []string
}{
	{axiom.Z3SMT, []string{"(declare-const", "(assert"}},
	{axiom.TLAPlus, []string{`\*`, "VARIABLE ", "ASSUME "}},
	{axiom.Coq, []string{"Hypothesis ", "Variable ", "Axiom "}},
	{axiom.FStar, []string{"val ", "requires (", "ensures ("}},
	{axiom.Dafny, []string{"// component:", "var ", "requires "}},
}

// Detect sniffs the verification language of source by its surface syntax.
// Returns false when no marker matches.
func Detect(source string) (axiom.VerificationLanguage, bool) {
	for _, m := range markers {
		for _, tok := range m.tokens {
			if strings.Contains(source, tok) {
				return m.lang, true
			}
		}
	}
	return "", false
}
