package backend

import (
	"fmt"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// dafnyTimeLimits maps proof levels to per-obligation solver seconds.
var dafnyTimeLimits = map[axiom.ProofLevel]int{
	axiom.Quick:      5,
	axiom.Standard:   30,
	axiom.Thorough:   120,
	axiom.Exhaustive: 600,
}

func newDafny() Adapter {
	return &execAdapter{
		name:    "dafny",
		binary:  "dafny",
		specExt: ".dfy",
		implExt: ".dfy",
		buildArgs: func(specPath, implPath string, level axiom.ProofLevel) []string {
			return []string{
				"verify",
				fmt.Sprintf("--verification-time-limit=%d", dafnyTimeLimits[level]),
				specPath, implPath,
			}
		},
		interpret: func(output string, exitErr error) (axiom.Status, []axiom.Counterexample) {
			switch {
			case strings.Contains(output, "0 errors"):
				return axiom.StatusVerified, nil
			case strings.Contains(output, "might not hold") ||
				strings.Contains(output, "assertion violation"):
				return axiom.StatusFalsified, parseCounterexamples(output)
			case strings.Contains(output, "timed out"):
				return axiom.StatusInconclusive, nil
			default:
				return axiom.StatusToolError, nil
			}
		},
	}
}

func init() {
	Register(newDafny())
}
