package backend

import (
	"fmt"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// fstarRlimits maps proof levels to the --z3rlimit fuel handed to F*'s
// embedded solver.
var fstarRlimits = map[axiom.ProofLevel]int{
	axiom.Quick:      5,
	axiom.Standard:   25,
	axiom.Thorough:   100,
	axiom.Exhaustive: 500,
}

func newFStar() Adapter {
	return &execAdapter{
		name:    "fstar",
		binary:  "fstar.exe",
		specExt: ".fsti",
		implExt: ".fst",
		buildArgs: func(specPath, implPath string, level axiom.ProofLevel) []string {
			return []string{
				fmt.Sprintf("--z3rlimit=%d", fstarRlimits[level]),
				specPath, implPath,
			}
		},
		interpret: func(output string, exitErr error) (axiom.Status, []axiom.Counterexample) {
			switch {
			case exitErr == nil &&
				(strings.Contains(output, "All verification conditions discharged") || output == ""):
				return axiom.StatusVerified, nil
			case strings.Contains(output, "could not prove") ||
				strings.Contains(output, "Assertion failed"):
				return axiom.StatusFalsified, parseCounterexamples(output)
			case strings.Contains(output, "(Warning"):
				return axiom.StatusInconclusive, nil
			default:
				return axiom.StatusToolError, nil
			}
		},
	}
}

func init() {
	Register(newFStar())
}
