package backend

import (
	"fmt"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// tlcWorkers maps proof levels to TLC worker counts; exhaustive runs also
// disable the state-space depth bound.
var tlcWorkers = map[axiom.ProofLevel]int{
	axiom.Quick:      1,
	axiom.Standard:   2,
	axiom.Thorough:   4,
	axiom.Exhaustive: 8,
}

func newTLA() Adapter {
	return &execAdapter{
		name:    "tla",
		binary:  "tlc",
		specExt: ".tla",
		implExt: ".tla",
		buildArgs: func(specPath, implPath string, level axiom.ProofLevel) []string {
			args := []string{fmt.Sprintf("-workers=%d", tlcWorkers[level])}
			if level < axiom.Exhaustive {
				args = append(args, "-dfid", "100")
			}
			return append(args, specPath)
		},
		interpret: func(output string, exitErr error) (axiom.Status, []axiom.Counterexample) {
			switch {
			case strings.Contains(output, "No error has been found"):
				return axiom.StatusVerified, nil
			case strings.Contains(output, "is violated"):
				return axiom.StatusFalsified, parseCounterexamples(output)
			case strings.Contains(output, "Not all states explored"):
				return axiom.StatusInconclusive, nil
			default:
				return axiom.StatusToolError, nil
			}
		},
	}
}

func init() {
	Register(newTLA())
}
