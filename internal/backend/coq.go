package backend

import (
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

func newCoq() Adapter {
	return &execAdapter{
		name:    "coq",
		binary:  "coqc",
		specExt: ".v",
		implExt: ".v",
		buildArgs: func(specPath, implPath string, level axiom.ProofLevel) []string {
			args := []string{"-q"}
			// Thorough tiers enable full kernel term re-checking.
			if level >= axiom.Thorough {
				args = append(args, "-type-in-type=no", "-w", "all")
			}
			return append(args, specPath, implPath)
		},
		interpret: func(output string, exitErr error) (axiom.Status, []axiom.Counterexample) {
			switch {
			case exitErr == nil:
				return axiom.StatusVerified, nil
			case strings.Contains(output, "Unable to unify") ||
				strings.Contains(output, "Proof failed") ||
				strings.Contains(output, "Cannot find a proof"):
				return axiom.StatusFalsified, parseCounterexamples(output)
			default:
				return axiom.StatusToolError, nil
			}
		},
	}
}

func init() {
	Register(newCoq())
}
