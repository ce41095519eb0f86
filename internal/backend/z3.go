package backend

import (
	"fmt"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// z3Limits maps proof levels to solver resource limits (millions of
// internal steps).
var z3Limits = map[axiom.ProofLevel]int{
	axiom.Quick:      1,
	axiom.Standard:   10,
	axiom.Thorough:   100,
	axiom.Exhaustive: 0, // unlimited
}

// Z3 checks the negated obligations: unsat means no violating assignment
// exists, sat yields a model that is the counterexample.
func newZ3() Adapter {
	return &execAdapter{
		name:    "z3",
		binary:  "z3",
		specExt: ".smt2",
		implExt: ".smt2",
		buildArgs: func(specPath, implPath string, level axiom.ProofLevel) []string {
			args := []string{"-smt2", "model=true"}
			if limit := z3Limits[level]; limit > 0 {
				args = append(args, fmt.Sprintf("rlimit=%d000000", limit))
			}
			return append(args, specPath, implPath)
		},
		interpret: func(output string, exitErr error) (axiom.Status, []axiom.Counterexample) {
			switch {
			case strings.Contains(output, "unsat"):
				return axiom.StatusVerified, nil
			case strings.Contains(output, "unknown"):
				return axiom.StatusInconclusive, nil
			case strings.Contains(output, "sat"):
				return axiom.StatusFalsified, parseCounterexamples(output)
			default:
				return axiom.StatusToolError, nil
			}
		},
	}
}

func init() {
	Register(newZ3())
}
