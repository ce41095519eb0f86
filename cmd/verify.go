/*
Copyright © 2025 The Axiomforge Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/backend"
)

var (
	verifySpecFile  string
	verifyImplFile  string
	verifyLanguage  string
	verifyTarget    string
	verifyBackends  []string
	verifyLevel     string
	verifyTimeout   time.Duration
	verifyCacheSize int
	verifyCacheTTL  time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an implementation against a specification",
	Long: `Verify an implementation against a formal specification using one or
more proof backends.

Available backends: ` + "fstar, dafny, coq, tla, z3" + `

With a single --backend the result is that backend's verdict. With
multiple backends (cross-checking) any falsification wins, otherwise
the first verified verdict does; disagreement without a falsification
is reported as inconclusive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(verifySpecFile, verifyLanguage)
		if err != nil {
			return err
		}

		implData, err := os.ReadFile(verifyImplFile)
		if err != nil {
			return fmt.Errorf("failed to read implementation file: %w", err)
		}
		target, err := parseTargetLanguage(verifyTarget)
		if err != nil {
			return err
		}
		impl := axiom.NewImplementation(target, string(implData), axiom.OptNone)

		level, ok := axiom.ParseProofLevel(verifyLevel)
		if !ok {
			return fmt.Errorf("unknown proof level: %s", verifyLevel)
		}

		if len(verifyBackends) == 0 {
			verifyBackends = []string{backend.Recommend(axiom.DomainGeneric)}
		}

		ver := buildVerifier(verifyCacheSize, verifyCacheTTL, "", 30*time.Second)
		ctx := context.Background()

		var result *axiom.VerificationResult
		if len(verifyBackends) == 1 {
			result, err = ver.Verify(ctx, &impl, spec, verifyBackends[0], level, verifyTimeout)
		} else {
			var all []*axiom.VerificationResult
			result, all, err = ver.CrossCheck(ctx, &impl, spec, verifyBackends, level, verifyTimeout)
			for _, r := range all {
				if r != nil {
					fmt.Fprintf(os.Stderr, "%s: %s\n", r.Backend, r.Status)
				}
			}
		}
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		printResult(result)
		if result.Status != axiom.StatusVerified {
			return fmt.Errorf("implementation is not verified (%s)", result.Status)
		}
		return nil
	},
}

func printResult(r *axiom.VerificationResult) {
	fmt.Printf("Status:   %s\n", r.Status)
	fmt.Printf("Backend:  %s\n", r.Backend)
	fmt.Printf("Level:    %s\n", r.ProofLevel)
	fmt.Printf("Duration: %s\n", r.Duration.Round(time.Millisecond))
	for _, ce := range r.Counterexamples {
		fmt.Printf("Counterexample (obligation %s, requirement %s):\n", ce.Obligation, ce.RequirementID)
		for k, v := range ce.Variables {
			fmt.Printf("  %s = %s\n", k, v)
		}
		for i, step := range ce.Trace {
			fmt.Printf("  step %d: %s\n", i+1, step)
		}
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifySpecFile, "spec", "s", "", "Specification file (required)")
	verifyCmd.Flags().StringVarP(&verifyImplFile, "impl", "m", "", "Implementation file (required)")
	verifyCmd.Flags().StringVarP(&verifyLanguage, "language", "l", "", "Specification language (detected when omitted)")
	verifyCmd.Flags().StringVarP(&verifyTarget, "target", "t", "rust", "Implementation language")
	verifyCmd.Flags().StringSliceVarP(&verifyBackends, "backend", "b", nil, "Proof backends (repeat or comma-separate to cross-check)")
	verifyCmd.Flags().StringVar(&verifyLevel, "level", "standard", "Proof level (quick, standard, thorough, exhaustive)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 5*time.Minute, "Per-backend verification timeout")
	verifyCmd.Flags().IntVar(&verifyCacheSize, "cache-size", 1024, "Verification cache capacity")
	verifyCmd.Flags().DurationVar(&verifyCacheTTL, "cache-ttl", 24*time.Hour, "Verification cache entry TTL")

	verifyCmd.MarkFlagRequired("spec")
	verifyCmd.MarkFlagRequired("impl")
}
