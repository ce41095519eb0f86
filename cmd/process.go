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
	"github.com/axiomforge/axiomforge/internal/pipeline"
	"github.com/axiomforge/axiomforge/internal/report"
	"github.com/axiomforge/axiomforge/internal/specgen"
	"github.com/axiomforge/axiomforge/internal/store"
	"github.com/axiomforge/axiomforge/internal/synth"
)

var (
	procInputFile string
	procOutputDir string
	procLanguage  string
	procTarget    string
	procDomain    string
	procProfile   string
	procBackend   string
	procLevel     string

	procModel     string
	procOllamaURL string

	procMaxAttempts   int
	procVerifyTimeout time.Duration
	procDeadline      time.Duration
	procImplOnly      bool

	procCacheSize int
	procCacheTTL  time.Duration

	procDBPath  string
	procNoStore bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full requirements-to-verified-code pipeline",
	Long: `Run the full refinement pipeline: generate a formal specification from
a requirements document, synthesize an implementation, verify it, and
refine whichever stage a failed verification traces back to, until the
implementation verifies or the attempt budget or deadline runs out.

On success the verified artifact (specification, implementation, and
verification report) is exported to the output directory. Every run is
recorded in the history database unless --no-store is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := readRequirements(procInputFile)
		if err != nil {
			return err
		}

		lang, err := parseVerificationLanguage(procLanguage)
		if err != nil {
			return err
		}
		target, err := parseTargetLanguage(procTarget)
		if err != nil {
			return err
		}
		domain, err := parseDomain(procDomain)
		if err != nil {
			return err
		}
		profile, err := parseProfile(procProfile)
		if err != nil {
			return err
		}
		level, ok := axiom.ParseProofLevel(procLevel)
		if !ok {
			return fmt.Errorf("unknown proof level: %s", procLevel)
		}
		backendName := procBackend
		if backendName == "" {
			backendName = backend.Recommend(domain)
			fmt.Fprintf(os.Stderr, "Using recommended backend for %s: %s\n", domain, backendName)
		}

		gen, err := buildGenerator("ollama", procModel, procOllamaURL)
		if err != nil {
			return err
		}
		collab, err := buildSynthesizer("ollama", procModel, procOllamaURL)
		if err != nil {
			return err
		}
		ver := buildVerifier(procCacheSize, procCacheTTL, backendName, 30*time.Second)

		var policy pipeline.RefinePolicy
		if procImplOnly {
			policy = pipeline.ImplementationOnlyPolicy{}
		}

		ctrl := pipeline.New(specgen.New(gen, ver), synth.New(collab), ver, policy, pipeline.Config{
			VerificationLanguage: lang,
			TargetLanguage:       target,
			Domain:               domain,
			Profile:              profile,
			Backend:              backendName,
			ProofLevel:           level,
			VerifyTimeout:        procVerifyTimeout,
			MaxAttempts:          procMaxAttempts,
			Deadline:             procDeadline,
		})

		ctx := context.Background()
		res, runErr := ctrl.Run(ctx, reqs)

		if !procNoStore && procDBPath != "" {
			if err := persistRun(ctx, res, domain, lang, target, backendName); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
			}
		}

		fmt.Printf("Run:      %s\n", res.RunID)
		fmt.Printf("State:    %s\n", res.State)
		fmt.Printf("Attempts: %d\n", res.Attempts)
		if res.LastResult != nil {
			fmt.Printf("Verdict:  %s (%s)\n", res.LastResult.Status, res.LastResult.Backend)
		}

		if res.State == pipeline.StateDone {
			specPath, err := report.WriteSpec(procOutputDir, res.Spec)
			if err != nil {
				return fmt.Errorf("failed to export specification: %w", err)
			}
			implPath, err := report.WriteImplementation(procOutputDir, res.Implementation)
			if err != nil {
				return fmt.Errorf("failed to export implementation: %w", err)
			}
			reportPath, err := report.WriteReport(procOutputDir, res.Spec, res.LastResult)
			if err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}
			fmt.Printf("Exported: %s, %s, %s\n", specPath, implPath, reportPath)
			return nil
		}

		if res.LastError != nil {
			fmt.Fprintf(os.Stderr, "Last error: %s\n", res.LastError.Suggestion)
		}
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("pipeline ended in state %s", res.State)
	},
}

// persistRun records the run and its best artifacts in the history store.
func persistRun(ctx context.Context, res *pipeline.Result, domain axiom.Domain, lang axiom.VerificationLanguage, target axiom.TargetLanguage, backendName string) error {
	db, err := store.New(procDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(ctx, store.RunRecord{
		ID:                   res.RunID,
		Domain:               string(domain),
		VerificationLanguage: string(lang),
		TargetLanguage:       string(target),
		Backend:              backendName,
		State:                string(res.State),
		Attempts:             res.Attempts,
		CreatedAt:            time.Now().UTC(),
	}); err != nil {
		return err
	}
	if res.Spec != nil {
		if err := db.SaveSpecification(ctx, res.RunID, res.Spec); err != nil {
			return err
		}
	}
	if res.Implementation != nil {
		if err := db.SaveImplementation(ctx, res.RunID, res.Implementation); err != nil {
			return err
		}
	}
	if res.LastResult != nil && res.Spec != nil && res.Implementation != nil {
		fp := axiom.ComputeFingerprint(res.Spec.Checksum, res.Implementation.Checksum,
			res.LastResult.Backend, res.LastResult.ProofLevel)
		if err := db.SaveResult(ctx, res.RunID, fp, res.LastResult); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&procInputFile, "input", "i", "", "Requirements document (required)")
	processCmd.Flags().StringVarP(&procOutputDir, "output", "o", "out", "Output directory for the verified artifact")
	processCmd.Flags().StringVarP(&procLanguage, "language", "l", "z3smt", "Verification language")
	processCmd.Flags().StringVarP(&procTarget, "target", "t", "rust", "Target implementation language")
	processCmd.Flags().StringVarP(&procDomain, "domain", "d", "generic", "Application domain")
	processCmd.Flags().StringVarP(&procProfile, "profile", "p", "none", "Optimization profile")
	processCmd.Flags().StringVarP(&procBackend, "backend", "b", "", "Proof backend (domain recommendation when omitted)")
	processCmd.Flags().StringVar(&procLevel, "level", "standard", "Proof level (quick, standard, thorough, exhaustive)")
	processCmd.Flags().StringVar(&procModel, "model", defaultGeneratorModel, "Collaborator model")
	processCmd.Flags().StringVar(&procOllamaURL, "ollama-url", defaultOllamaURL, "Ollama base URL")
	processCmd.Flags().IntVar(&procMaxAttempts, "max-attempts", 3, "Refinement attempt budget")
	processCmd.Flags().DurationVar(&procVerifyTimeout, "verify-timeout", 5*time.Minute, "Per-verification timeout")
	processCmd.Flags().DurationVar(&procDeadline, "deadline", 0, "Wall-clock deadline for the whole run (0 = none)")
	processCmd.Flags().BoolVar(&procImplOnly, "refine-impl-only", false, "Never regenerate the specification during refinement")
	processCmd.Flags().IntVar(&procCacheSize, "cache-size", 1024, "Verification cache capacity")
	processCmd.Flags().DurationVar(&procCacheTTL, "cache-ttl", 24*time.Hour, "Verification cache entry TTL")
	processCmd.Flags().StringVar(&procDBPath, "db", "axiomforge.db", "History database path")
	processCmd.Flags().BoolVar(&procNoStore, "no-store", false, "Skip recording the run in the history database")

	processCmd.MarkFlagRequired("input")
}
