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
	"time"

	"github.com/spf13/cobra"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/specgen"
)

var (
	validateInputFile  string
	validateReqsFile   string
	validateLanguage   string
	validateDepth      string
	validateBackend    string
	validateCacheSize  int
	validateCacheTTL   time.Duration
	validateQuickLimit time.Duration
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a formal specification",
	Long: `Validate a formal specification at increasing depth:

  basic      syntax well-formedness
  typecheck  basic plus dependency-graph and symbol consistency
  formal     typecheck plus a quick verification pass through a backend

Coverage gaps against a requirements document (--requirements) are
reported at every depth. Validation is read-only: it never mutates the
specification, and running it twice produces identical reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(validateInputFile, validateLanguage)
		if err != nil {
			return err
		}

		var reqs []axiom.Requirement
		if validateReqsFile != "" {
			reqs, err = readRequirements(validateReqsFile)
			if err != nil {
				return err
			}
		}

		var depth specgen.ValidationDepth
		switch validateDepth {
		case "basic":
			depth = specgen.ValidationBasic
		case "typecheck":
			depth = specgen.ValidationTypecheck
		case "formal":
			depth = specgen.ValidationFormal
		default:
			return fmt.Errorf("unknown validation depth: %s", validateDepth)
		}

		var formal specgen.FormalChecker
		if depth == specgen.ValidationFormal {
			formal = buildVerifier(validateCacheSize, validateCacheTTL, validateBackend, validateQuickLimit)
		}
		builder := specgen.New(nil, formal)

		report, err := builder.Validate(context.Background(), spec, reqs, depth)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Printf("Language:   %s\n", spec.Language)
		fmt.Printf("Components: %d\n", len(spec.Components))
		fmt.Printf("Depth:      %s\n", validateDepth)
		fmt.Printf("Valid:      %v\n", report.IsValid)
		for _, gap := range report.CoverageGaps {
			fmt.Printf("Gap:        %s\n", gap)
		}
		for _, issue := range report.Issues {
			fmt.Printf("Issue:      %s\n", issue)
		}

		if !report.IsValid {
			return fmt.Errorf("specification is invalid")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInputFile, "input", "i", "", "Specification file (required)")
	validateCmd.Flags().StringVarP(&validateReqsFile, "requirements", "r", "", "Requirements document for coverage checking")
	validateCmd.Flags().StringVarP(&validateLanguage, "language", "l", "", "Verification language (detected when omitted)")
	validateCmd.Flags().StringVarP(&validateDepth, "depth", "d", "typecheck", "Validation depth (basic, typecheck, formal)")
	validateCmd.Flags().StringVar(&validateBackend, "backend", "", "Backend for formal depth (domain default when omitted)")
	validateCmd.Flags().IntVar(&validateCacheSize, "cache-size", 1024, "Verification cache capacity")
	validateCmd.Flags().DurationVar(&validateCacheTTL, "cache-ttl", 24*time.Hour, "Verification cache entry TTL")
	validateCmd.Flags().DurationVar(&validateQuickLimit, "quick-timeout", 30*time.Second, "Formal pre-check timeout")

	validateCmd.MarkFlagRequired("input")
}
