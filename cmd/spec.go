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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/axiomforge/axiomforge/internal/specgen"
)

var (
	specInputFile  string
	specOutputFile string
	specLanguage   string
	specDomain     string
	specGenerator  string
	specModel      string
	specOllamaURL  string
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Generate a formal specification from requirements",
	Long: `Generate a formal specification from a natural-language requirements
document. Requirements are split on lines and bullets; lines prefixed
"REQ-NNN:" keep their explicit identifier.

The generated specification is parsed and typechecked before it is
written out, so a malformed collaborator response never reaches disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := readRequirements(specInputFile)
		if err != nil {
			return err
		}

		lang, err := parseVerificationLanguage(specLanguage)
		if err != nil {
			return err
		}
		domain, err := parseDomain(specDomain)
		if err != nil {
			return err
		}

		gen, err := buildGenerator(specGenerator, specModel, specOllamaURL)
		if err != nil {
			return err
		}

		ctx := context.Background()
		builder := specgen.New(gen, nil)

		spec, err := builder.Generate(ctx, reqs, domain, specgen.Options{Language: lang})
		if err != nil {
			return fmt.Errorf("specification generation failed: %w", err)
		}

		report, err := builder.Validate(ctx, spec, reqs, specgen.ValidationTypecheck)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, gap := range report.CoverageGaps {
			fmt.Fprintf(os.Stderr, "Warning: requirement %s is not covered by any component\n", gap)
		}
		if !report.IsValid {
			for _, issue := range report.Issues {
				fmt.Fprintf(os.Stderr, "Issue: %s\n", issue)
			}
			return fmt.Errorf("generated specification did not typecheck")
		}

		if err := os.MkdirAll(filepath.Dir(specOutputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(specOutputFile, []byte(spec.SourceText), 0644); err != nil {
			return fmt.Errorf("failed to write specification: %w", err)
		}

		fmt.Printf("Wrote %s specification with %d components to %s\n",
			spec.Language, len(spec.Components), specOutputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(specCmd)

	specCmd.Flags().StringVarP(&specInputFile, "input", "i", "", "Requirements document (required)")
	specCmd.Flags().StringVarP(&specOutputFile, "output", "o", "", "Output specification file (required)")
	specCmd.Flags().StringVarP(&specLanguage, "language", "l", "z3smt", "Verification language (fstar, dafny, coq, tla, z3smt)")
	specCmd.Flags().StringVarP(&specDomain, "domain", "d", "generic", "Application domain")
	specCmd.Flags().StringVar(&specGenerator, "generator", "ollama", "Specification generator")
	specCmd.Flags().StringVar(&specModel, "model", defaultGeneratorModel, "Generator model")
	specCmd.Flags().StringVar(&specOllamaURL, "ollama-url", defaultOllamaURL, "Ollama base URL")

	specCmd.MarkFlagRequired("input")
	specCmd.MarkFlagRequired("output")
}
