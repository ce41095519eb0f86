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

	"github.com/axiomforge/axiomforge/internal/synth"
)

var (
	implInputFile   string
	implOutputFile  string
	implLanguage    string
	implTarget      string
	implProfile     string
	implSynthesizer string
	implModel       string
	implOllamaURL   string
)

var implementCmd = &cobra.Command{
	Use:   "implement",
	Short: "Synthesize an implementation from a specification",
	Long: `Synthesize an implementation in a target language from a formal
specification. The optimization profile steers the collaborator toward
speed, size, security, or readability; it never relaxes the proof
obligations the implementation must satisfy.

The synthesized code is untrusted until "axiomforge verify" accepts it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(implInputFile, implLanguage)
		if err != nil {
			return err
		}
		target, err := parseTargetLanguage(implTarget)
		if err != nil {
			return err
		}
		profile, err := parseProfile(implProfile)
		if err != nil {
			return err
		}

		collab, err := buildSynthesizer(implSynthesizer, implModel, implOllamaURL)
		if err != nil {
			return err
		}

		impl, err := synth.New(collab).Synthesize(context.Background(), spec, target, profile, nil)
		if err != nil {
			return fmt.Errorf("synthesis failed: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(implOutputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(implOutputFile, []byte(impl.SourceText), 0644); err != nil {
			return fmt.Errorf("failed to write implementation: %w", err)
		}

		fmt.Printf("Wrote %s implementation (profile %s) to %s\n",
			impl.Language, impl.OptimizationProfile, implOutputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(implementCmd)

	implementCmd.Flags().StringVarP(&implInputFile, "input", "i", "", "Specification file (required)")
	implementCmd.Flags().StringVarP(&implOutputFile, "output", "o", "", "Output implementation file (required)")
	implementCmd.Flags().StringVarP(&implLanguage, "language", "l", "", "Specification language (detected when omitted)")
	implementCmd.Flags().StringVarP(&implTarget, "target", "t", "rust", "Target language (rust, c, go, python, ocaml)")
	implementCmd.Flags().StringVarP(&implProfile, "profile", "p", "none", "Optimization profile (none, speed, size, security, readability)")
	implementCmd.Flags().StringVar(&implSynthesizer, "synthesizer", "ollama", "Code synthesizer")
	implementCmd.Flags().StringVar(&implModel, "model", defaultSynthesizerModel, "Synthesizer model")
	implementCmd.Flags().StringVar(&implOllamaURL, "ollama-url", defaultOllamaURL, "Ollama base URL")

	implementCmd.MarkFlagRequired("input")
	implementCmd.MarkFlagRequired("output")
}
