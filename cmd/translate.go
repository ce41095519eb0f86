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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/translator"
)

var (
	translateInputFile  string
	translateOutputFile string
	translateFrom       string
	translateTo         string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a specification between verification languages",
	Long: `Translate a formal specification from one verification language to
another, preserving component structure and requirement coverage.

Translation fails rather than silently dropping obligations: a component
using a construct the target language cannot express (for example a
temporal invariant outside TLA+) aborts the whole translation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if translateInputFile == translateOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		spec, err := readSpec(translateInputFile, translateFrom)
		if err != nil {
			return err
		}
		target, err := parseVerificationLanguage(translateTo)
		if err != nil {
			return err
		}

		translated, err := translator.New().Translate(spec, target)
		if err != nil {
			var uce *axiom.UnsupportedConstructError
			if errors.As(err, &uce) {
				return fmt.Errorf("component %s cannot be expressed in %s: %s",
					uce.Component, uce.Target, uce.Detail)
			}
			return fmt.Errorf("translation failed: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(translateOutputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(translateOutputFile, []byte(translated.SourceText), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Translated %s to %s (%d components)\n",
			spec.Language, translated.Language, len(translated.Components))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateInputFile, "input", "i", "", "Input specification file (required)")
	translateCmd.Flags().StringVarP(&translateOutputFile, "output", "o", "", "Output specification file (required)")
	translateCmd.Flags().StringVar(&translateFrom, "from", "", "Source language (detected when omitted)")
	translateCmd.Flags().StringVar(&translateTo, "to", "", "Target language (required)")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("to")
}
