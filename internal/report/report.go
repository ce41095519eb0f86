// Package report exports a pipeline outcome to disk: the specification
// file, the implementation file, and a verification-report directory with
// the result and requirement traceability.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// extensions maps verification and target languages to file extensions.
var specExt = map[axiom.VerificationLanguage]string{
	axiom.FStar:   ".fsti",
	axiom.Dafny:   ".dfy",
	axiom.Coq:     ".v",
	axiom.TLAPlus: ".tla",
	axiom.Z3SMT:   ".smt2",
}

var implExt = map[axiom.TargetLanguage]string{
	axiom.LangRust:   ".rs",
	axiom.LangC:      ".c",
	axiom.LangGo:     ".go",
	axiom.LangPython: ".py",
	axiom.LangOCaml:  ".ml",
}

// WriteSpec writes the specification source next to outDir and returns the
// file path.
func WriteSpec(outDir string, spec *axiom.FormalSpecification) (string, error) {
	ext := specExt[spec.Language]
	if ext == "" {
		ext = ".spec"
	}
	path := filepath.Join(outDir, "spec"+ext)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(spec.SourceText), 0644); err != nil {
		return "", fmt.Errorf("failed to write specification: %w", err)
	}
	return path, nil
}

// WriteImplementation writes the implementation source and returns the path.
func WriteImplementation(outDir string, impl *axiom.Implementation) (string, error) {
	ext := implExt[impl.Language]
	if ext == "" {
		ext = ".txt"
	}
	path := filepath.Join(outDir, "impl"+ext)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(impl.SourceText), 0644); err != nil {
		return "", fmt.Errorf("failed to write implementation: %w", err)
	}
	return path, nil
}

// WriteReport writes the verification-report directory: result.json plus a
// trace file mapping requirement ids to covering components.
func WriteReport(outDir string, spec *axiom.FormalSpecification, result *axiom.VerificationResult) (string, error) {
	reportDir := filepath.Join(outDir, "verification-report")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(reportDir, "result.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}

	var trace []byte
	for _, c := range spec.Components {
		for _, reqID := range c.RequirementIDs {
			trace = append(trace, []byte(fmt.Sprintf("%s\t%s\n", reqID, c.Name))...)
		}
	}
	if err := os.WriteFile(filepath.Join(reportDir, "trace.tsv"), trace, 0644); err != nil {
		return "", fmt.Errorf("failed to write trace: %w", err)
	}

	return reportDir, nil
}
