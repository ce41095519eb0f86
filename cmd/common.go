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
	"fmt"
	"os"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/cache"
	"github.com/axiomforge/axiomforge/internal/language"
	"github.com/axiomforge/axiomforge/internal/requirements"
	"github.com/axiomforge/axiomforge/internal/specgen"
	"github.com/axiomforge/axiomforge/internal/synth"
	"github.com/axiomforge/axiomforge/internal/verifier"
)

const (
	defaultGeneratorModel   = "qwen2.5-coder:14b"
	defaultSynthesizerModel = "qwen2.5-coder:14b"
	defaultOllamaURL        = "http://localhost:11434"
)

// buildGenerator constructs the NL-to-spec collaborator from CLI parameters.
func buildGenerator(name, model, baseURL string) (specgen.Generator, error) {
	switch name {
	case "ollama":
		return specgen.NewOllamaGenerator(model, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
}

// buildSynthesizer constructs the spec-to-code collaborator from CLI parameters.
func buildSynthesizer(name, model, baseURL string) (synth.Collaborator, error) {
	switch name {
	case "ollama":
		return synth.NewOllamaSynthesizer(model, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown synthesizer: %s", name)
	}
}

// buildVerifier wires a fresh result cache in front of the backend pool.
// quickBackend may be empty to use the domain recommendation.
func buildVerifier(cacheEntries int, cacheTTL time.Duration, quickBackend string, quickTimeout time.Duration) *verifier.Verifier {
	return verifier.New(cache.New(cacheEntries, cacheTTL), verifier.Config{
		QuickBackend: quickBackend,
		QuickTimeout: quickTimeout,
	})
}

func parseVerificationLanguage(s string) (axiom.VerificationLanguage, error) {
	switch axiom.VerificationLanguage(s) {
	case axiom.FStar, axiom.Dafny, axiom.Coq, axiom.TLAPlus, axiom.Z3SMT:
		return axiom.VerificationLanguage(s), nil
	}
	return "", fmt.Errorf("unknown verification language: %s (supported: %v)", s, language.Names())
}

func parseTargetLanguage(s string) (axiom.TargetLanguage, error) {
	switch axiom.TargetLanguage(s) {
	case axiom.LangRust, axiom.LangC, axiom.LangGo, axiom.LangPython, axiom.LangOCaml:
		return axiom.TargetLanguage(s), nil
	}
	return "", fmt.Errorf("unknown target language: %s", s)
}

func parseDomain(s string) (axiom.Domain, error) {
	switch axiom.Domain(s) {
	case axiom.DomainGeneric, axiom.DomainCryptography, axiom.DomainDistributedSystems,
		axiom.DomainWebSecurity, axiom.DomainSystemsSoftware:
		return axiom.Domain(s), nil
	}
	return "", fmt.Errorf("unknown domain: %s", s)
}

func parseProfile(s string) (axiom.OptimizationProfile, error) {
	switch axiom.OptimizationProfile(s) {
	case axiom.OptNone, axiom.OptSpeed, axiom.OptSize, axiom.OptSecurity, axiom.OptReadability:
		return axiom.OptimizationProfile(s), nil
	}
	return "", fmt.Errorf("unknown optimization profile: %s", s)
}

// readRequirements loads and splits a requirements document.
func readRequirements(path string) ([]axiom.Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}
	reqs := requirements.Parse(string(data))
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no requirements found in %s", path)
	}
	return reqs, nil
}

// readSpec loads a formal specification from disk, detecting the language
// when lang is empty, and reparses it through the matching adapter.
func readSpec(path, lang string) (*axiom.FormalSpecification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file: %w", err)
	}
	source := string(data)

	var vl axiom.VerificationLanguage
	if lang == "" {
		detected, ok := language.Detect(source)
		if !ok {
			return nil, fmt.Errorf("could not detect verification language of %s; pass --language", path)
		}
		vl = detected
	} else {
		vl, err = parseVerificationLanguage(lang)
		if err != nil {
			return nil, err
		}
	}

	adapter, err := language.Get(vl)
	if err != nil {
		return nil, err
	}
	components, err := adapter.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse specification: %w", err)
	}

	spec := &axiom.FormalSpecification{
		ID:         path,
		Language:   vl,
		Components: components,
	}
	spec.SetSourceText(source)
	return spec, nil
}
