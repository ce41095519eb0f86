package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/postprocess"
)

// OllamaSynthesizer calls a local Ollama model to synthesize code from a
// formal specification.
type OllamaSynthesizer struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaSynthesizer creates a collaborator backed by a local Ollama model.
func NewOllamaSynthesizer(model, baseURL string) *OllamaSynthesizer {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaSynthesizer{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (s *OllamaSynthesizer) Name() string { return "ollama" }

func (s *OllamaSynthesizer) SynthesizeRaw(ctx context.Context, specSource string, targetLang axiom.TargetLanguage, profile axiom.OptimizationProfile, hints []string) (string, error) {
	prompt := buildSynthesisPrompt(specSource, targetLang, profile, hints)

	jsonData, err := json.Marshal(ollamaRequest{Model: s.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("synthesizer returned status %d", resp.StatusCode)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode synthesis response: %w", err)
	}

	return postprocess.Clean(out.Response), nil
}

func (s *OllamaSynthesizer) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// profileHints translate the optimization profile into generation guidance.
// Hints only: no profile may weaken an obligation from the specification.
var profileHints = map[axiom.OptimizationProfile]string{
	axiom.OptNone:        "",
	axiom.OptSpeed:       "Optimize for execution speed.",
	axiom.OptSize:        "Optimize for minimal code size.",
	axiom.OptSecurity:    "Prefer constant-time operations and defensive input handling.",
	axiom.OptReadability: "Prefer clear, well-named, documented code over cleverness.",
}

func buildSynthesisPrompt(specSource string, targetLang axiom.TargetLanguage, profile axiom.OptimizationProfile, hints []string) string {
	var extra strings.Builder
	if h := profileHints[profile]; h != "" {
		fmt.Fprintf(&extra, "\nSTYLE: %s\n", h)
	}
	if len(hints) > 0 {
		extra.WriteString("\nA previous attempt failed verification. Address this feedback:\n")
		for _, h := range hints {
			fmt.Fprintf(&extra, "- %s\n", h)
		}
	}

	return fmt.Sprintf(`You are an expert %s programmer implementing a formally specified system.

# YOUR TASK

Write a complete %s implementation satisfying every obligation in the
specification below. Every precondition, postcondition and invariant is
binding; do not weaken or skip any of them.

SPECIFICATION:
%s
%s
Output ONLY the %s source code. Do not include any explanation.`,
		targetLang, targetLang, specSource, extra.String(), targetLang)
}
