package specgen

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

// OllamaGenerator calls a local Ollama model to turn requirements into raw
// specification text.
type OllamaGenerator struct {
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

// NewOllamaGenerator creates a generator backed by a local Ollama model.
func NewOllamaGenerator(model, baseURL string) *OllamaGenerator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaGenerator{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (g *OllamaGenerator) Name() string { return "ollama" }

// GenerateRaw sends the specification prompt and returns the cleaned
// response text.
func (g *OllamaGenerator) GenerateRaw(ctx context.Context, requirements []axiom.Requirement, domain axiom.Domain, opts Options) (string, error) {
	prompt := buildGenerationPrompt(requirements, domain, opts)

	jsonData, err := json.Marshal(ollamaRequest{Model: g.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", g.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	return postprocess.Clean(out.Response), nil
}

// IsAvailable checks that the Ollama endpoint answers.
func (g *OllamaGenerator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", g.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

func buildGenerationPrompt(requirements []axiom.Requirement, domain axiom.Domain, opts Options) string {
	var reqLines strings.Builder
	for _, r := range requirements {
		fmt.Fprintf(&reqLines, "- %s: %s\n", r.ID, r.Text)
	}

	var hintLines strings.Builder
	for _, h := range opts.Hints {
		if h.Suggestion == "" {
			continue
		}
		fmt.Fprintf(&hintLines, "- %s\n", h.Suggestion)
	}
	hints := ""
	if hintLines.Len() > 0 {
		hints = fmt.Sprintf("\nA previous attempt failed. Address this feedback:\n%s", hintLines.String())
	}

	return fmt.Sprintf(`You are a formal methods engineer writing %s specifications for the %s domain.

# YOUR TASK

Translate each requirement below into specification components.

REQUIREMENTS:
%s
# OUTPUT FORMAT

For every component emit a header comment of the form
"component: <name>  covers: <requirement ids>  depends: <component names>"
in %s comment syntax, followed by its variable declarations, preconditions,
postconditions and invariants, one per line, in %s syntax.

RULES:
1. Every requirement id must be covered by at least one component.
2. Component names must be unique.
3. The depends lists must not form a cycle.
4. Conditions may reference only declared variables.
%s
Output ONLY the specification. Do not include any explanation.`,
		opts.Language, domain, reqLines.String(), opts.Language, opts.Language, hints)
}
