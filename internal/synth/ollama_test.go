package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

func TestOllamaSynthesizer_SynthesizeRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if !strings.Contains(req.Prompt, "var count : int") {
			t.Error("prompt is missing the specification source")
		}
		if !strings.Contains(req.Prompt, "previous attempt failed") {
			t.Error("prompt is missing the feedback section")
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: "```rust\nfn main() {}\n```"})
	}))
	defer server.Close()

	s := NewOllamaSynthesizer("test-model", server.URL)
	source, err := s.SynthesizeRaw(context.Background(), "var count : int",
		axiom.LangRust, axiom.OptNone, []string{"obligation violated: count >= 0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "fn main() {}" {
		t.Errorf("expected the fenced payload only, got %q", source)
	}
}

func TestOllamaSynthesizer_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewOllamaSynthesizer("m", server.URL)
	if _, err := s.SynthesizeRaw(context.Background(), "spec", axiom.LangGo, axiom.OptNone, nil); err == nil {
		t.Error("expected an error on a 503 response")
	}
}

func TestBuildSynthesisPrompt_ProfileHint(t *testing.T) {
	prompt := buildSynthesisPrompt("spec text", axiom.LangC, axiom.OptSecurity, nil)
	if !strings.Contains(prompt, "constant-time") {
		t.Error("security profile hint missing")
	}

	plain := buildSynthesisPrompt("spec text", axiom.LangC, axiom.OptNone, nil)
	if strings.Contains(plain, "STYLE:") {
		t.Error("no style section expected for profile none")
	}
}
