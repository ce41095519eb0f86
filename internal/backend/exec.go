package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// execAdapter shells out to an installed verification tool. Each concrete
// backend supplies the binary name, file extensions, argument construction
// per proof level, and an output interpreter.
type execAdapter struct {
	name      string
	binary    string
	specExt   string
	implExt   string
	buildArgs func(specPath, implPath string, level axiom.ProofLevel) []string
	interpret func(output string, exitErr error) (axiom.Status, []axiom.Counterexample)
}

func (a *execAdapter) Name() string { return a.name }

// IsAvailable checks that the tool binary is on PATH.
func (a *execAdapter) IsAvailable(ctx context.Context) error {
	if _, err := exec.LookPath(a.binary); err != nil {
		return fmt.Errorf("%s not installed: %w", a.binary, err)
	}
	return nil
}

// Run writes the sources into a work directory, invokes the tool under ctx,
// and interprets its output. On ctx expiry the process is killed and a
// Timeout result is returned, keeping the artifact refs produced so far.
func (a *execAdapter) Run(ctx context.Context, req RunRequest) (*axiom.VerificationResult, error) {
	start := time.Now()

	if err := a.IsAvailable(ctx); err != nil {
		return &axiom.VerificationResult{
			Status:     axiom.StatusToolError,
			Backend:    a.name,
			ProofLevel: req.ProofLevel,
			Duration:   time.Since(start),
		}, nil
	}

	workDir, err := os.MkdirTemp("", "axiomforge-"+a.name+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	specPath := filepath.Join(workDir, "spec"+a.specExt)
	implPath := filepath.Join(workDir, "impl"+a.implExt)
	refs := []string{}
	if err := os.WriteFile(specPath, []byte(req.SpecSource), 0644); err != nil {
		return nil, fmt.Errorf("failed to write spec file: %w", err)
	}
	refs = append(refs, specPath)
	if err := os.WriteFile(implPath, []byte(req.ImplSource), 0644); err != nil {
		return nil, fmt.Errorf("failed to write impl file: %w", err)
	}
	refs = append(refs, implPath)

	cmd := exec.CommandContext(ctx, a.binary, a.buildArgs(specPath, implPath, req.ProofLevel)...)
	cmd.Dir = workDir
	output, runErr := cmd.CombinedOutput()

	logPath := filepath.Join(workDir, "output.log")
	if werr := os.WriteFile(logPath, output, 0644); werr == nil {
		refs = append(refs, logPath)
	}

	if ctx.Err() != nil {
		// Partial artifacts written before expiry stay referenced.
		return &axiom.VerificationResult{
			Status:       axiom.StatusTimeout,
			Backend:      a.name,
			ProofLevel:   req.ProofLevel,
			Duration:     time.Since(start),
			ArtifactRefs: refs,
		}, nil
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// The tool never ran (spawn failure), not a verdict.
		return &axiom.VerificationResult{
			Status:       axiom.StatusToolError,
			Backend:      a.name,
			ProofLevel:   req.ProofLevel,
			Duration:     time.Since(start),
			ArtifactRefs: refs,
		}, nil
	}

	status, counterexamples := a.interpret(string(output), runErr)
	return &axiom.VerificationResult{
		Status:          status,
		Backend:         a.name,
		ProofLevel:      req.ProofLevel,
		Duration:        time.Since(start),
		Counterexamples: counterexamples,
		ArtifactRefs:    refs,
	}, nil
}

// counterexampleRe matches the cross-tool failure annotation convention:
//
//	counterexample: x=-1, y=0
//	  obligation: precondition x > 0
//	  requirement: REQ-001
var (
	counterexampleRe = regexp.MustCompile(`(?m)^\s*counterexample:\s*(.+)$`)
	obligationRe     = regexp.MustCompile(`(?m)^\s*obligation:\s*(.+)$`)
	requirementRe    = regexp.MustCompile(`(?m)^\s*requirement:\s*(\S+)`)
	assignmentRe     = regexp.MustCompile(`(\w+)\s*=\s*([^,\s]+)`)
)

// parseCounterexamples extracts annotated counterexamples from tool output.
// Tools that emit no annotations still produce one bare counterexample so a
// Falsified result is never empty-handed.
func parseCounterexamples(output string) []axiom.Counterexample {
	matches := counterexampleRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return []axiom.Counterexample{{Obligation: firstLine(output)}}
	}

	obligations := obligationRe.FindAllStringSubmatch(output, -1)
	requirements := requirementRe.FindAllStringSubmatch(output, -1)

	ces := make([]axiom.Counterexample, 0, len(matches))
	for i, m := range matches {
		ce := axiom.Counterexample{Variables: map[string]string{}}
		for _, kv := range assignmentRe.FindAllStringSubmatch(m[1], -1) {
			ce.Variables[kv[1]] = kv[2]
		}
		if i < len(obligations) {
			ce.Obligation = strings.TrimSpace(obligations[i][1])
		}
		if i < len(requirements) {
			ce.RequirementID = requirements[i][1]
		}
		ces = append(ces, ce)
	}
	return ces
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
