package specgen

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"github.com/axiomforge/axiomforge/internal/axiom"
	"github.com/axiomforge/axiomforge/internal/language"
	"github.com/axiomforge/axiomforge/internal/logger"
)

// Builder turns requirements into validated formal specifications.
type Builder struct {
	gen    Generator
	formal FormalChecker
	log    *slog.Logger
}

// New creates a Builder. formal may be nil; ValidationFormal then degrades
// to ValidationTypecheck with a recorded issue.
func New(gen Generator, formal FormalChecker) *Builder {
	return &Builder{
		gen:    gen,
		formal: formal,
		log:    logger.ForComponent("specgen"),
	}
}

// Generate produces a FormalSpecification from requirements. Collaborator
// output is parsed and normalized; duplicate component names, unknown
// dependency references and cyclic dependency graphs are rejected. Returns
// ErrUnderspecified when no requirement maps to any component, and
// ToolFailureError when the collaborator itself errors.
func (b *Builder) Generate(ctx context.Context, reqs []axiom.Requirement, domain axiom.Domain, opts Options) (*axiom.FormalSpecification, error) {
	adapter, err := language.Get(opts.Language)
	if err != nil {
		return nil, err
	}

	raw, err := b.gen.GenerateRaw(ctx, reqs, domain, opts)
	if err != nil {
		return nil, &axiom.ToolFailureError{Tool: b.gen.Name(), Err: err}
	}

	components, err := adapter.Parse(raw)
	if err != nil {
		return nil, &axiom.ValidationError{Kind: axiom.SyntaxInvalid, Detail: err.Error()}
	}

	if err := checkGraph(components); err != nil {
		return nil, err
	}

	if !coversAnything(reqs, components) {
		return nil, fmt.Errorf("generator output for domain %s: %w", domain, axiom.ErrUnderspecified)
	}

	spec := &axiom.FormalSpecification{
		ID:         uuid.New().String(),
		Language:   opts.Language,
		Components: components,
	}
	spec.SetSourceText(adapter.Serialize(components))

	b.log.Debug("specification generated",
		"spec_id", spec.ID,
		"language", spec.Language,
		"components", len(spec.Components))
	return spec, nil
}

// Validate checks spec at the requested depth. Each depth includes all
// shallower checks. The report's coverage gaps are computed at every depth
// by cross-referencing component metadata against reqs.
func (b *Builder) Validate(ctx context.Context, spec *axiom.FormalSpecification, reqs []axiom.Requirement, depth ValidationDepth) (*ValidationReport, error) {
	report := &ValidationReport{
		IsValid:      true,
		Depth:        depth,
		CoverageGaps: coverageGaps(reqs, spec),
	}

	adapter, err := language.Get(spec.Language)
	if err != nil {
		return nil, err
	}

	// Basic: syntax well-formedness.
	if err := adapter.ValidateSyntax(spec.SourceText); err != nil {
		report.IsValid = false
		report.Issues = append(report.Issues, fmt.Sprintf("syntax: %v", err))
		return report, nil
	}
	if depth == ValidationBasic {
		return report, nil
	}

	// Typecheck: DAG validity plus symbol references.
	if err := checkGraph(spec.Components); err != nil {
		report.IsValid = false
		report.Issues = append(report.Issues, err.Error())
	}
	for _, issue := range checkSymbols(spec.Components) {
		report.IsValid = false
		report.Issues = append(report.Issues, issue)
	}
	if depth == ValidationTypecheck || !report.IsValid {
		return report, nil
	}

	// Formal: a quick low-proof-level pass through the orchestrator. Cached
	// under a different fingerprint than a full run because the proof level
	// differs.
	if b.formal == nil {
		report.Issues = append(report.Issues, "formal validation skipped: no verification orchestrator configured")
		return report, nil
	}
	result, err := b.formal.QuickCheck(ctx, spec)
	if err != nil {
		return nil, err
	}
	if result.Status == axiom.StatusFalsified {
		report.IsValid = false
		report.Issues = append(report.Issues, "formal pre-check falsified the specification")
	}
	return report, nil
}

// coverageGaps lists requirement ids no component covers, in input order.
func coverageGaps(reqs []axiom.Requirement, spec *axiom.FormalSpecification) []string {
	covered := spec.CoveredRequirements()
	var gaps []string
	for _, r := range reqs {
		if !covered[r.ID] {
			gaps = append(gaps, r.ID)
		}
	}
	return gaps
}

func coversAnything(reqs []axiom.Requirement, components []axiom.Component) bool {
	ids := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		ids[r.ID] = true
	}
	for _, c := range components {
		for _, id := range c.RequirementIDs {
			if ids[id] {
				return true
			}
		}
	}
	return false
}

// checkGraph rejects duplicate component names, unknown dependency
// references, and cyclic dependency graphs (Kahn's algorithm).
func checkGraph(components []axiom.Component) error {
	names := make(map[string]bool, len(components))
	for _, c := range components {
		if names[c.Name] {
			return &axiom.ValidationError{
				Kind:      axiom.TypeInconsistent,
				Component: c.Name,
				Detail:    "duplicate component name",
			}
		}
		names[c.Name] = true
	}

	indegree := make(map[string]int, len(components))
	dependents := make(map[string][]string)
	for _, c := range components {
		for _, dep := range c.DependsOn {
			if !names[dep] {
				return &axiom.ValidationError{
					Kind:      axiom.TypeInconsistent,
					Component: c.Name,
					Detail:    fmt.Sprintf("depends on undeclared component %q", dep),
				}
			}
			indegree[c.Name]++
			dependents[dep] = append(dependents[dep], c.Name)
		}
	}

	var queue []string
	for _, c := range components {
		if indegree[c.Name] == 0 {
			queue = append(queue, c.Name)
		}
	}
	resolved := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		resolved++
		for _, d := range dependents[n] {
			indegree[d]--
			if indegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	if resolved != len(components) {
		var cyclic []string
		for name, deg := range indegree {
			if deg > 0 {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
		return &axiom.ValidationError{
			Kind:   axiom.TypeInconsistent,
			Detail: fmt.Sprintf("dependency cycle through %v", cyclic),
		}
	}
	return nil
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// builtins are always-available symbols inside conditions.
var builtins = map[string]bool{
	"true": true, "false": true, "result": true, "old": true,
	"and": true, "or": true, "not": true, "implies": true,
	"forall": true, "exists": true, "in": true, "mod": true,
	"always": true, "eventually": true, "leadsto": true,
}

// checkSymbols verifies that every precondition and postcondition references
// only symbols declared by the component or its transitive dependencies.
func checkSymbols(components []axiom.Component) []string {
	byName := make(map[string]*axiom.Component, len(components))
	for i := range components {
		byName[components[i].Name] = &components[i]
	}

	var issues []string
	for _, c := range components {
		scope := make(map[string]bool)
		collectScope(&c, byName, scope, make(map[string]bool))
		for _, cond := range append(append([]string{}, c.Preconditions...), c.Postconditions...) {
			for _, ident := range identRe.FindAllString(cond, -1) {
				if !scope[ident] && !builtins[ident] {
					issues = append(issues, fmt.Sprintf(
						"component %s references undeclared symbol %q in %q", c.Name, ident, cond))
				}
			}
		}
	}
	return issues
}

func collectScope(c *axiom.Component, byName map[string]*axiom.Component, scope, seen map[string]bool) {
	if seen[c.Name] {
		return
	}
	seen[c.Name] = true
	scope[c.Name] = true
	for _, d := range c.Declarations {
		// A declaration may carry a type annotation ("x : int"); the symbol
		// is the leading identifier.
		if ident := identRe.FindString(d); ident != "" {
			scope[ident] = true
		}
	}
	for _, dep := range c.DependsOn {
		if target, ok := byName[dep]; ok {
			collectScope(target, byName, scope, seen)
		}
	}
}
