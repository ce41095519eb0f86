// Package language supplies per-verification-language adapters: the
// parse/serialize/expressibility primitives the translator and the
// specification builder work through. One adapter per language, registered
// in a lookup table keyed by the language identifier.
package language

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// Adapter is the contract one verification language implements.
type Adapter interface {
	Language() axiom.VerificationLanguage
	// Serialize renders components into the language's surface syntax,
	// carrying requirement traceability in structured comments.
	Serialize(components []axiom.Component) string
	// Parse recovers components from source produced by Serialize.
	Parse(source string) ([]axiom.Component, error)
	// ValidateSyntax checks well-formedness of source text.
	ValidateSyntax(source string) error
	// CanExpress reports nil when every obligation of the component is
	// expressible in this language.
	CanExpress(c axiom.Component) error
}

var registry = map[axiom.VerificationLanguage]Adapter{}

// Register adds an adapter to the lookup table. Later registrations for the
// same language win; called from each adapter file's init.
func Register(a Adapter) {
	registry[a.Language()] = a
}

// Get returns the adapter for lang.
func Get(lang axiom.VerificationLanguage) (Adapter, error) {
	a, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for verification language %q", lang)
	}
	return a, nil
}

// Names lists registered languages in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for lang := range registry {
		names = append(names, string(lang))
	}
	sort.Strings(names)
	return names
}

// grammar captures how one language spells the shared spec structure.
// commentOpen/commentClose wrap structured comments; the *Fmt strings render
// declarations and obligations, the *Re expressions parse them back with the
// payload in capture group 1.
type grammar struct {
	lang         axiom.VerificationLanguage
	commentOpen  string
	commentClose string
	declFmt      string
	preFmt       string
	postFmt      string
	invFmt       string
	declRe       *regexp.Regexp
	preRe        *regexp.Regexp
	postRe       *regexp.Regexp
	invRe        *regexp.Regexp
	// temporal reports whether temporal operators (always / eventually /
	// leadsto) are expressible in invariants.
	temporal bool
}

// headerRe parses the component header inside a structured comment:
//
//	component: name  covers: REQ-001,REQ-002  depends: a,b
var headerRe = regexp.MustCompile(`component:\s*(\S+)(?:\s+covers:\s*(\S+))?(?:\s+depends:\s*(\S+))?`)

var temporalRe = regexp.MustCompile(`(?i)\b(always|eventually|leadsto)\b`)

func (g *grammar) Language() axiom.VerificationLanguage { return g.lang }

func (g *grammar) comment(body string) string {
	if g.commentClose == "" {
		return g.commentOpen + " " + body
	}
	return g.commentOpen + " " + body + " " + g.commentClose
}

func (g *grammar) Serialize(components []axiom.Component) string {
	var b strings.Builder
	for i, c := range components {
		if i > 0 {
			b.WriteString("\n")
		}
		header := "component: " + c.Name
		if len(c.RequirementIDs) > 0 {
			header += "  covers: " + strings.Join(c.RequirementIDs, ",")
		}
		if len(c.DependsOn) > 0 {
			header += "  depends: " + strings.Join(c.DependsOn, ",")
		}
		b.WriteString(g.comment(header) + "\n")
		for _, d := range c.Declarations {
			fmt.Fprintf(&b, g.declFmt+"\n", d)
		}
		for _, p := range c.Preconditions {
			fmt.Fprintf(&b, g.preFmt+"\n", p)
		}
		for _, p := range c.Postconditions {
			fmt.Fprintf(&b, g.postFmt+"\n", p)
		}
		for _, inv := range c.Invariants {
			fmt.Fprintf(&b, g.invFmt+"\n", inv)
		}
	}
	return b.String()
}

func (g *grammar) Parse(source string) ([]axiom.Component, error) {
	var components []axiom.Component
	var current *axiom.Component

	for ln, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, g.commentOpen) {
			if m := headerRe.FindStringSubmatch(line); m != nil {
				components = append(components, axiom.Component{
					Name:           m[1],
					RequirementIDs: splitList(m[2]),
					DependsOn:      splitList(m[3]),
				})
				current = &components[len(components)-1]
			}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: obligation before any component header", ln+1)
		}
		switch {
		case matches(g.declRe, line):
			current.Declarations = append(current.Declarations, capture(g.declRe, line))
		case matches(g.preRe, line):
			current.Preconditions = append(current.Preconditions, capture(g.preRe, line))
		case matches(g.postRe, line):
			current.Postconditions = append(current.Postconditions, capture(g.postRe, line))
		case matches(g.invRe, line):
			current.Invariants = append(current.Invariants, capture(g.invRe, line))
		default:
			return nil, fmt.Errorf("line %d: unrecognized %s construct: %s", ln+1, g.lang, line)
		}
	}
	return components, nil
}

func (g *grammar) ValidateSyntax(source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("empty source")
	}
	_, err := g.Parse(source)
	return err
}

func (g *grammar) CanExpress(c axiom.Component) error {
	if g.temporal {
		return nil
	}
	for _, inv := range c.Invariants {
		if temporalRe.MatchString(inv) {
			return fmt.Errorf("temporal invariant %q has no %s encoding", inv, g.lang)
		}
	}
	return nil
}

func matches(re *regexp.Regexp, line string) bool {
	return re.FindStringSubmatch(line) != nil
}

func capture(re *regexp.Regexp, line string) string {
	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
