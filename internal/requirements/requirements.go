// Package requirements ingests free-text requirement documents and splits
// them into individually addressable requirements with stable ids. Ids are
// assigned in document order and never change for the rest of a pipeline run,
// so every later stage can trace results back to the requirement they cover.
package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

// idRe matches an explicit requirement id prefix such as "REQ-004:" that a
// document may already carry. Explicit ids win over generated ones.
var idRe = regexp.MustCompile(`^([A-Z][A-Z0-9]*-\d+)\s*[:.]\s*(.+)$`)

// bulletRe strips leading list markers: "-", "*", "1.", "2)", etc.
var bulletRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// Parse splits a requirements document into requirements. A requirement is
// one non-empty line or bullet item; blank lines separate items. Explicit
// "REQ-NNN:" prefixes are honored, everything else receives a generated
// REQ-NNN id in document order.
func Parse(doc string) []axiom.Requirement {
	var reqs []axiom.Requirement
	seq := 0

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = bulletRe.ReplaceAllString(line, "")

		if m := idRe.FindStringSubmatch(line); m != nil {
			reqs = append(reqs, axiom.Requirement{ID: m[1], Text: strings.TrimSpace(m[2])})
			continue
		}

		seq++
		reqs = append(reqs, axiom.Requirement{
			ID:   fmt.Sprintf("REQ-%03d", seq),
			Text: line,
		})
	}

	return reqs
}

// FromList wraps already-separated requirement texts, assigning generated ids.
func FromList(texts []string) []axiom.Requirement {
	reqs := make([]axiom.Requirement, 0, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		reqs = append(reqs, axiom.Requirement{
			ID:   fmt.Sprintf("REQ-%03d", i+1),
			Text: t,
		})
	}
	return reqs
}

// IDSet returns the membership set of requirement ids.
func IDSet(reqs []axiom.Requirement) map[string]bool {
	ids := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		ids[r.ID] = true
	}
	return ids
}
