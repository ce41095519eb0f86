// Package axiom holds the shared data model of the refinement pipeline:
// requirements, formal specifications, implementations, verification results
// and the fingerprints that identify a verification request.
package axiom

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// VerificationLanguage identifies a formal specification language.
type VerificationLanguage string

const (
	FStar   VerificationLanguage = "fstar"
	Dafny   VerificationLanguage = "dafny"
	Coq     VerificationLanguage = "coq"
	TLAPlus VerificationLanguage = "tla"
	Z3SMT   VerificationLanguage = "z3smt"
)

// TargetLanguage identifies an implementation language for synthesis.
type TargetLanguage string

const (
	LangRust   TargetLanguage = "rust"
	LangC      TargetLanguage = "c"
	LangGo     TargetLanguage = "go"
	LangPython TargetLanguage = "python"
	LangOCaml  TargetLanguage = "ocaml"
)

// Domain is the application domain a specification is generated for.
type Domain string

const (
	DomainGeneric            Domain = "generic"
	DomainCryptography       Domain = "cryptography"
	DomainDistributedSystems Domain = "distributed-systems"
	DomainWebSecurity        Domain = "web-security"
	DomainSystemsSoftware    Domain = "systems-software"
)

// ProofLevel is the search-effort tier requested from a backend.
// Levels are ordered; a higher level never weakens a lower one.
type ProofLevel int

const (
	Quick ProofLevel = iota
	Standard
	Thorough
	Exhaustive
)

func (p ProofLevel) String() string {
	switch p {
	case Quick:
		return "quick"
	case Standard:
		return "standard"
	case Thorough:
		return "thorough"
	case Exhaustive:
		return "exhaustive"
	}
	return "unknown"
}

// ParseProofLevel maps a CLI/config string to a ProofLevel.
func ParseProofLevel(s string) (ProofLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quick":
		return Quick, true
	case "standard", "":
		return Standard, true
	case "thorough":
		return Thorough, true
	case "exhaustive":
		return Exhaustive, true
	}
	return Standard, false
}

// OptimizationProfile steers synthesis hints. It never relaxes obligations.
type OptimizationProfile string

const (
	OptNone        OptimizationProfile = "none"
	OptSpeed       OptimizationProfile = "speed"
	OptSize        OptimizationProfile = "size"
	OptSecurity    OptimizationProfile = "security"
	OptReadability OptimizationProfile = "readability"
)

// Requirement is a single natural-language requirement. Immutable once
// ingested; the id stays stable across a pipeline run for traceability.
type Requirement struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Component is a named unit of a specification: obligations plus the
// dependency edges to other components. RequirementIDs records which
// requirements the component covers.
type Component struct {
	Name           string   `json:"name"`
	Declarations   []string `json:"declarations,omitempty"`
	Preconditions  []string `json:"preconditions,omitempty"`
	Postconditions []string `json:"postconditions,omitempty"`
	Invariants     []string `json:"invariants,omitempty"`
	DependsOn      []string `json:"depends_on,omitempty"`
	RequirementIDs []string `json:"requirement_ids,omitempty"`
}

// FormalSpecification is a checksum-tracked formal description of required
// behavior in one verification language. Mutate sourceText only through
// SetSourceText so the checksum stays in sync.
type FormalSpecification struct {
	ID         string               `json:"id"`
	Language   VerificationLanguage `json:"verification_language"`
	Components []Component          `json:"components"`
	SourceText string               `json:"source_text"`
	Checksum   string               `json:"checksum"`
}

// SetSourceText replaces the specification source and recomputes the checksum.
func (s *FormalSpecification) SetSourceText(text string) {
	s.SourceText = text
	s.Checksum = Checksum(text)
}

// CoveredRequirements returns the set of requirement ids covered by any
// component, as a sorted-insensitive membership map.
func (s *FormalSpecification) CoveredRequirements() map[string]bool {
	covered := make(map[string]bool)
	for _, c := range s.Components {
		for _, id := range c.RequirementIDs {
			covered[id] = true
		}
	}
	return covered
}

// Component returns the named component, or nil.
func (s *FormalSpecification) Component(name string) *Component {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i]
		}
	}
	return nil
}

// Implementation is synthesized source in one target language.
type Implementation struct {
	Language            TargetLanguage      `json:"language"`
	SourceText          string              `json:"source_text"`
	OptimizationProfile OptimizationProfile `json:"optimization_profile"`
	Checksum            string              `json:"checksum"`
}

// NewImplementation builds an Implementation with its checksum derived
// from the source text.
func NewImplementation(lang TargetLanguage, source string, profile OptimizationProfile) Implementation {
	return Implementation{
		Language:            lang,
		SourceText:          source,
		OptimizationProfile: profile,
		Checksum:            Checksum(source),
	}
}

// Status is the outcome of one verification attempt.
type Status string

const (
	StatusVerified     Status = "verified"
	StatusFalsified    Status = "falsified"
	StatusTimeout      Status = "timeout"
	StatusToolError    Status = "tool_error"
	StatusInconclusive Status = "inconclusive"
)

// Counterexample is a concrete witness of a violated obligation.
type Counterexample struct {
	Variables     map[string]string `json:"variables,omitempty"`
	Trace         []string          `json:"trace,omitempty"`
	Obligation    string            `json:"obligation,omitempty"`
	RequirementID string            `json:"requirement_id,omitempty"`
}

// VerificationResult is the terminal record of one backend invocation.
// Never mutated once produced; a new attempt produces a new result under
// a new fingerprint.
type VerificationResult struct {
	Status          Status           `json:"status"`
	Backend         string           `json:"backend"`
	ProofLevel      ProofLevel       `json:"proof_level"`
	Duration        time.Duration    `json:"-"`
	Counterexamples []Counterexample `json:"counterexamples,omitempty"`
	ArtifactRefs    []string         `json:"artifact_refs,omitempty"`
}

// MarshalJSON reports the duration in milliseconds for the on-disk report.
func (r *VerificationResult) MarshalJSON() ([]byte, error) {
	type alias VerificationResult
	return json.Marshal(&struct {
		*alias
		DurationMs int64 `json:"duration_ms"`
	}{
		alias:      (*alias)(r),
		DurationMs: r.Duration.Milliseconds(),
	})
}

// VerifiedArtifact is the frozen, successful output of a pipeline run.
// Produced only when Result.Status is StatusVerified.
type VerifiedArtifact struct {
	Spec           FormalSpecification `json:"spec"`
	Implementation Implementation      `json:"implementation"`
	Result         VerificationResult  `json:"result"`
}

// Fingerprint deterministically identifies one verification request.
type Fingerprint string

// ComputeFingerprint hashes the logical inputs of a verification request.
// The same inputs always yield the same fingerprint, across restarts.
func ComputeFingerprint(specChecksum, implChecksum, backend string, level ProofLevel) Fingerprint {
	h := sha256.New()
	h.Write([]byte(specChecksum))
	h.Write([]byte{0})
	h.Write([]byte(implChecksum))
	h.Write([]byte{0})
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(level.String()))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Checksum hashes NFC-normalized text so that semantically identical sources
// with different Unicode composition share one checksum.
func Checksum(text string) string {
	normalized := norm.NFC.String(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
