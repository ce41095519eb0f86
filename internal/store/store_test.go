package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id, state string) RunRecord {
	return RunRecord{
		ID:                   id,
		Domain:               "generic",
		VerificationLanguage: "dafny",
		TargetLanguage:       "rust",
		Backend:              "z3",
		State:                state,
		Attempts:             2,
		CreatedAt:            time.Now().UTC(),
	}
}

func TestSaveRun_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1", "verifying")); err != nil {
		t.Fatal(err)
	}
	rec := sampleRun("run-1", "done")
	rec.Attempts = 3
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].State != "done" || runs[0].Attempts != 3 {
		t.Errorf("upsert did not update: %+v", runs[0])
	}
}

func TestSaveSpecification_RecordsTrace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1", "done")); err != nil {
		t.Fatal(err)
	}

	spec := &axiom.FormalSpecification{
		ID:       "spec-1",
		Language: axiom.Dafny,
		Components: []axiom.Component{
			{Name: "counter", RequirementIDs: []string{"REQ-001", "REQ-002"}},
			{Name: "reset", RequirementIDs: []string{"REQ-002"}},
		},
	}
	spec.SetSourceText("var count : int")

	if err := s.SaveSpecification(ctx, "run-1", spec); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Trace(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 trace edges, got %d", len(entries))
	}
	if entries[0].RequirementID != "REQ-001" || entries[0].ComponentName != "counter" {
		t.Errorf("unexpected first edge: %+v", entries[0])
	}
}

func TestSaveResult_AppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1", "done")); err != nil {
		t.Fatal(err)
	}

	fp := axiom.ComputeFingerprint("spec", "impl", "z3", axiom.Standard)
	for i := 0; i < 2; i++ {
		result := &axiom.VerificationResult{
			Status:     axiom.StatusFalsified,
			Backend:    "z3",
			ProofLevel: axiom.Standard,
			Duration:   250 * time.Millisecond,
		}
		if err := s.SaveResult(ctx, "run-1", fp, result); err != nil {
			t.Fatal(err)
		}
		// Result ids are timestamped; keep them distinct.
		time.Sleep(time.Millisecond)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalResults != 2 {
		t.Errorf("expected 2 appended results, got %d", stats.TotalResults)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []RunRecord{
		sampleRun("run-1", "done"),
		sampleRun("run-2", "abandoned"),
		sampleRun("run-3", "done"),
	} {
		if err := s.SaveRun(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRuns != 3 || stats.VerifiedRuns != 2 || stats.AbandonedRuns != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1", "done")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, sampleRun("run-2", "done")); err != nil {
		t.Fatal(err)
	}

	spec := &axiom.FormalSpecification{
		ID:         "spec-1",
		Language:   axiom.Dafny,
		Components: []axiom.Component{{Name: "c", RequirementIDs: []string{"REQ-001"}}},
	}
	spec.SetSourceText("var x")
	if err := s.SaveSpecification(ctx, "run-1", spec); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "run-2" {
		t.Errorf("expected only run-2 to survive, got %+v", runs)
	}
	entries, err := s.Trace(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected the trace to be deleted, got %d edges", len(entries))
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2"} {
		if err := s.SaveRun(ctx, sampleRun(id, "done")); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 runs cleared, got %d", n)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRuns != 0 {
		t.Errorf("expected an empty store, got %d runs", stats.TotalRuns)
	}
}

func TestSaveImplementation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1", "done")); err != nil {
		t.Fatal(err)
	}
	impl := axiom.NewImplementation(axiom.LangRust, "fn main() {}", axiom.OptSpeed)
	if err := s.SaveImplementation(ctx, "run-1", &impl); err != nil {
		t.Fatal(err)
	}
	// Saving the same implementation twice replaces, never duplicates.
	if err := s.SaveImplementation(ctx, "run-1", &impl); err != nil {
		t.Fatal(err)
	}
}
