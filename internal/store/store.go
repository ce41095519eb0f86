// Package store persists pipeline history in sqlite: runs, the
// specifications and implementations they produced, every verification
// result, and requirement-to-component traceability.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/axiomforge/axiomforge/internal/axiom"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		verification_language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		backend TEXT NOT NULL,
		state TEXT NOT NULL,
		attempts INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS specifications (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		verification_language TEXT NOT NULL,
		checksum TEXT NOT NULL,
		source_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES pipeline_runs(id)
	);

	CREATE TABLE IF NOT EXISTS implementations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		language TEXT NOT NULL,
		optimization_profile TEXT NOT NULL,
		checksum TEXT NOT NULL,
		source_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES pipeline_runs(id)
	);

	-- verification_results is append-only: results are terminal records,
	-- superseded by new attempts under new fingerprints, never updated.
	CREATE TABLE IF NOT EXISTS verification_results (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		backend TEXT NOT NULL,
		proof_level TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES pipeline_runs(id)
	);

	-- requirement_trace maps requirement ids to the components covering
	-- them, per run, for report generation.
	CREATE TABLE IF NOT EXISTS requirement_trace (
		run_id TEXT NOT NULL,
		requirement_id TEXT NOT NULL,
		component_name TEXT NOT NULL,
		PRIMARY KEY (run_id, requirement_id, component_name),
		FOREIGN KEY (run_id) REFERENCES pipeline_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_specs_run ON specifications(run_id);
	CREATE INDEX IF NOT EXISTS idx_impls_run ON implementations(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_run ON verification_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_fingerprint ON verification_results(fingerprint);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RunRecord is one row of pipeline_runs.
type RunRecord struct {
	ID                   string
	Domain               string
	VerificationLanguage string
	TargetLanguage       string
	Backend              string
	State                string
	Attempts             int
	CreatedAt            time.Time
}

func (s *Store) SaveRun(ctx context.Context, rec RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, domain, verification_language, target_language, backend, state, attempts) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, attempts = excluded.attempts`,
		rec.ID, rec.Domain, rec.VerificationLanguage, rec.TargetLanguage, rec.Backend, rec.State, rec.Attempts)
	return err
}

func (s *Store) SaveSpecification(ctx context.Context, runID string, spec *axiom.FormalSpecification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO specifications (id, run_id, verification_language, checksum, source_text) VALUES (?, ?, ?, ?, ?)`,
		spec.ID, runID, string(spec.Language), spec.Checksum, norm.NFC.String(spec.SourceText))
	if err != nil {
		return err
	}

	for _, c := range spec.Components {
		for _, reqID := range c.RequirementIDs {
			if _, err := s.db.ExecContext(ctx,
				`INSERT OR IGNORE INTO requirement_trace (run_id, requirement_id, component_name) VALUES (?, ?, ?)`,
				runID, reqID, c.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) SaveImplementation(ctx context.Context, runID string, impl *axiom.Implementation) error {
	id := fmt.Sprintf("%s_%s", runID, impl.Checksum[:16])
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO implementations (id, run_id, language, optimization_profile, checksum, source_text) VALUES (?, ?, ?, ?, ?, ?)`,
		id, runID, string(impl.Language), string(impl.OptimizationProfile), impl.Checksum, norm.NFC.String(impl.SourceText))
	return err
}

func (s *Store) SaveResult(ctx context.Context, runID string, fp axiom.Fingerprint, result *axiom.VerificationResult) error {
	id := fmt.Sprintf("%s_%d", runID, time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_results (id, run_id, fingerprint, backend, proof_level, status, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, runID, string(fp), result.Backend, result.ProofLevel.String(), string(result.Status), result.Duration.Milliseconds())
	return err
}

func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, verification_language, target_language, backend, state, attempts, created_at FROM pipeline_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Domain, &r.VerificationLanguage, &r.TargetLanguage, &r.Backend, &r.State, &r.Attempts, &r.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// TraceEntry is one requirement-to-component edge of a run.
type TraceEntry struct {
	RequirementID string
	ComponentName string
}

func (s *Store) Trace(ctx context.Context, runID string) ([]TraceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT requirement_id, component_name FROM requirement_trace WHERE run_id = ? ORDER BY requirement_id, component_name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TraceEntry
	for rows.Next() {
		var e TraceEntry
		if err := rows.Scan(&e.RequirementID, &e.ComponentName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarizes the run history.
type Stats struct {
	TotalRuns     int
	VerifiedRuns  int
	AbandonedRuns int
	TotalResults  int
}

func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_runs`).Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_runs WHERE state = 'done'`).Scan(&stats.VerifiedRuns); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_runs WHERE state = 'abandoned'`).Scan(&stats.AbandonedRuns); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verification_results`).Scan(&stats.TotalResults); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	for _, table := range []string{"requirement_trace", "verification_results", "implementations", "specifications", "pipeline_runs"} {
		col := "run_id"
		if table == "pipeline_runs" {
			col = "id"
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, col), runID); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all history and returns the number of runs dropped.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_runs`)
	if err != nil {
		return 0, err
	}
	for _, table := range []string{"requirement_trace", "verification_results", "implementations", "specifications"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, err
		}
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
