package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrDuplicateRun marks an attempt to index a run identifier twice.
var ErrDuplicateRun = errors.New("runlog: run already indexed")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	ansatz          TEXT NOT NULL,
	ordering        TEXT NOT NULL,
	n_samples       INTEGER NOT NULL,
	seed            INTEGER NOT NULL,
	domains         TEXT NOT NULL,
	best_sample     INTEGER NOT NULL,
	chi2_total      REAL NOT NULL,
	chi2_pmns       REAL NOT NULL,
	chi2_ckm        REAL NOT NULL,
	theta_star_best REAL NOT NULL,
	results_csv     TEXT NOT NULL,
	git_head        TEXT,
	hostname        TEXT,
	created_at      TEXT NOT NULL
);
`

// #endregion schema

// #region index
// Index is the insert-only sqlite catalog of completed runs. The primary
// key on run_id backs the immutability rule at the index level: a run,
// once recorded, can never be replaced.
type Index struct {
	db *sql.DB
}

// IndexPath is the catalog location under a runs base directory.
func IndexPath(base string) string {
	return filepath.Join(base, "runs.db")
}

// OpenIndex opens (creating if needed) the run catalog.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate run index: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Record inserts one completed run. Duplicate run identifiers fail.
func (ix *Index) Record(meta Meta) error {
	var count int
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE run_id = ?`, meta.RunID).Scan(&count); err != nil {
		return fmt.Errorf("check run_id: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateRun, meta.RunID)
	}

	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := ix.db.Exec(
		`INSERT INTO runs (run_id, ansatz, ordering, n_samples, seed, domains, best_sample,
		                   chi2_total, chi2_pmns, chi2_ckm, theta_star_best, results_csv,
		                   git_head, hostname, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID,
		meta.Ansatz,
		meta.Ordering,
		meta.Samples,
		meta.Seed,
		meta.Domains,
		meta.Best.Sample,
		meta.Best.Chi2Total,
		meta.Best.Chi2PMNS,
		meta.Best.Chi2CKM,
		meta.ThetaStarBest(),
		meta.ResultsCSV,
		nullIfEmpty(meta.GitHead),
		nullIfEmpty(meta.Hostname),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Entry is one catalog row as consumed by rollup tooling.
type Entry struct {
	RunID         string
	Ansatz        string
	Ordering      string
	Samples       int
	Seed          int64
	Domains       string
	Chi2Total     float64
	ThetaStarBest float64
	CreatedAt     time.Time
}

// List returns all recorded runs in insertion-time order.
func (ix *Index) List() ([]Entry, error) {
	rows, err := ix.db.Query(
		`SELECT run_id, ansatz, ordering, n_samples, seed, domains, chi2_total, theta_star_best, created_at
		 FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Ansatz, &e.Ordering, &e.Samples, &e.Seed,
			&e.Domains, &e.Chi2Total, &e.ThetaStarBest, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// #endregion index

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
