// Package store persists run history and qualified leads in SQLite.
package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// RunStatus represents the current state of a lead generation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one pipeline invocation.
type Run struct {
	ID          string
	BaseAddress string
	Keywords    []string
	Status      RunStatus
	Fetched     int
	Unique      int
	LeadCount   int
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SQLiteStore implements run/lead persistence using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	base_address TEXT NOT NULL,
	keywords     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'running',
	fetched      INTEGER NOT NULL DEFAULT 0,
	unique_count INTEGER NOT NULL DEFAULT 0,
	lead_count   INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	name         TEXT NOT NULL,
	address      TEXT NOT NULL,
	rating       TEXT NOT NULL DEFAULT 'N/A',
	rating_count INTEGER NOT NULL DEFAULT 0,
	source_url   TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run in the running state and returns it.
func (s *SQLiteStore) CreateRun(ctx context.Context, baseAddress string, keywords []string) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		BaseAddress: baseAddress,
		Keywords:    keywords,
		Status:      RunStatusRunning,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, base_address, keywords, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.BaseAddress, strings.Join(keywords, ","), string(run.Status), run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return run, nil
}

// CompleteRun marks a run complete (or failed when errMsg is non-empty) and
// records the final counts.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, fetched, unique, leadCount int, errMsg string) error {
	status := RunStatusComplete
	if errMsg != "" {
		status = RunStatusFailed
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, fetched = ?, unique_count = ?, lead_count = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), fetched, unique, leadCount, errMsg, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: complete run")
}

// InsertLeads persists a batch of leads for a run inside one transaction.
func (s *SQLiteStore) InsertLeads(ctx context.Context, runID string, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert leads")
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range leads {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, run_id, name, address, rating, rating_count, source_url) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, l.Name, l.Address, l.Rating, l.RatingCount, l.SourceURL,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert lead %s", l.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit insert leads")
}

// ListRuns returns runs in reverse chronological order, capped at limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, base_address, keywords, status, fetched, unique_count, lead_count, COALESCE(error, ''), created_at, updated_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		var keywords string
		if err := rows.Scan(&r.ID, &r.BaseAddress, &keywords, &r.Status, &r.Fetched, &r.Unique, &r.LeadCount, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if keywords != "" {
			r.Keywords = strings.Split(keywords, ",")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// LeadsForRun returns the leads recorded for a run, in insertion order.
func (s *SQLiteStore) LeadsForRun(ctx context.Context, runID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, address, rating, rating_count, source_url FROM leads WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: leads for run")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.Name, &l.Address, &l.Rating, &l.RatingCount, &l.SourceURL); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}
