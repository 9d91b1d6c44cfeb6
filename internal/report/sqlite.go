// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

// SQLiteSink stores each run's report in a SQLite database. Runs accumulate;
// nothing stored is read back to skip requests.
type SQLiteSink struct {
	db *sql.DB

	// LastRunID is the id assigned by the most recent WriteReport.
	LastRunID string
}

// RunInfo describes one stored run.
type RunInfo struct {
	ID         string
	Mailto     string
	StartedAt  time.Time
	FinishedAt time.Time
	Pairs      int
	Works      int
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteSink{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mailto TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			pair_count INTEGER NOT NULL,
			work_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS summary (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			pair_left TEXT NOT NULL,
			pair_right TEXT NOT NULL,
			cooccurrence_count TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS works (
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			pair_left TEXT NOT NULL,
			pair_right TEXT NOT NULL,
			work_id TEXT,
			title TEXT,
			year TEXT,
			doi TEXT,
			venue TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_works_work_id ON works(work_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// WriteReport stores rep as a new run in a single transaction.
func (s *SQLiteSink) WriteReport(ctx context.Context, rep types.Report) error {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, mailto, started_at, finished_at, pair_count, work_count) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rep.Mailto,
		rep.StartedAt.UTC().Format(time.RFC3339Nano),
		rep.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(rep.Summary), len(rep.Works),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	sumStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO summary (run_id, position, pair_left, pair_right, cooccurrence_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing summary insert: %w", err)
	}
	defer sumStmt.Close()
	for i, r := range rep.Summary {
		if _, err := sumStmt.ExecContext(ctx, runID, i, r.PairLeft, r.PairRight, r.CooccurrenceCount); err != nil {
			return fmt.Errorf("inserting summary row %d: %w", i, err)
		}
	}

	workStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO works (run_id, position, pair_left, pair_right, work_id, title, year, doi, venue)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing works insert: %w", err)
	}
	defer workStmt.Close()
	for i, r := range rep.Works {
		if _, err := workStmt.ExecContext(ctx, runID, i,
			r.PairLeft, r.PairRight, r.WorkID, r.Title, r.Year, r.DOI, r.Venue,
		); err != nil {
			return fmt.Errorf("inserting works row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	s.LastRunID = runID
	return nil
}

// Runs lists stored runs, most recent first.
func (s *SQLiteSink) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mailto, started_at, finished_at, pair_count, work_count FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var (
			ri              RunInfo
			mailto          sql.NullString
			started, finish string
		)
		if err := rows.Scan(&ri.ID, &mailto, &started, &finish, &ri.Pairs, &ri.Works); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ri.Mailto = mailto.String
		ri.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		ri.FinishedAt, _ = time.Parse(time.RFC3339Nano, finish)
		out = append(out, ri)
	}
	return out, rows.Err()
}

// LoadReport reads back the summary and detail rows stored for runID.
func (s *SQLiteSink) LoadReport(ctx context.Context, runID string) (types.Report, error) {
	var (
		rep             types.Report
		mailto          sql.NullString
		started, finish string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT mailto, started_at, finished_at FROM runs WHERE id = ?`, runID,
	).Scan(&mailto, &started, &finish)
	if err == sql.ErrNoRows {
		return rep, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return rep, fmt.Errorf("querying run: %w", err)
	}
	rep.Mailto = mailto.String
	rep.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	rep.FinishedAt, _ = time.Parse(time.RFC3339Nano, finish)

	sumRows, err := s.db.QueryContext(ctx,
		`SELECT pair_left, pair_right, cooccurrence_count FROM summary WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return rep, fmt.Errorf("querying summary: %w", err)
	}
	defer sumRows.Close()
	for sumRows.Next() {
		var r types.SummaryRow
		if err := sumRows.Scan(&r.PairLeft, &r.PairRight, &r.CooccurrenceCount); err != nil {
			return rep, fmt.Errorf("scanning summary row: %w", err)
		}
		rep.Summary = append(rep.Summary, r)
	}
	if err := sumRows.Err(); err != nil {
		return rep, err
	}

	workRows, err := s.db.QueryContext(ctx,
		`SELECT pair_left, pair_right, work_id, title, year, doi, venue FROM works WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return rep, fmt.Errorf("querying works: %w", err)
	}
	defer workRows.Close()
	for workRows.Next() {
		var r types.SearchResultRow
		if err := workRows.Scan(&r.PairLeft, &r.PairRight, &r.WorkID, &r.Title, &r.Year, &r.DOI, &r.Venue); err != nil {
			return rep, fmt.Errorf("scanning works row: %w", err)
		}
		rep.Works = append(rep.Works, r)
	}
	return rep, workRows.Err()
}
