// Package ledger persists one append-only record per convergence run for
// audit and trend analysis. Records are immutable once written: the schema
// has no update path.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tabtidy/tabtidy/internal/converge"
)

// DefaultPath is the ledger location relative to the working directory.
const DefaultPath = ".tabtidy/runs.db"

// Ledger is the run-record store.
type Ledger interface {
	converge.Recorder

	// ListRuns returns records for one workbook, newest first, or for all
	// workbooks when workbook is "". limit <= 0 means no limit.
	ListRuns(ctx context.Context, workbook string, limit int) ([]*converge.RunRecord, error)

	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    workbook TEXT NOT NULL,
    success INTEGER NOT NULL,
    passes INTEGER NOT NULL,
    initial_errors INTEGER NOT NULL,
    final_errors INTEGER NOT NULL,
    regressions INTEGER NOT NULL DEFAULT 0,
    started_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_workbook ON runs(workbook);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

type sqliteLedger struct {
	db *sql.DB
}

// Open creates or opens the ledger database at path.
func Open(path string) (Ledger, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return &sqliteLedger{db: db}, nil
}

func (l *sqliteLedger) RecordRun(ctx context.Context, rec *converge.RunRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, workbook, success, passes, initial_errors, final_errors, regressions, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Workbook, rec.Success, rec.Passes,
		rec.InitialErrors, rec.FinalErrors, rec.Regressions,
		rec.StartedAt.UTC(), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("appending run record: %w", err)
	}
	return nil
}

func (l *sqliteLedger) ListRuns(ctx context.Context, workbook string, limit int) ([]*converge.RunRecord, error) {
	query := `
		SELECT id, workbook, success, passes, initial_errors, final_errors, regressions, started_at, duration_ms
		FROM runs`
	var args []interface{}
	if workbook != "" {
		query += " WHERE workbook = ?"
		args = append(args, workbook)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []*converge.RunRecord
	for rows.Next() {
		var rec converge.RunRecord
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.Workbook, &rec.Success, &rec.Passes,
			&rec.InitialErrors, &rec.FinalErrors, &rec.Regressions,
			&rec.StartedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (l *sqliteLedger) Close() error {
	return l.db.Close()
}

// FormatLine renders a record as the flat one-line interchange form.
func FormatLine(rec *converge.RunRecord) string {
	return fmt.Sprintf("%s %s success=%t passes=%d initial=%d final=%d regressions=%d duration=%s",
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.Workbook, rec.Success, rec.Passes,
		rec.InitialErrors, rec.FinalErrors, rec.Regressions,
		rec.Duration.Round(time.Millisecond))
}
