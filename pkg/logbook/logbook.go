// Package logbook keeps a SQLite record of exported exchanges so repeated
// conversions of a growing log only emit contacts not seen before.
package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ccollicutt/qsolog/pkg/exchange"
)

// timeLayout is the stored form of exchange timestamps.
const timeLayout = time.RFC3339

// Store manages the logbook database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the logbook at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating logbook directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening logbook: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logbook schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS qsos (
			id TEXT PRIMARY KEY,
			call TEXT NOT NULL,
			band TEXT NOT NULL,
			mode TEXT,
			freq TEXT,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			grid TEXT,
			rst_sent TEXT,
			rst_rcvd TEXT,
			logged_at TEXT NOT NULL,
			UNIQUE (call, started_at, band)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_qsos_call ON qsos(call)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Contains reports whether a contact with the same call, start and band
// has already been logged. A contact logged while still in progress does not
// count once the candidate has finished, so its completed record is exported.
func (s *Store) Contains(ctx context.Context, ex *exchange.Exchange) (bool, error) {
	query := `SELECT count(*) FROM qsos WHERE call = ? AND started_at = ? AND band = ?`
	if ex.End != nil {
		query += ` AND ended_at IS NOT NULL`
	}

	var n int
	err := s.db.QueryRowContext(ctx, query,
		ex.Correspondent, ex.Start.UTC().Format(timeLayout), ex.Band,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying logbook: %w", err)
	}
	return n > 0, nil
}

// FilterNew returns the exchanges that are not yet in the logbook, in order.
func (s *Store) FilterNew(ctx context.Context, exchanges []*exchange.Exchange) ([]*exchange.Exchange, error) {
	fresh := make([]*exchange.Exchange, 0, len(exchanges))
	for _, ex := range exchanges {
		seen, err := s.Contains(ctx, ex)
		if err != nil {
			return nil, err
		}
		if !seen {
			fresh = append(fresh, ex)
		}
	}
	return fresh, nil
}

// Save records exchanges in a single transaction and returns how many were
// new or completed. A stored in-progress contact takes the end time, reports
// and grid of its finished version; finished contacts are never changed.
func (s *Store) Save(ctx context.Context, exchanges []*exchange.Exchange) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO qsos
			(id, call, band, mode, freq, started_at, ended_at, grid, rst_sent, rst_rcvd, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (call, started_at, band) DO UPDATE SET
			ended_at = excluded.ended_at,
			grid = excluded.grid,
			rst_sent = excluded.rst_sent,
			rst_rcvd = excluded.rst_rcvd,
			logged_at = excluded.logged_at
		 WHERE qsos.ended_at IS NULL AND excluded.ended_at IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	loggedAt := time.Now().UTC().Format(timeLayout)
	saved := 0

	for _, ex := range exchanges {
		var ended sql.NullString
		if ex.End != nil {
			ended = sql.NullString{String: ex.End.UTC().Format(timeLayout), Valid: true}
		}

		res, err := stmt.ExecContext(ctx,
			ex.ID, ex.Correspondent, ex.Band, ex.Mode, ex.Frequency,
			ex.Start.UTC().Format(timeLayout), ended,
			ex.Location, ex.ReportSent, ex.ReportReceived, loggedAt)
		if err != nil {
			return 0, fmt.Errorf("saving %s: %w", ex.Correspondent, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("saving %s: %w", ex.Correspondent, err)
		}
		saved += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing logbook: %w", err)
	}
	return saved, nil
}

// Count returns the number of logged contacts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM qsos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting logbook: %w", err)
	}
	return n, nil
}
