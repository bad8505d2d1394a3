// Package history keeps an outcome ledger of processed jobs in SQLite.
// Only metadata is stored: the payloads, transcripts and replies never
// reach the database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/pipeline"
)

// Entry is one recorded job.
type Entry struct {
	JobID     string
	InputType string
	Status    string // "success" or "failed"
	Kind      string // failure kind, empty on success
	Error     string
	Started   time.Time
	Duration  time.Duration
}

// Summary counts recorded jobs by status.
type Summary struct {
	Total     int
	Succeeded int
	ByKind    map[string]int
}

// Store is a SQLite backed job ledger. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id integer PRIMARY KEY AUTOINCREMENT,
			job_id text NOT NULL,
			input_type text NOT NULL,
			status text NOT NULL,
			kind text NOT NULL,
			error text NOT NULL,
			started integer NOT NULL,
			duration_ms integer NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_jobs_started ON jobs (started)`,
		`CREATE INDEX IF NOT EXISTS ix_jobs_job_id ON jobs (job_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Record stores a finished job.
func (s *Store) Record(ctx context.Context, outcome pipeline.Outcome) error {
	return s.Add(ctx, EntryFrom(outcome))
}

// EntryFrom converts a pipeline outcome into a ledger entry.
func EntryFrom(outcome pipeline.Outcome) Entry {
	entry := Entry{
		JobID:     outcome.JobID,
		InputType: outcome.InputType,
		Status:    job.StatusSuccess,
		Started:   outcome.Started,
		Duration:  outcome.Duration,
	}
	if !outcome.Envelope.OK() {
		entry.Status = "failed"
		entry.Kind = outcome.Envelope.Kind.String()
		entry.Error = outcome.Envelope.Error
	}
	return entry
}

// Add stores entry.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT INTO jobs (job_id, input_type, status, kind, error, started, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		entry.JobID,
		entry.InputType,
		entry.Status,
		entry.Kind,
		entry.Error,
		entry.Started.UnixMilli(),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", entry.JobID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, input_type, status, kind, error, started, duration_ms
		FROM jobs ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			started    int64
			durationMS int64
		)
		if err := rows.Scan(&entry.JobID, &entry.InputType, &entry.Status, &entry.Kind, &entry.Error, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		entry.Started = time.UnixMilli(started)
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Summarize counts all recorded jobs.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	summary := Summary{ByKind: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, kind, COUNT(*) FROM jobs GROUP BY status, kind`)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, kind string
			count        int
		)
		if err := rows.Scan(&status, &kind, &count); err != nil {
			return summary, fmt.Errorf("failed to scan summary: %w", err)
		}
		summary.Total += count
		if status == job.StatusSuccess {
			summary.Succeeded += count
		} else {
			summary.ByKind[kind] += count
		}
	}
	return summary, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
