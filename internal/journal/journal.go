package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	_ "modernc.org/sqlite"

	"github.com/aristath/deadline/internal/events"
)

// ErrUnavailable is returned once repeated write failures have switched the journal off.
var ErrUnavailable = errors.New("journal unavailable")

// Entry is one recorded decision.
type Entry struct {
	Seq       int64
	RunID     string
	EventType string
	TaskID    string
	At        int
	Detail    string // JSON encoding of the event
}

// Options configures a Journal.
type Options struct {
	MaxFailures int         // Consecutive failures that trip the breaker (default 5)
	Retry       RetryConfig // Backoff for transient SQLite lock errors
}

// Journal records scheduling decisions of the current process in an in-memory
// SQLite database. Nothing is written to disk.
type Journal struct {
	db      *sql.DB
	breaker *gobreaker.CircuitBreaker
	retry   RetryConfig
}

// NewMemoryJournal opens a private in-memory journal.
func NewMemoryJournal(ctx context.Context, opts Options) (*Journal, error) {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.Retry == (RetryConfig{}) {
		opts.Retry = DefaultRetryConfig()
	}

	// A named shared-cache database lets the pool's connections see the same data
	// while keeping separate journals isolated from each other.
	connStr := fmt.Sprintf("file:journal-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// The database lives only as long as a connection to it is open.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)

	j := &Journal{
		db:      db,
		breaker: newBreaker(opts.MaxFailures),
		retry:   opts.Retry,
	}

	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return j, nil
}

// StartRun registers a new run and returns its ID.
func (j *Journal) StartRun(ctx context.Context, name string) (string, error) {
	runID := uuid.NewString()
	err := j.write(ctx, func() error {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO runs (run_id, name) VALUES (?, ?)
			ON CONFLICT(run_id) DO UPDATE SET name = excluded.name
		`, runID, name)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to start run %q: %w", name, err)
	}
	return runID, nil
}

// Record appends one event to the run's journal.
func (j *Journal) Record(ctx context.Context, runID string, ev events.Event) error {
	detail, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.EventType(), err)
	}

	err = j.write(ctx, func() error {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO decisions (run_id, event_type, task_id, at, detail)
			VALUES (?, ?, ?, ?, ?)
		`, runID, ev.EventType(), ev.TaskID(), ev.At(), string(detail))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", ev.EventType(), err)
	}
	return nil
}

// Entries returns a run's decisions in recording order.
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, run_id, event_type, task_id, at, detail
		FROM decisions
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.RunID, &e.EventType, &e.TaskID, &e.At, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}
	return entries, nil
}

// Counts returns the number of recorded decisions per event type for a run.
func (j *Journal) Counts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*)
		FROM decisions
		WHERE run_id = ?
		GROUP BY event_type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var n int
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[eventType] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}

// Runs returns the names of registered runs keyed by run ID.
func (j *Journal) Runs(ctx context.Context) (map[string]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT run_id, name FROM runs`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs[id] = name
	}
	return runs, rows.Err()
}

// Close releases the database; the journal's contents are discarded.
func (j *Journal) Close() error {
	return j.db.Close()
}
