package journal

import "context"

// initSchema creates the journal tables if they don't exist.
func (j *Journal) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS decisions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		task_id TEXT NOT NULL DEFAULT '',
		at INTEGER NOT NULL,
		detail TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_run_seq ON decisions(run_id, seq);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}
