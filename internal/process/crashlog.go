package process

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// CrashLog is a tiny append-only ledger of worker crashes: worker id and
// timestamp. It is purely observability — the manager never reads it back to
// answer AcquireWorker or reconstruct any linter state; linter state is
// never persisted across worker restarts.
type CrashLog struct {
	db *sql.DB
}

// CrashEvent is one recorded crash.
type CrashEvent struct {
	WorkerID string
	At       time.Time
}

// OpenCrashLog opens (creating if necessary) a sqlite-backed crash ledger at
// path. Pass ":memory:" for an ephemeral log, useful in tests.
func OpenCrashLog(path string) (*CrashLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open crash log: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS crashes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worker_id TEXT NOT NULL,
	at DATETIME NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create crash log schema: %w", err)
	}
	return &CrashLog{db: db}, nil
}

// Record appends one crash event for workerID at the current time.
func (c *CrashLog) Record(workerID string) {
	if c == nil {
		return
	}
	if _, err := c.db.Exec(`INSERT INTO crashes (worker_id, at) VALUES (?, ?)`, workerID, time.Now()); err != nil {
		slog.Error("crash log write failed", "worker", workerID, "error", err)
	}
}

// Recent returns the last n crash events, most recent first.
func (c *CrashLog) Recent(n int) ([]CrashEvent, error) {
	if c == nil {
		return nil, nil
	}
	rows, err := c.db.Query(`SELECT worker_id, at FROM crashes ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query crash log: %w", err)
	}
	defer rows.Close()

	var events []CrashEvent
	for rows.Next() {
		var e CrashEvent
		if err := rows.Scan(&e.WorkerID, &e.At); err != nil {
			return nil, fmt.Errorf("scan crash log row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (c *CrashLog) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}
