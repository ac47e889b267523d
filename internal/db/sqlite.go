package db

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		cost INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		message TEXT,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		settled_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

// Operation statuses recorded in the history.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Operation is one settled processing operation. This is a history of
// finished work for display; nothing is ever dequeued or resumed from it.
type Operation struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name"`
	Kind            string    `json:"kind"`
	Cost            int       `json:"cost"`
	Status          string    `json:"status"`
	Message         string    `json:"message,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	SettledAt       time.Time `json:"settled_at"`
}

// RecordOperation inserts one settled operation.
func (d *Database) RecordOperation(op *Operation) error {
	_, err := d.db.Exec(`
		INSERT INTO operations (id, file_name, kind, cost, status, message, duration_seconds, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.FileName, op.Kind, op.Cost, op.Status, op.Message, op.DurationSeconds, op.SettledAt,
	)
	return err
}

// ListOperations returns settled operations, newest first, capped at limit.
func (d *Database) ListOperations(limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(`
		SELECT id, file_name, kind, cost, status, message, duration_seconds, settled_at
		FROM operations ORDER BY settled_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op := &Operation{}
		var message sql.NullString
		if err := rows.Scan(&op.ID, &op.FileName, &op.Kind, &op.Cost, &op.Status,
			&message, &op.DurationSeconds, &op.SettledAt); err != nil {
			return nil, err
		}
		if message.Valid {
			op.Message = message.String
		}
		ops = append(ops, op)
	}
	if ops == nil {
		ops = []*Operation{}
	}
	return ops, rows.Err()
}

func (d *Database) Close() error {
	return d.db.Close()
}
