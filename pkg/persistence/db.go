// Package persistence keeps a SQLite ledger with one row per orchestration run.
// Transcripts are never stored.
package persistence

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"triad/pkg/logx"
)

// Ledger records run outcomes.
type Ledger struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the ledger database at dbPath.
func Open(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger, err := NewLedger(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	ledger.logger.Info("📦 Run ledger opened: %s", dbPath)
	return ledger, nil
}

// NewLedger wraps an already open database, creating the schema if needed.
func NewLedger(db *sql.DB) (*Ledger, error) {
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchemaWithMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Ledger{db: db, logger: logx.NewLogger("persistence")}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
