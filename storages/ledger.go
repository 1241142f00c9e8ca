package storages

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/metaloop/logs"
	_ "modernc.org/sqlite"
)

// Ledger records runs, segments and meta-update attempts in SQLite.
type Ledger struct {
	db     *sql.DB
	logger logs.Logger
}

const MemoryPath = ":memory:"

func Open(path string, logger logs.Logger) (*Ledger, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	l := &Ledger{
		db:     db,
		logger: logger,
	}
	if err := l.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("ledger opened", "path", path)
	return l, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			started_at    TEXT NOT NULL,
			finished_at   TEXT,
			status        TEXT NOT NULL,
			horizon       INTEGER NOT NULL,
			meta_steps    INTEGER NOT NULL,
			settings      BLOB,
			total_cost    REAL,
			baseline_cost REAL,
			error         TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			run_id       TEXT NOT NULL REFERENCES runs(id),
			meta_step    INTEGER NOT NULL,
			steps        INTEGER NOT NULL,
			policy_name  TEXT NOT NULL,
			segment_cost REAL NOT NULL,
			end_state    BLOB NOT NULL,
			meta_params  BLOB NOT NULL,
			created_at   TEXT NOT NULL,
			PRIMARY KEY (run_id, meta_step)
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			run_id           TEXT NOT NULL REFERENCES runs(id),
			meta_step        INTEGER NOT NULL,
			number           INTEGER NOT NULL,
			accepted         INTEGER NOT NULL,
			fell_back        INTEGER NOT NULL,
			policy_name      TEXT,
			task_prompt      TEXT NOT NULL,
			code             TEXT NOT NULL,
			error_context    TEXT,
			rejection        TEXT,
			generation_error TEXT,
			params           BLOB,
			created_at       TEXT NOT NULL,
			PRIMARY KEY (run_id, meta_step, number)
		)`,
	} {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}

func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
