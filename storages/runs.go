package storages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	StatusRunning  = "running"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

type RunInfo struct {
	ID        string
	Horizon   int
	MetaSteps int
	Settings  any
}

type RunSummary struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Horizon      int
	MetaSteps    int
	TotalCost    sql.NullFloat64
	BaselineCost sql.NullFloat64
	Error        string
	Segments     int
	Attempts     int
}

// BeginRun inserts a run row and returns a recorder bound to it.
func (l *Ledger) BeginRun(ctx context.Context, info RunInfo) (*RunLedger, error) {
	if info.ID == "" {
		info.ID = NewRunID()
	}
	var settings []byte
	if info.Settings != nil {
		var err error
		settings, err = msgpack.Marshal(info.Settings)
		if err != nil {
			return nil, fmt.Errorf("encode settings: %w", err)
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status, horizon, meta_steps, settings) VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, now(), StatusRunning, info.Horizon, info.MetaSteps, settings,
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	l.logger.InfoContext(ctx, "run started", "run", info.ID)
	return &RunLedger{
		ledger: l,
		id:     info.ID,
	}, nil
}

type RunOutcome struct {
	Status       string
	TotalCost    *float64
	BaselineCost *float64
	Err          error
}

func (l *Ledger) FinishRun(ctx context.Context, id string, outcome RunOutcome) error {
	var errText string
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, total_cost = ?, baseline_cost = ?, error = ? WHERE id = ?`,
		now(), outcome.Status, outcome.TotalCost, outcome.BaselineCost, nullIfEmpty(errText), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (l *Ledger) Runs(ctx context.Context) (ret []RunSummary, err error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, r.finished_at, r.status, r.horizon, r.meta_steps,
			r.total_cost, r.baseline_cost, r.error,
			(SELECT COUNT(*) FROM segments s WHERE s.run_id = r.id),
			(SELECT COUNT(*) FROM attempts a WHERE a.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var summary RunSummary
		var startedAt string
		var finishedAt, errText sql.NullString
		if err := rows.Scan(
			&summary.ID, &startedAt, &finishedAt, &summary.Status,
			&summary.Horizon, &summary.MetaSteps,
			&summary.TotalCost, &summary.BaselineCost, &errText,
			&summary.Segments, &summary.Attempts,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			summary.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt.String)
		}
		summary.Error = errText.String
		ret = append(ret, summary)
	}
	return ret, rows.Err()
}

// RunSettings decodes the settings snapshot of a run into target.
func (l *Ledger) RunSettings(ctx context.Context, id string, target any) error {
	var blob []byte
	err := l.db.QueryRowContext(ctx, `SELECT settings FROM runs WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", id, err)
	} else if err != nil {
		return err
	}
	return msgpack.Unmarshal(blob, target)
}
