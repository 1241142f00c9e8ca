package storages

import (
	"context"
	"fmt"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/loops"
	"github.com/reusee/metaloop/metas"
	"github.com/reusee/metaloop/policies"
	"github.com/vmihailenco/msgpack/v5"
)

// RunLedger records the segments and attempts of one run.
type RunLedger struct {
	ledger *Ledger
	id     string
}

var (
	_ loops.SegmentRecorder = new(RunLedger)
	_ metas.AttemptRecorder = new(RunLedger)
)

func (r *RunLedger) ID() string {
	return r.id
}

func (r *RunLedger) Finish(ctx context.Context, outcome RunOutcome) error {
	return r.ledger.FinishRun(ctx, r.id, outcome)
}

func (r *RunLedger) RecordSegment(ctx context.Context, segment loops.SegmentResult) error {
	endState, err := msgpack.Marshal(segment.EndState)
	if err != nil {
		return fmt.Errorf("encode end state: %w", err)
	}
	params, err := msgpack.Marshal(segment.MetaParams)
	if err != nil {
		return fmt.Errorf("encode meta params: %w", err)
	}
	return r.ledger.withTx(ctx, func(tx Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO segments (run_id, meta_step, steps, policy_name, segment_cost, end_state, meta_params, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.id, segment.Index, segment.Steps, segment.PolicyName, segment.SegmentCost, endState, params, now(),
		); err != nil {
			return fmt.Errorf("record segment: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE runs SET total_cost = ? WHERE id = ?`,
			segment.EndState.Cost, r.id,
		); err != nil {
			return fmt.Errorf("update run cost: %w", err)
		}
		return nil
	})
}

func (r *RunLedger) RecordAttempt(ctx context.Context, attempt metas.Attempt) error {
	var params []byte
	if attempt.Params != nil {
		var err error
		params, err = msgpack.Marshal(attempt.Params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
	}
	_, err := r.ledger.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, meta_step, number, accepted, fell_back, policy_name, task_prompt, code,
			error_context, rejection, generation_error, params, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, attempt.MetaStep, attempt.Number, attempt.Accepted, attempt.FellBack,
		nullIfEmpty(attempt.PolicyName), attempt.TaskPrompt, attempt.Code,
		nullIfEmpty(attempt.ErrorContext), nullIfEmpty(attempt.Rejection), nullIfEmpty(attempt.GenerationError),
		params, now(),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (l *Ledger) Segments(ctx context.Context, runID string) (ret []loops.SegmentResult, err error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT meta_step, steps, policy_name, segment_cost, end_state, meta_params
		 FROM segments WHERE run_id = ? ORDER BY meta_step`, runID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var segment loops.SegmentResult
		var endState, params []byte
		if err := rows.Scan(&segment.Index, &segment.Steps, &segment.PolicyName, &segment.SegmentCost, &endState, &params); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		var state battery.State
		if err := msgpack.Unmarshal(endState, &state); err != nil {
			return nil, fmt.Errorf("decode end state: %w", err)
		}
		segment.EndState = state
		var metaParams policies.Params
		if err := msgpack.Unmarshal(params, &metaParams); err != nil {
			return nil, fmt.Errorf("decode meta params: %w", err)
		}
		segment.MetaParams = metaParams
		ret = append(ret, segment)
	}
	return ret, rows.Err()
}

func (l *Ledger) Attempts(ctx context.Context, runID string) (ret []metas.Attempt, err error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT meta_step, number, accepted, fell_back, COALESCE(policy_name, ''), task_prompt, code,
			COALESCE(error_context, ''), COALESCE(rejection, ''), COALESCE(generation_error, ''), params
		 FROM attempts WHERE run_id = ? ORDER BY meta_step, number`, runID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a metas.Attempt
		var params []byte
		if err := rows.Scan(&a.MetaStep, &a.Number, &a.Accepted, &a.FellBack, &a.PolicyName, &a.TaskPrompt, &a.Code,
			&a.ErrorContext, &a.Rejection, &a.GenerationError, &params); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if len(params) > 0 {
			if err := msgpack.Unmarshal(params, &a.Params); err != nil {
				return nil, fmt.Errorf("decode params: %w", err)
			}
		}
		ret = append(ret, a)
	}
	return ret, rows.Err()
}
