package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chmousset/siglib/internal/canonical"
)

// WriteRun stores a run and its capture in one transaction and returns the
// run's seq. capture may be nil.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an existing run ID
// leaves the stored run untouched and returns its seq.
func (s *Store) WriteRun(ctx context.Context, run Run, capture *Capture) (int64, error) {
	roots := run.Roots
	if roots == nil {
		roots = []Root{}
	}
	rootsJSON, err := canonical.Marshal(roots)
	if err != nil {
		return 0, fmt.Errorf("write run: marshal roots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq)
	if err == nil {
		return seq, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, session, seq, start_tick, ticks, scope_state, samples, prediv, fault_code, fault_node, roots)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Session,
		seq,
		run.StartTick,
		run.Ticks,
		run.ScopeState,
		run.Samples,
		max(1, run.Prediv),
		run.FaultCode,
		run.FaultNode,
		string(rootsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if capture != nil {
		if err := writeCapture(ctx, tx, run.ID, capture); err != nil {
			return 0, fmt.Errorf("write run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

func writeCapture(ctx context.Context, tx *sql.Tx, runID string, capture *Capture) error {
	for i, ch := range capture.Channels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channels (run_id, position, name, kind)
			VALUES (?, ?, ?, ?)
		`, runID, i, ch.Name, ch.Kind)
		if err != nil {
			return fmt.Errorf("channel %q: %w", ch.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, row, position, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for r, row := range capture.Rows {
		if len(row) != len(capture.Channels) {
			return fmt.Errorf("row %d has %d values, want %d", r, len(row), len(capture.Channels))
		}
		for pos, v := range row {
			if _, err := stmt.ExecContext(ctx, runID, r, pos, v); err != nil {
				return fmt.Errorf("sample %d/%d: %w", r, pos, err)
			}
		}
	}
	return nil
}
