package store

import (
	"context"
	"encoding/json"
	"fmt"
)

const runColumns = `id, session, seq, start_tick, ticks, scope_state, samples, prediv, fault_code, fault_node, roots`

// ReadRun retrieves a run by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs in seq order. An empty session lists every run.
func (s *Store) ListRuns(ctx context.Context, session string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY seq ASC, id ASC COLLATE BINARY`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadCapture retrieves the channels and rows captured by a run.
// A run stored without capture yields an empty Capture.
func (s *Store) ReadCapture(ctx context.Context, runID string) (*Capture, error) {
	chRows, err := s.db.QueryContext(ctx, `
		SELECT position, name, kind FROM channels
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", runID, err)
	}
	defer chRows.Close()

	capture := &Capture{}
	for chRows.Next() {
		var ch Channel
		if err := chRows.Scan(&ch.Position, &ch.Name, &ch.Kind); err != nil {
			return nil, fmt.Errorf("read capture %s: %w", runID, err)
		}
		capture.Channels = append(capture.Channels, ch)
	}
	if err := chRows.Err(); err != nil {
		return nil, fmt.Errorf("read capture %s: %w", runID, err)
	}

	sampleRows, err := s.db.QueryContext(ctx, `
		SELECT row, position, value FROM samples
		WHERE run_id = ?
		ORDER BY row ASC, position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read capture %s: %w", runID, err)
	}
	defer sampleRows.Close()

	width := len(capture.Channels)
	for sampleRows.Next() {
		var r, pos int
		var v float64
		if err := sampleRows.Scan(&r, &pos, &v); err != nil {
			return nil, fmt.Errorf("read capture %s: %w", runID, err)
		}
		for len(capture.Rows) <= r {
			capture.Rows = append(capture.Rows, make([]float64, width))
		}
		if pos < width {
			capture.Rows[r][pos] = v
		}
	}
	if err := sampleRows.Err(); err != nil {
		return nil, fmt.Errorf("read capture %s: %w", runID, err)
	}
	return capture, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var roots string
	err := row.Scan(
		&run.ID,
		&run.Session,
		&run.Seq,
		&run.StartTick,
		&run.Ticks,
		&run.ScopeState,
		&run.Samples,
		&run.Prediv,
		&run.FaultCode,
		&run.FaultNode,
		&roots,
	)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(roots), &run.Roots); err != nil {
		return Run{}, fmt.Errorf("unmarshal roots: %w", err)
	}
	return run, nil
}
