package engine

import (
	"errors"
	"fmt"

	"github.com/chmousset/siglib/internal/sig"
)

// RuntimeError represents an error that stopped a run.
//
// Runtime errors include:
//   - Latched: an evaluator tripped the shared error latch
//   - Tick quota: the engine exceeded its maximum tick count
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Node is the name of the offending node, when known.
	Node string

	// Tick is the tick at which the run stopped.
	Tick sig.Tick

	// Details contains additional context.
	Details map[string]string

	cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeLatched indicates an evaluator tripped the error latch.
	ErrCodeLatched RuntimeErrorCode = "LATCHED"

	// ErrCodeTickQuota indicates the engine exceeded its tick quota.
	ErrCodeTickQuota RuntimeErrorCode = "TICK_QUOTA"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" && e.Node != "" {
		return fmt.Sprintf("%s: %s (run=%s, node=%s)", e.Code, e.Message, e.RunID, e.Node)
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the latched fault, if any, so sig.IsNoConfig and friends
// work on engine errors.
func (e *RuntimeError) Unwrap() error {
	return e.cause
}

// IsLatchedError returns true if the run stopped on a latched evaluation.
// Uses errors.As to handle wrapped errors.
func IsLatchedError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeLatched
	}
	return false
}

// IsQuotaError returns true if the run stopped on the tick quota.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTickQuota
	}
	return false
}

// NewLatchedError creates a RuntimeError for a tripped latch.
func NewLatchedError(runID string, n sig.Tick, fault *sig.Fault) *RuntimeError {
	e := &RuntimeError{
		Code:    ErrCodeLatched,
		Message: "signal evaluation latched",
		RunID:   runID,
		Tick:    n,
		Details: map[string]string{
			"tick": fmt.Sprintf("%d", n),
		},
	}
	if fault != nil {
		e.Message = fmt.Sprintf("signal evaluation latched with %s", fault.Code)
		e.Node = fault.Node
		e.Details["code"] = fault.Code.String()
		e.cause = fault
	}
	return e
}

// NewQuotaError creates a RuntimeError for an exceeded tick quota.
func NewQuotaError(runID string, n sig.Tick, ticks, maxTicks int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTickQuota,
		Message: fmt.Sprintf("engine exceeded max ticks (%d > %d)", ticks, maxTicks),
		RunID:   runID,
		Tick:    n,
		Details: map[string]string{
			"ticks":     fmt.Sprintf("%d", ticks),
			"max_ticks": fmt.Sprintf("%d", maxTicks),
		},
	}
}
