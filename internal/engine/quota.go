package engine

import "github.com/chmousset/siglib/internal/sig"

// QuotaEnforcer counts evaluated ticks and enforces a maximum.
//
// The count spans every Run of an engine, so a session that is resumed
// in several calls still stops at the same tick. A limit of zero or less
// disables the quota.
type QuotaEnforcer struct {
	maxTicks int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxTicks int) *QuotaEnforcer {
	return &QuotaEnforcer{maxTicks: maxTicks}
}

// Check counts one more tick, or returns a TICK_QUOTA RuntimeError when that
// tick would exceed the limit. Call it before evaluating the tick.
func (q *QuotaEnforcer) Check(runID string, n sig.Tick) error {
	if q.maxTicks > 0 && q.current >= q.maxTicks {
		return NewQuotaError(runID, n, q.current+1, q.maxTicks)
	}
	q.current++
	return nil
}

// Reset resets the tick counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the number of ticks counted.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxTicks returns the limit.
func (q *QuotaEnforcer) MaxTicks() int {
	return q.maxTicks
}
