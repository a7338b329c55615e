package engine

import (
	"context"
	"log/slog"

	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
)

// DefaultMaxTicks is the default tick quota of an engine.
const DefaultMaxTicks = 1 << 24

// Recorder receives run metrics. Implemented by metrics.Collector.
type Recorder interface {
	ObserveTick()
	ObserveLatch(code string)
	ObserveSamples(state string, samples int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTick()               {}
func (nopRecorder) ObserveLatch(string)        {}
func (nopRecorder) ObserveSamples(string, int) {}

// Engine evaluates an integer graph, a float graph and a scope in lockstep.
// Either graph and the scope may be nil.
type Engine struct {
	floats *sig.Graph[float32]
	ints   *sig.Graph[int32]
	scope  *scope.Scope

	floatRoots []sig.Ref
	intRoots   []sig.Ref

	clock   *Clock
	runIDs  RunIDGenerator
	quota   *QuotaEnforcer
	metrics Recorder
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxTicks sets the tick quota across all runs. Zero disables it.
//
// Default: DefaultMaxTicks
func WithMaxTicks(maxTicks int) EngineOption {
	return func(e *Engine) {
		e.quota = NewQuotaEnforcer(maxTicks)
	}
}

// WithRunIDs sets the run ID generator.
//
// Default: UUIDv7Generator
func WithRunIDs(gen RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = gen
	}
}

// WithMetrics sets the recorder that observes ticks, latches and samples.
func WithMetrics(r Recorder) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithClock sets the tick clock, e.g. NewClockAt to resume a session.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithFloatRoots sets the float nodes evaluated every tick, in order.
func WithFloatRoots(refs ...sig.Ref) EngineOption {
	return func(e *Engine) {
		e.floatRoots = append([]sig.Ref(nil), refs...)
	}
}

// WithIntRoots sets the integer nodes evaluated every tick, in order.
func WithIntRoots(refs ...sig.Ref) EngineOption {
	return func(e *Engine) {
		e.intRoots = append([]sig.Ref(nil), refs...)
	}
}

// New creates an Engine over the given graphs and scope.
func New(floats *sig.Graph[float32], ints *sig.Graph[int32], sc *scope.Scope, opts ...EngineOption) *Engine {
	e := &Engine{
		floats:  floats,
		ints:    ints,
		scope:   sc,
		clock:   NewClock(),
		runIDs:  UUIDv7Generator{},
		quota:   NewQuotaEnforcer(DefaultMaxTicks),
		metrics: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine's tick clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Tick evaluates every root at tick n, integer roots first, then updates
// the scope. Tick does not advance the clock.
func (e *Engine) Tick(n sig.Tick) {
	if e.ints != nil {
		for _, ref := range e.intRoots {
			e.ints.Get(ref, n)
		}
	}
	if e.floats != nil {
		for _, ref := range e.floatRoots {
			e.floats.Get(ref, n)
		}
	}
	if e.scope != nil {
		e.scope.Update(n)
	}
}

// Run evaluates up to ticks consecutive ticks starting at the clock's
// current tick.
//
// The returned Report is never nil. The error is a *RuntimeError when the
// latch trips or the tick quota is exceeded, or ctx.Err() on cancellation.
// A latch already tripped before Run stops it before the first tick.
func (e *Engine) Run(ctx context.Context, ticks int) (*Report, error) {
	report := &Report{
		RunID: e.runIDs.Generate(),
		Start: e.clock.Current(),
	}

	slog.Info("engine starting",
		"run_id", report.RunID,
		"start", report.Start,
		"ticks", ticks,
	)

	var err error
	last := report.Start
	for report.Ticks < ticks {
		if fault := e.fault(); fault != nil {
			err = NewLatchedError(report.RunID, last, fault)
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}
		if qErr := e.quota.Check(report.RunID, e.clock.Current()); qErr != nil {
			err = qErr
			break
		}

		n := e.clock.Next()
		e.Tick(n)
		last = n
		report.Ticks++
		e.metrics.ObserveTick()

		if fault := e.fault(); fault != nil {
			err = NewLatchedError(report.RunID, n, fault)
			e.metrics.ObserveLatch(fault.Code.String())
			break
		}
	}

	e.finish(report, last)

	if err != nil {
		slog.Warn("engine stopped",
			"run_id", report.RunID,
			"ticks", report.Ticks,
			"error", err,
		)
		return report, err
	}

	slog.Info("engine finished",
		"run_id", report.RunID,
		"ticks", report.Ticks,
		"scope_state", report.ScopeState,
		"samples", report.Samples,
	)
	return report, nil
}

// fault returns the first latched fault of either graph.
func (e *Engine) fault() *sig.Fault {
	if e.ints != nil && e.ints.Latch().Tripped() {
		return e.ints.Latch().Fault()
	}
	if e.floats != nil && e.floats.Latch().Tripped() {
		return e.floats.Latch().Fault()
	}
	return nil
}

func (e *Engine) finish(report *Report, last sig.Tick) {
	report.Fault = e.fault()

	if report.Ticks > 0 && report.Fault == nil {
		if e.ints != nil {
			for _, ref := range e.intRoots {
				report.Roots = append(report.Roots, RootValue{
					Name:  nodeName(e.ints, ref),
					Kind:  scope.KindInt,
					Value: float64(e.ints.Get(ref, last)),
				})
			}
		}
		if e.floats != nil {
			for _, ref := range e.floatRoots {
				report.Roots = append(report.Roots, RootValue{
					Name:  nodeName(e.floats, ref),
					Kind:  scope.KindFloat,
					Value: scope.Widen(e.floats.Get(ref, last)),
				})
			}
		}
	}

	if e.scope != nil {
		report.ScopeState = e.scope.State().String()
		report.Samples = e.scope.Samples()
		e.metrics.ObserveSamples(report.ScopeState, report.Samples)
	}
}

func nodeName[T sig.Scalar](g *sig.Graph[T], ref sig.Ref) string {
	if node := g.Node(ref); node != nil {
		return node.Name
	}
	return ""
}
