// Package metrics exposes engine run statistics as Prometheus metrics.
//
// Each Collector owns a private registry, so several sessions in one process
// never collide on metric names. The CLI writes the registry to a textfile
// for the node exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "siglib"

// Collector records ticks, latch trips and capture progress.
// It implements engine.Recorder.
//
// Thread Safety: Safe for concurrent use (Prometheus metrics are thread-safe).
type Collector struct {
	registry *prometheus.Registry

	// TicksTotal counts evaluated ticks.
	TicksTotal prometheus.Counter

	// LatchTotal counts latch trips by code.
	LatchTotal *prometheus.CounterVec

	// ScopeSamples is the number of rows captured at the end of the last run.
	ScopeSamples prometheus.Gauge

	// ScopeState is 1 for the scope's current state and 0 for the others.
	ScopeState *prometheus.GaugeVec
}

// New creates a Collector registered on a fresh registry labelled with the
// session name.
func New(session string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"session": session}, reg))

	return &Collector{
		registry: reg,
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ticks_total",
			Help:      "Total ticks evaluated",
		}),
		LatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "latch_total",
			Help:      "Total latch trips by error code",
		}, []string{"code"}),
		ScopeSamples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scope",
			Name:      "samples",
			Help:      "Rows captured by the scope",
		}),
		ScopeState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scope",
			Name:      "state",
			Help:      "Current scope state (1 for the active state)",
		}, []string{"state"}),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTick implements engine.Recorder.
func (c *Collector) ObserveTick() {
	c.TicksTotal.Inc()
}

// ObserveLatch implements engine.Recorder.
func (c *Collector) ObserveLatch(code string) {
	c.LatchTotal.WithLabelValues(code).Inc()
}

// ObserveSamples implements engine.Recorder.
func (c *Collector) ObserveSamples(state string, samples int) {
	c.ScopeSamples.Set(float64(samples))
	c.ScopeState.Reset()
	c.ScopeState.WithLabelValues(state).Set(1)
}

// WriteTextfile writes the registry in the text exposition format to path.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
