// Package engine drives signal graphs tick by tick.
//
// The engine owns the tick clock of a session. Each tick it evaluates the
// root nodes of the integer graph, then those of the float graph, then
// advances the capture scope. Evaluation is memoized per tick inside the
// graphs, so roots that share upstream nodes evaluate them once.
//
// ARCHITECTURE:
//
// Single-Writer Loop:
// Run is the only loop. It checks ctx between ticks, never inside one, so a
// tick is always evaluated completely. Graphs, latch and scope are not safe
// for concurrent use and belong to the goroutine calling Run.
//
// Stopping:
// A run stops after the requested number of ticks, on context cancellation,
// when the tick quota is exceeded (TICK_QUOTA), or as soon as the shared
// latch trips (LATCHED). A latched run reports the offending node.
//
// Logical Clock:
// Ticks come from Clock.Next(). Wall-clock time never drives evaluation.
package engine
