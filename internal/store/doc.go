// Package store provides SQLite-backed durable storage for capture runs.
//
// The store keeps, per run:
//   - Runs: the run summary (session, ticks, scope state, latched fault, root values)
//   - Channels: the captured signals in row order
//   - Samples: one value per captured row and channel
//
// # Critical Patterns
//
// Logical Order:
//   - Runs are ordered by seq, assigned at write time, NEVER by timestamps
//   - All list queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Idempotent Writes:
//   - Writing a run whose ID already exists is a no-op
//
// Canonical Roots:
//   - Root values are stored as RFC 8785 canonical JSON
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
