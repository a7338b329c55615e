// Package sig implements the signal graph: scalar nodes that are re-evaluated
// once per discrete tick and composed through kind-specific parameter blocks.
//
// ARCHITECTURE:
//
// Arena of nodes:
// Nodes are registered into a Graph and addressed by an opaque Ref handle.
// Parameter blocks reference upstream nodes by Ref, never by pointer, so a
// graph can be validated for cycles before the control loop starts.
//
// Value resolution:
// Every read goes through the same path regardless of node kind:
//  1. latch tripped → 0
//  2. evaluator present → evaluator result (memoized per tick)
//  3. variable present → dereferenced variable
//  4. constant
//
// Any node may therefore stand in for any operand.
//
// Error latch:
// A Latch is shared by every graph of one evaluation context. The first
// structural failure (missing node, missing parameter block, strict window
// miss) trips it, and every later evaluation returns zero until the
// application calls Clear. Zero is the safe actuator command.
//
// Nothing in this package allocates during evaluation and nothing is
// synchronized: a Graph and its Latch belong to a single evaluating goroutine.
package sig
