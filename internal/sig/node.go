package sig

// Tick is the discrete time index n at which a graph is evaluated.
type Tick uint32

// Scalar is the set of value kinds a signal can carry. Both are 4 bytes wide.
type Scalar interface {
	~int32 | ~float32
}

// Ref is an opaque handle to a node registered in a Graph.
// The zero value means "no reference".
type Ref uint32

// Valid reports whether r refers to a node (it may still be unknown to a graph).
func (r Ref) Valid() bool {
	return r != 0
}

// Evaluator computes a node's value for tick n. The concrete type is the
// node kind's parameter block; a nil block pointer means the node is missing
// its configuration and fails with NoConfig.
//
// Implementations must check the latch first, return the memoized value when
// asked twice for the same tick, and store their result in self.Const.
type Evaluator[T Scalar] interface {
	Evaluate(g *Graph[T], self *Node[T], n Tick) T

	// Upstream lists the nodes this block reads, for graph validation.
	Upstream() []Ref
}

// Node is one scalar signal.
//
// Resolution order is Eval > Var > Const. For evaluator-backed nodes Const
// doubles as the memoized last computed value.
type Node[T Scalar] struct {
	Name  string
	Eval  Evaluator[T]
	Var   *T
	Const T
}

// Operand is a value source resolvable as node > variable > constant.
type Operand[T Scalar] struct {
	Node  Ref
	Var   *T
	Const T
}

// NodeOperand reads an upstream node.
func NodeOperand[T Scalar](ref Ref) Operand[T] { return Operand[T]{Node: ref} }

// VarOperand reads an externally-owned variable.
func VarOperand[T Scalar](v *T) Operand[T] { return Operand[T]{Var: v} }

// ConstOperand is a literal.
func ConstOperand[T Scalar](c T) Operand[T] { return Operand[T]{Const: c} }

// Result is the outcome of a top-level evaluation. A poisoned result carries
// the latched fault and a zero value.
type Result[T Scalar] struct {
	Value T
	Fault *Fault
}

// Poisoned reports whether the evaluation context was latched.
func (r Result[T]) Poisoned() bool {
	return r.Fault != nil
}

// Err returns the latched fault or nil.
func (r Result[T]) Err() error {
	if r.Fault == nil {
		return nil
	}
	return r.Fault
}

// memo records the tick a block was last evaluated at. An unprimed memo
// never matches, so tick 0 is computed on first use.
type memo struct {
	last   Tick
	primed bool
}

func (m *memo) fresh(n Tick) bool {
	return m.primed && m.last == n
}

func (m *memo) mark(n Tick) {
	m.last = n
	m.primed = true
}

// Forget clears the memo so the next evaluation recomputes.
func (m *memo) Forget() {
	m.primed = false
}
