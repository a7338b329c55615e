package sig

// Graph is an arena of nodes of one scalar kind.
//
// Nodes and their parameter blocks are owned by the caller and registered
// once before the loop starts; the graph only indexes them. Graphs that belong
// to the same evaluation context share one Latch.
//
// Thread-safety: none. Evaluate from a single goroutine.
type Graph[T Scalar] struct {
	latch  *Latch
	nodes  []*Node[T]
	byName map[string]Ref
}

// NewGraph creates an empty graph bound to latch. A nil latch gets a private
// one with names enabled.
func NewGraph[T Scalar](latch *Latch) *Graph[T] {
	if latch == nil {
		latch = NewLatch(true)
	}
	return &Graph[T]{
		latch:  latch,
		byName: make(map[string]Ref),
	}
}

// Latch returns the latch shared by this graph's evaluation context.
func (g *Graph[T]) Latch() *Latch {
	return g.latch
}

// Add registers node and returns its handle. Named nodes become reachable
// through Lookup; a later node with the same name shadows the earlier one.
func (g *Graph[T]) Add(node *Node[T]) Ref {
	g.nodes = append(g.nodes, node)
	ref := Ref(len(g.nodes))
	if node != nil && node.Name != "" {
		g.byName[node.Name] = ref
	}
	return ref
}

// Node returns the node behind ref, or nil for an unknown handle.
func (g *Graph[T]) Node(ref Ref) *Node[T] {
	if ref == 0 || int(ref) > len(g.nodes) {
		return nil
	}
	return g.nodes[ref-1]
}

// Lookup finds a node by debug name.
func (g *Graph[T]) Lookup(name string) (Ref, bool) {
	ref, ok := g.byName[name]
	return ref, ok
}

// Len returns the number of registered nodes.
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// Refs returns every registered handle in registration order.
func (g *Graph[T]) Refs() []Ref {
	refs := make([]Ref, len(g.nodes))
	for i := range g.nodes {
		refs[i] = Ref(i + 1)
	}
	return refs
}

// Get is the uniform read path: latch, then evaluator, variable, constant.
func (g *Graph[T]) Get(ref Ref, n Tick) T {
	if g.latch.Tripped() {
		return 0
	}
	node := g.Node(ref)
	if node == nil {
		g.latch.Fail(NoSelf, nil, "")
		return 0
	}
	if node.Eval != nil {
		return node.Eval.Evaluate(g, node, n)
	}
	if node.Var != nil {
		return *node.Var
	}
	return node.Const
}

// Value evaluates ref at tick n and reports whether the context is latched.
func (g *Graph[T]) Value(ref Ref, n Tick) Result[T] {
	v := g.Get(ref, n)
	if g.latch.Tripped() {
		return Result[T]{Fault: &Fault{Code: g.latch.Code(), Node: g.latch.Name()}}
	}
	return Result[T]{Value: v}
}

// Resolve reads an operand with node > variable > constant priority.
func (g *Graph[T]) Resolve(op Operand[T], n Tick) T {
	switch {
	case op.Node.Valid():
		return g.Get(op.Node, n)
	case op.Var != nil:
		return *op.Var
	default:
		return op.Const
	}
}

// fail latches code against self and returns the zero value.
func (g *Graph[T]) fail(code Code, self *Node[T]) T {
	name := ""
	if self != nil {
		name = self.Name
	}
	g.latch.Fail(code, self, name)
	return 0
}

// guard performs the checks every evaluator starts with: the latch, the
// self reference and the presence of a parameter block. It returns false when
// the evaluator must return zero.
func (g *Graph[T]) guard(self *Node[T], hasParams bool) bool {
	if g.latch.Tripped() {
		return false
	}
	if self == nil {
		g.fail(NoSelf, nil)
		return false
	}
	if !hasParams {
		g.fail(NoConfig, self)
		return false
	}
	return true
}
