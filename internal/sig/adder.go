package sig

// Adder returns A + B. Each operand resolves as node, variable or constant.
type Adder[T Scalar] struct {
	memo
	A Operand[T]
	B Operand[T]
}

// Evaluate implements Evaluator. A failure while resolving A prevents B from
// being resolved.
func (p *Adder[T]) Evaluate(g *Graph[T], self *Node[T], n Tick) T {
	if !g.guard(self, p != nil) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}

	a := g.Resolve(p.A, n)
	if g.latch.Tripped() {
		return 0
	}
	b := g.Resolve(p.B, n)
	if g.latch.Tripped() {
		return 0
	}

	self.Const = a + b
	p.mark(n)
	return self.Const
}

// Upstream implements Evaluator.
func (p *Adder[T]) Upstream() []Ref {
	if p == nil {
		return nil
	}
	return operandRefs(p.A, p.B)
}

func operandRefs[T Scalar](ops ...Operand[T]) []Ref {
	var refs []Ref
	for _, op := range ops {
		if op.Node.Valid() {
			refs = append(refs, op.Node)
		}
	}
	return refs
}
