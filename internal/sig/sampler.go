package sig

// Sampler is a zero-order hold: on a new tick it copies the node's variable
// into the memoized constant, and repeats that value for the rest of the tick.
type Sampler[T Scalar] struct {
	memo
}

// Evaluate implements Evaluator.
func (p *Sampler[T]) Evaluate(g *Graph[T], self *Node[T], n Tick) T {
	if !g.guard(self, p != nil) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}
	if self.Var == nil {
		return g.fail(NoConfig, self)
	}
	self.Const = *self.Var
	p.mark(n)
	return self.Const
}

// Upstream implements Evaluator.
func (p *Sampler[T]) Upstream() []Ref { return nil }
