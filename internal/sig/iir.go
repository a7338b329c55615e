package sig

// IIR is a first order low-pass filter: y[n] = y[n-1]·(1−a) + x[n]·a.
// The previous output lives in the node's Const.
type IIR struct {
	memo

	// A is the damping factor, 0 ≤ A ≤ 1.
	A float32

	// OneMinusA is 1 − A, precomputed.
	OneMinusA float32

	Source Ref
}

// NewIIR returns an IIR block with its complement derived from a.
func NewIIR(a float32, source Ref) *IIR {
	return &IIR{A: a, OneMinusA: 1 - a, Source: source}
}

// Evaluate implements Evaluator.
func (p *IIR) Evaluate(g *Graph[float32], self *Node[float32], n Tick) float32 {
	if !g.guard(self, p != nil) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}

	x := g.Get(p.Source, n)
	if g.latch.Tripped() {
		return 0
	}

	self.Const = self.Const*p.OneMinusA + x*p.A
	p.mark(n)
	return self.Const
}

// Upstream implements Evaluator.
func (p *IIR) Upstream() []Ref {
	if p == nil {
		return nil
	}
	return []Ref{p.Source}
}
