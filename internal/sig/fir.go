package sig

// FIR is an N-tap finite impulse response filter over the Source node.
//
// History is caller-owned storage for the last len(Taps) samples and is used
// as a circular buffer. Taps come from an external design tool; no stability
// or normalisation check is made.
type FIR struct {
	memo
	Taps    []float32
	History []float32
	Source  Ref

	next int // slot the next sample is written to
}

// NewFIR returns a FIR block over taps with zeroed history storage.
func NewFIR(taps []float32, history []float32, source Ref) *FIR {
	return &FIR{Taps: taps, History: history, Source: source}
}

// Evaluate implements Evaluator.
//
// The new sample is written at the write slot, the slot advances and wraps,
// then y[n] = Σ taps[i]·x[n−i] is computed walking the history backwards from
// the slot just written.
func (p *FIR) Evaluate(g *Graph[float32], self *Node[float32], n Tick) float32 {
	if !g.guard(self, p != nil && len(p.Taps) > 0 && len(p.History) >= len(p.Taps)) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}

	x := g.Get(p.Source, n)
	if g.latch.Tripped() {
		return 0
	}

	count := len(p.Taps)
	written := p.next % count
	p.History[written] = x
	p.next = (written + 1) % count

	var y float32
	idx := written
	for i := 0; i < count; i++ {
		y += p.Taps[i] * p.History[idx]
		if idx == 0 {
			idx = count - 1
		} else {
			idx--
		}
	}

	self.Const = y
	p.mark(n)
	return y
}

// Upstream implements Evaluator.
func (p *FIR) Upstream() []Ref {
	if p == nil {
		return nil
	}
	return []Ref{p.Source}
}
