package sig

// BufferReader outputs Buffer[n + Delta].
//
// When Circular is set the index wraps modulo Size; otherwise it sticks at
// Size−1 once exceeded (and at 0 below the start). Size defaults to
// len(Buffer) and never exceeds it.
//
// An unset buffer yields zero, or latches NO_CONFIG when CheckBuffer is set.
type BufferReader[T Scalar] struct {
	memo
	Buffer      []T
	Size        int
	Delta       int
	Circular    bool
	CheckBuffer bool
}

// Evaluate implements Evaluator.
func (p *BufferReader[T]) Evaluate(g *Graph[T], self *Node[T], n Tick) T {
	if !g.guard(self, p != nil) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}

	size := p.size()
	if size == 0 {
		if p.CheckBuffer {
			return g.fail(NoConfig, self)
		}
		return 0
	}

	idx := int64(n) + int64(p.Delta)
	if p.Circular {
		idx %= int64(size)
		if idx < 0 {
			idx += int64(size)
		}
	} else if idx >= int64(size) {
		idx = int64(size) - 1
	} else if idx < 0 {
		idx = 0
	}

	self.Const = p.Buffer[idx]
	p.mark(n)
	return self.Const
}

func (p *BufferReader[T]) size() int {
	if p.Size <= 0 || p.Size > len(p.Buffer) {
		return len(p.Buffer)
	}
	return p.Size
}

// Upstream implements Evaluator.
func (p *BufferReader[T]) Upstream() []Ref { return nil }
