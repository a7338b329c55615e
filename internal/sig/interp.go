package sig

// LinearInterp outputs (A·(n − Delay) + B) / Div using 64-bit intermediates.
type LinearInterp struct {
	A     int32
	B     int32
	Delay Tick
	Div   int32
}

// Evaluate implements Evaluator. A zero divisor is a configuration error.
func (p *LinearInterp) Evaluate(g *Graph[int32], self *Node[int32], n Tick) int32 {
	if !g.guard(self, p != nil && p.Div != 0) {
		return 0
	}
	x := int64(n) - int64(p.Delay)
	self.Const = int32((int64(p.A)*x + int64(p.B)) / int64(p.Div))
	return self.Const
}

// Upstream implements Evaluator.
func (p *LinearInterp) Upstream() []Ref { return nil }

// LinearInterpF is the floating-point linear interpolation kind. Its
// semantics are not defined yet: it always evaluates to zero.
type LinearInterpF struct {
	A     float32
	B     float32
	Delay Tick
}

// Evaluate implements Evaluator.
func (p *LinearInterpF) Evaluate(g *Graph[float32], self *Node[float32], n Tick) float32 {
	return 0
}

// Upstream implements Evaluator.
func (p *LinearInterpF) Upstream() []Ref { return nil }

// StepInterp is the integer step interpolation kind. Its semantics are not
// defined yet: it always evaluates to zero.
type StepInterp struct{}

// Evaluate implements Evaluator.
func (p *StepInterp) Evaluate(g *Graph[int32], self *Node[int32], n Tick) int32 {
	return 0
}

// Upstream implements Evaluator.
func (p *StepInterp) Upstream() []Ref { return nil }
