package sig

// Window is a tick range. When Min > Max the window wraps around the end of
// the tick range and covers [Min, MaxUint32] ∪ [0, Max].
type Window struct {
	Min Tick
	Max Tick
}

// Contains reports whether n is inside the window.
func (w Window) Contains(n Tick) bool {
	if w.Min > w.Max {
		return n >= w.Min || n <= w.Max
	}
	return n >= w.Min && n <= w.Max
}

// Step outputs Active inside Window and Inactive outside of it.
//
// A window miss is a normal outcome. Only a Strict step treats it as a
// failure and latches N_WINDOW.
type Step[T Scalar] struct {
	Window   Window
	Active   T
	Inactive T
	Strict   bool
}

// Evaluate implements Evaluator.
func (p *Step[T]) Evaluate(g *Graph[T], self *Node[T], n Tick) T {
	if !g.guard(self, p != nil) {
		return 0
	}
	if p.Window.Contains(n) {
		self.Const = p.Active
		return p.Active
	}
	if p.Strict {
		return g.fail(NWindow, self)
	}
	self.Const = p.Inactive
	return p.Inactive
}

// Upstream implements Evaluator.
func (p *Step[T]) Upstream() []Ref { return nil }
