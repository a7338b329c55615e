package sig

// PIDForm selects how a PID block computes its output.
type PIDForm int

const (
	// PIDNaive computes P, I and D terms from the raw gains every tick, with
	// the integral clamped to ±MaxOutput (anti-windup). Gains may change on
	// the fly.
	PIDNaive PIDForm = iota

	// PIDOptimized computes the velocity form u[n] = u[n−1] + K·e over the
	// 3-sample error history. K must be derived with ComputeK before first use
	// and after every gain change. Only the output clamp applies.
	PIDOptimized
)

// String returns the form's configuration name.
func (f PIDForm) String() string {
	if f == PIDOptimized {
		return "optimized"
	}
	return "naive"
}

// PID is a discrete PID controller.
//
// The controller is not aware of the tick period, so I and D are per-tick
// gains: with sample period dt the continuous gains are I/dt and D·dt.
type PID struct {
	memo
	Form PIDForm

	P float32
	I float32
	D float32

	// K are the optimized-form coefficients: P+I+D, −P−2D, D.
	K [3]float32

	// MaxOutput bounds the output (and the naive integral) to ±MaxOutput.
	MaxOutput float32

	// Integral is the naive-form accumulator.
	Integral float32

	// History holds e[n], e[n−1], e[n−2].
	History [3]float32

	// Setpoint is the target. Without Feedback it is used as the error itself.
	Setpoint Ref
	Feedback Ref

	FeedForward *FeedForward

	acc float32 // optimized-form output before feed-forward
}

// FeedForward adds g0·x[n] + g1·x[n−1] + g2·x[n−2] to the controller output.
// Source defaults to the setpoint when it names neither a node nor a variable.
type FeedForward struct {
	Gains   [3]float32
	Source  Operand[float32]
	History [2]float32
}

func (f *FeedForward) usesSetpoint() bool {
	return !f.Source.Node.Valid() && f.Source.Var == nil
}

func (f *FeedForward) term(x float32) float32 {
	t := f.Gains[0]*x + f.Gains[1]*f.History[0] + f.Gains[2]*f.History[1]
	f.History[1] = f.History[0]
	f.History[0] = x
	return t
}

// ComputeK derives the optimized-form coefficients from P, I and D.
func (p *PID) ComputeK() {
	p.K[0] = p.P + p.I + p.D
	p.K[1] = -p.P - 2*p.D
	p.K[2] = p.D
}

// Reset clears the controller state but keeps gains and wiring.
func (p *PID) Reset() {
	p.Forget()
	p.Integral = 0
	p.History = [3]float32{}
	p.acc = 0
	if p.FeedForward != nil {
		p.FeedForward.History = [2]float32{}
	}
}

// Evaluate implements Evaluator.
func (p *PID) Evaluate(g *Graph[float32], self *Node[float32], n Tick) float32 {
	if !g.guard(self, p != nil && p.Setpoint.Valid()) {
		return 0
	}
	if p.fresh(n) {
		return self.Const
	}

	setpoint := g.Get(p.Setpoint, n)
	e := setpoint
	if p.Feedback.Valid() {
		e -= g.Get(p.Feedback, n)
	}
	var ff float32
	if p.FeedForward != nil {
		x := setpoint
		if !p.FeedForward.usesSetpoint() {
			x = g.Resolve(p.FeedForward.Source, n)
		}
		ff = p.FeedForward.term(x)
	}
	if g.latch.Tripped() {
		return 0
	}

	p.History[2] = p.History[1]
	p.History[1] = p.History[0]
	p.History[0] = e

	var out float32
	switch p.Form {
	case PIDOptimized:
		p.acc += p.History[0]*p.K[0] + p.History[1]*p.K[1] + p.History[2]*p.K[2]
		p.acc = clamp(p.acc, p.MaxOutput)
		out = p.acc + ff
	default:
		p.Integral = clamp(p.Integral+p.History[0]*p.I, p.MaxOutput)
		out = p.History[0]*p.P + p.Integral + (p.History[0]-p.History[1])*p.D + ff
	}

	self.Const = clamp(out, p.MaxOutput)
	p.mark(n)
	return self.Const
}

// Upstream implements Evaluator.
func (p *PID) Upstream() []Ref {
	if p == nil {
		return nil
	}
	refs := []Ref{p.Setpoint}
	if p.Feedback.Valid() {
		refs = append(refs, p.Feedback)
	}
	if p.FeedForward != nil && p.FeedForward.Source.Node.Valid() {
		refs = append(refs, p.FeedForward.Source.Node)
	}
	return refs
}

func clamp(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
