package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chmousset/siglib/internal/dataset"
	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
)

// Built holds the runtime objects of a session. Both graphs share Latch.
type Built struct {
	Latch  *sig.Latch
	Floats *sig.Graph[float32]
	Ints   *sig.Graph[int32]
	Scope  *scope.Scope

	FloatRoots []sig.Ref
	IntRoots   []sig.Ref

	// FloatVars and IntVars are the variables of sampler nodes, by node name.
	// The application writes them between ticks.
	FloatVars map[string]*float32
	IntVars   map[string]*int32

	maxTicks int
}

// LoadData reads the session's dataset, or returns nil without one.
func (s *Session) LoadData() (*dataset.Table, error) {
	path := s.DataPath()
	if path == "" {
		return nil, nil
	}
	return dataset.Load(path)
}

// Build creates the graphs, resolves node references, validates the graphs
// and sets up the scope. table may be nil when no buffer node reads a column.
func (s *Session) Build(table *dataset.Table) (*Built, error) {
	latch := sig.NewLatch(true)
	b := &Built{
		Latch:     latch,
		Floats:    sig.NewGraph[float32](latch),
		Ints:      sig.NewGraph[int32](latch),
		FloatVars: make(map[string]*float32),
		IntVars:   make(map[string]*int32),
		maxTicks:  s.MaxTicks,
	}

	floatNodes := declare(b.Floats, s.Floats)
	intNodes := declare(b.Ints, s.Ints)

	var errs []error
	for i, spec := range s.Floats {
		if err := b.wireFloat(floatNodes[i], spec, table); err != nil {
			errs = append(errs, fmt.Errorf("float_nodes[%d] %q: %w", i, spec.Name, err))
		}
	}
	for i, spec := range s.Ints {
		if err := b.wireInt(intNodes[i], spec, table); err != nil {
			errs = append(errs, fmt.Errorf("int_nodes[%d] %q: %w", i, spec.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := b.Ints.Validate(); err != nil {
		return nil, fmt.Errorf("int graph: %w", err)
	}
	if err := b.Floats.Validate(); err != nil {
		return nil, fmt.Errorf("float graph: %w", err)
	}

	for _, name := range s.Roots {
		iref, inInts := b.Ints.Lookup(name)
		fref, inFloats := b.Floats.Lookup(name)
		if !inInts && !inFloats {
			return nil, fmt.Errorf("root %q: unknown node", name)
		}
		if inInts {
			b.IntRoots = append(b.IntRoots, iref)
		}
		if inFloats {
			b.FloatRoots = append(b.FloatRoots, fref)
		}
	}

	if s.Scope != nil {
		b.Scope = b.buildScope(s.Scope)
	}

	slog.Debug("session built",
		"session", s.Name,
		"float_nodes", b.Floats.Len(),
		"int_nodes", b.Ints.Len(),
		"roots", len(s.Roots),
	)
	return b, nil
}

// Engine creates an engine over the built graphs with the session's roots
// and tick quota. opts are applied last.
func (b *Built) Engine(opts ...engine.EngineOption) *engine.Engine {
	base := []engine.EngineOption{
		engine.WithFloatRoots(b.FloatRoots...),
		engine.WithIntRoots(b.IntRoots...),
	}
	if b.maxTicks > 0 {
		base = append(base, engine.WithMaxTicks(b.maxTicks))
	}
	return engine.New(b.Floats, b.Ints, b.Scope, append(base, opts...)...)
}

func (b *Built) buildScope(spec *ScopeSpec) *scope.Scope {
	sc := scope.New(make([]byte, spec.Buffer),
		scope.WithInts(b.Ints),
		scope.WithFloats(b.Floats),
		scope.WithNames(spec.NamesEnabled()),
	)

	if spec.NamesEnabled() {
		for _, ref := range b.Ints.Refs() {
			if sc.EnlistInt(ref) == scope.Full {
				slog.Warn("scope registry full", "kind", scope.KindInt, "node", b.Ints.Node(ref).Name)
				break
			}
		}
		for _, ref := range b.Floats.Refs() {
			if sc.EnlistFloat(ref) == scope.Full {
				slog.Warn("scope registry full", "kind", scope.KindFloat, "node", b.Floats.Node(ref).Name)
				break
			}
		}
	} else {
		for _, name := range strings.Split(spec.Signals, ",") {
			if ref, ok := b.Ints.Lookup(name); ok {
				sc.AddInt(ref)
			}
			if ref, ok := b.Floats.Lookup(name); ok {
				sc.AddFloat(ref)
			}
		}
	}

	sc.Setup(spec.Signals, spec.Prediv)
	return sc
}

func declare[T sig.Scalar](g *sig.Graph[T], specs []NodeSpec) []*sig.Node[T] {
	nodes := make([]*sig.Node[T], len(specs))
	for i, spec := range specs {
		nodes[i] = &sig.Node[T]{Name: spec.Name}
		g.Add(nodes[i])
	}
	return nodes
}

func (b *Built) wireFloat(node *sig.Node[float32], spec NodeSpec, table *dataset.Table) error {
	g := b.Floats
	switch spec.Kind {
	case KindIIR:
		src, err := lookup(g, spec.Source)
		if err != nil {
			return err
		}
		node.Eval = sig.NewIIR(float32(spec.Alpha), src)

	case KindFIR:
		src, err := lookup(g, spec.Source)
		if err != nil {
			return err
		}
		taps := convert[float32](spec.Taps)
		node.Eval = sig.NewFIR(taps, make([]float32, max(spec.History, len(taps))), src)

	case KindPID:
		return b.wirePID(node, spec)

	case KindLinearF:
		node.Eval = &sig.LinearInterpF{A: float32(spec.Slope), B: float32(spec.Intercept), Delay: sig.Tick(spec.Delay)}

	default:
		return wireCommon(g, node, spec, table, b.FloatVars)
	}
	return nil
}

func (b *Built) wirePID(node *sig.Node[float32], spec NodeSpec) error {
	g := b.Floats
	setpoint, err := lookup(g, spec.Setpoint)
	if err != nil {
		return fmt.Errorf("setpoint: %w", err)
	}
	feedback, err := lookup(g, spec.Feedback)
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}

	pid := &sig.PID{
		P:         float32(spec.P),
		I:         float32(spec.I),
		D:         float32(spec.D),
		MaxOutput: float32(spec.Max),
		Setpoint:  setpoint,
		Feedback:  feedback,
	}
	if spec.Form == "optimized" {
		pid.Form = sig.PIDOptimized
	}
	if ff := spec.FeedForward; ff != nil {
		pid.FeedForward = &sig.FeedForward{}
		for i, gain := range ff.Gains {
			pid.FeedForward.Gains[i] = float32(gain)
		}
		if ff.Source != "" {
			src, err := lookup(g, ff.Source)
			if err != nil {
				return fmt.Errorf("feedforward source: %w", err)
			}
			pid.FeedForward.Source = sig.NodeOperand[float32](src)
		}
	}
	pid.ComputeK()
	node.Eval = pid
	return nil
}

func (b *Built) wireInt(node *sig.Node[int32], spec NodeSpec, table *dataset.Table) error {
	switch spec.Kind {
	case KindLinear:
		node.Eval = &sig.LinearInterp{
			A:     int32(spec.Slope),
			B:     int32(spec.Intercept),
			Delay: sig.Tick(spec.Delay),
			Div:   spec.Div,
		}
	case KindStepInterp:
		node.Eval = &sig.StepInterp{}
	default:
		return wireCommon(b.Ints, node, spec, table, b.IntVars)
	}
	return nil
}

// wireCommon handles the kinds both graphs support.
func wireCommon[T sig.Scalar](g *sig.Graph[T], node *sig.Node[T], spec NodeSpec, table *dataset.Table, vars map[string]*T) error {
	switch spec.Kind {
	case KindConst:
		node.Const = T(spec.Value)

	case KindSampler:
		v := T(spec.Value)
		node.Var = &v
		node.Eval = &sig.Sampler[T]{}
		vars[spec.Name] = &v

	case KindAdder:
		var ops [2]sig.Operand[T]
		for i, op := range spec.Operands {
			switch {
			case op.Node != "":
				ref, err := lookup(g, op.Node)
				if err != nil {
					return fmt.Errorf("operand %d: %w", i, err)
				}
				ops[i] = sig.NodeOperand[T](ref)
			case op.Const != nil:
				ops[i] = sig.ConstOperand(T(*op.Const))
			}
		}
		node.Eval = &sig.Adder[T]{A: ops[0], B: ops[1]}

	case KindStep:
		node.Eval = &sig.Step[T]{
			Window:   sig.Window{Min: sig.Tick(spec.Window.Min), Max: sig.Tick(spec.Window.Max)},
			Active:   T(spec.Active),
			Inactive: T(spec.Inactive),
			Strict:   spec.Strict,
		}

	case KindBuffer:
		values := spec.Values
		if spec.Column != "" {
			if table == nil {
				return fmt.Errorf("column %q needs a data file", spec.Column)
			}
			col, ok := table.Column(spec.Column)
			if !ok {
				return fmt.Errorf("unknown data column %q", spec.Column)
			}
			values = col
		}
		node.Eval = &sig.BufferReader[T]{
			Buffer:      convert[T](values),
			Size:        spec.Size,
			Delta:       spec.Delta,
			Circular:    spec.Circular,
			CheckBuffer: spec.CheckBuffer,
		}

	default:
		return fmt.Errorf("unsupported kind %q", spec.Kind)
	}
	return nil
}

// lookup resolves a node name. An empty name is the zero Ref.
func lookup[T sig.Scalar](g *sig.Graph[T], name string) (sig.Ref, error) {
	if name == "" {
		return 0, nil
	}
	ref, ok := g.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("unknown node %q", name)
	}
	return ref, nil
}

func convert[T sig.Scalar](values []float64) []T {
	if values == nil {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}
