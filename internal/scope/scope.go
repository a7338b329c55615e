package scope

import (
	"encoding/binary"
	"log/slog"
	"math"

	"github.com/chmousset/siglib/internal/sig"
)

const (
	// MaxSignals bounds the active channels per value kind.
	MaxSignals = 16

	// MaxKnown bounds the known registry per value kind.
	MaxKnown = 64

	// Full is returned by registration calls that could not add the signal.
	Full = -1

	// ScalarWidth is the byte width of every captured value.
	ScalarWidth = 4
)

// State is the scope lifecycle state.
type State int

const (
	Init State = iota
	Ready
	Sampling
	Sampled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Init:
		return "INIT"
	case Ready:
		return "READY"
	case Sampling:
		return "SAMPLING"
	case Sampled:
		return "SAMPLED"
	default:
		return "UNKNOWN"
	}
}

// Option configures the capabilities of a Scope at construction time.
type Option func(*Scope)

// WithInts enables integer channels read from g.
func WithInts(g *sig.Graph[int32]) Option {
	return func(s *Scope) {
		s.ints = g
	}
}

// WithFloats enables float channels read from g.
func WithFloats(g *sig.Graph[float32]) Option {
	return func(s *Scope) {
		s.floats = g
	}
}

// WithNames toggles name-based selection in Setup. Enabled by default.
func WithNames(enabled bool) Option {
	return func(s *Scope) {
		s.names = enabled
	}
}

// WithByteOrder sets the byte order of captured values.
// Default: binary.NativeEndian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(s *Scope) {
		s.order = order
	}
}

// Scope is a capture context bound to one buffer.
//
// Thread-safety: none. Drive it from the goroutine that evaluates the graphs.
type Scope struct {
	ints   *sig.Graph[int32]
	floats *sig.Graph[float32]
	names  bool
	order  binary.ByteOrder

	knownInts    []sig.Ref
	knownFloats  []sig.Ref
	activeInts   []sig.Ref
	activeFloats []sig.Ref

	// rowInts and rowFloats are the channel layout of the current capture,
	// fixed when sampling starts.
	rowInts   []sig.Ref
	rowFloats []sig.Ref

	buf     []byte
	cursor  int
	depth   int
	samples int
	prediv  int
	count   int
	state   State
}

// New binds buf to a new scope in the Init state with a divisor of 1.
func New(buf []byte, opts ...Option) *Scope {
	s := &Scope{
		names:        true,
		order:        binary.NativeEndian,
		knownInts:    make([]sig.Ref, 0, MaxKnown),
		knownFloats:  make([]sig.Ref, 0, MaxKnown),
		activeInts:   make([]sig.Ref, 0, MaxSignals),
		activeFloats: make([]sig.Ref, 0, MaxSignals),
		rowInts:      make([]sig.Ref, 0, MaxSignals),
		rowFloats:    make([]sig.Ref, 0, MaxSignals),
		buf:          buf,
		prediv:       1,
		state:        Init,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.depth = s.MaxSamples()
	return s
}

// State returns the lifecycle state.
func (s *Scope) State() State { return s.state }

// Samples returns the number of complete rows captured.
func (s *Scope) Samples() int { return s.samples }

// Prediv returns the under-sampling divisor.
func (s *Scope) Prediv() int { return s.prediv }

// Capturing reports whether a capture has started since the last Setup.
func (s *Scope) Capturing() bool {
	return s.state == Sampling || s.state == Sampled
}

// Depth returns the sample depth derived at the last Setup or registration.
func (s *Scope) Depth() int { return s.depth }

// Bytes returns the written part of the buffer.
func (s *Scope) Bytes() []byte { return s.buf[:s.cursor] }

// RowWidth returns the byte width of one captured row.
func (s *Scope) RowWidth() int {
	width := 0
	if s.ints != nil {
		width += len(s.activeInts) * ScalarWidth
	}
	if s.floats != nil {
		width += len(s.activeFloats) * ScalarWidth
	}
	return width
}

// MaxSamples returns how many rows fit in the buffer. With no active channel
// the width is taken as 1 byte and the depth equals the buffer size.
func (s *Scope) MaxSamples() int {
	width := s.RowWidth()
	if width == 0 {
		width = 1
	}
	return len(s.buf) / width
}

// Setup disables the scope, sets the divisor and, when names are enabled,
// rebuilds the active channels from the comma-separated names in the order
// given. Unknown names are skipped. The previous capture is discarded and
// the scope is left Ready.
func (s *Scope) Setup(names string, prediv int) {
	s.state = Init
	s.prediv = max(1, prediv)
	s.count = 0
	s.cursor = 0
	s.samples = 0
	s.rowInts = s.rowInts[:0]
	s.rowFloats = s.rowFloats[:0]

	if s.names {
		if s.ints != nil {
			s.activeInts = selectByName(s.activeInts[:0], s.knownInts, names, s.ints)
		}
		if s.floats != nil {
			s.activeFloats = selectByName(s.activeFloats[:0], s.knownFloats, names, s.floats)
		}
	}

	s.depth = s.MaxSamples()
	s.state = Ready

	slog.Debug("scope ready",
		"ints", len(s.activeInts),
		"floats", len(s.activeFloats),
		"depth", s.depth,
		"prediv", s.prediv,
	)
}

// Update advances the scope by one tick.
func (s *Scope) Update(n sig.Tick) {
	switch s.state {
	case Ready:
		s.state = Sampling
		s.cursor = 0
		s.count = 0
		s.samples = 0
		s.rowInts = s.rowInts[:0]
		s.rowFloats = s.rowFloats[:0]
		if s.ints != nil {
			s.rowInts = append(s.rowInts, s.activeInts...)
		}
		if s.floats != nil {
			s.rowFloats = append(s.rowFloats, s.activeFloats...)
		}
		fallthrough
	case Sampling:
		if s.count == 0 {
			s.sample(n)
		}
		s.count = (s.count + 1) % s.prediv
	}
}

func (s *Scope) sample(n sig.Tick) {
	if s.samples >= s.depth || s.cursor+s.RowWidth() > len(s.buf) {
		s.finish(n)
		return
	}

	if s.ints != nil {
		for _, ref := range s.activeInts {
			s.order.PutUint32(s.buf[s.cursor:], uint32(s.ints.Get(ref, n)))
			s.cursor += ScalarWidth
		}
	}
	if s.floats != nil {
		for _, ref := range s.activeFloats {
			s.order.PutUint32(s.buf[s.cursor:], math.Float32bits(s.floats.Get(ref, n)))
			s.cursor += ScalarWidth
		}
	}
	s.samples++

	if s.samples >= s.depth || s.cursor+s.RowWidth() > len(s.buf) {
		s.finish(n)
	}
}

func (s *Scope) finish(n sig.Tick) {
	s.state = Sampled
	slog.Debug("scope sampled", "tick", n, "samples", s.samples, "bytes", s.cursor)
}
