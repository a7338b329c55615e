package scope

import (
	"math"
	"strconv"

	"github.com/chmousset/siglib/internal/sig"
)

// Kind is the value kind of a captured channel.
type Kind string

const (
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

// Channel describes one column of a captured row.
type Channel struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Row is one decoded capture row.
type Row struct {
	Ints   []int32   `json:"ints,omitempty"`
	Floats []float32 `json:"floats,omitempty"`
}

// Channels returns the columns of a captured row in write order. Before a
// capture starts they are the channels the next capture will use.
func (s *Scope) Channels() []Channel {
	ints, floats := s.layout()
	var out []Channel
	for _, ref := range ints {
		out = append(out, Channel{Name: nodeName(s.ints.Node(ref)), Kind: KindInt})
	}
	for _, ref := range floats {
		out = append(out, Channel{Name: nodeName(s.floats.Node(ref)), Kind: KindFloat})
	}
	return out
}

// Rows decodes the captured rows with the layout they were written with.
func (s *Scope) Rows() []Row {
	if !s.Capturing() {
		return nil
	}
	nInts, nFloats := len(s.rowInts), len(s.rowFloats)
	width := (nInts + nFloats) * ScalarWidth

	rows := make([]Row, 0, s.samples)
	off := 0
	for range s.samples {
		if off+width > s.cursor {
			break
		}
		var row Row
		if nInts > 0 {
			row.Ints = make([]int32, nInts)
			for i := range row.Ints {
				row.Ints[i] = int32(s.order.Uint32(s.buf[off:]))
				off += ScalarWidth
			}
		}
		if nFloats > 0 {
			row.Floats = make([]float32, nFloats)
			for i := range row.Floats {
				row.Floats[i] = math.Float32frombits(s.order.Uint32(s.buf[off:]))
				off += ScalarWidth
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// layout returns the recorded row layout once a capture has started, the
// active selection otherwise.
func (s *Scope) layout() (ints, floats []sig.Ref) {
	if s.Capturing() {
		return s.rowInts, s.rowFloats
	}
	if s.ints != nil {
		ints = s.activeInts
	}
	if s.floats != nil {
		floats = s.activeFloats
	}
	return ints, floats
}

func nodeName[T sig.Scalar](n *sig.Node[T]) string {
	if n == nil {
		return ""
	}
	return n.Name
}

// Values returns the row as one float64 per channel, ints first, in
// channel order.
func (r Row) Values() []float64 {
	out := make([]float64, 0, len(r.Ints)+len(r.Floats))
	for _, v := range r.Ints {
		out = append(out, float64(v))
	}
	for _, v := range r.Floats {
		out = append(out, Widen(v))
	}
	return out
}

// Widen converts f to the float64 with the same shortest decimal form, so
// 0.1 stays 0.1 instead of 0.10000000149011612 once exported.
func Widen(f float32) float64 {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return float64(f)
	}
	v, _ := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	return v
}
