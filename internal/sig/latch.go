package sig

import (
	"errors"
	"fmt"
	"log/slog"
)

// Code identifies a latched failure. Zero means no error.
type Code int

const (
	// NoSelf indicates the evaluated node reference was missing or unknown.
	NoSelf Code = -1

	// NoConfig indicates a node that needs a parameter block has none.
	NoConfig Code = -2

	// NWindow indicates the tick fell outside a window that was declared strict.
	NWindow Code = -3
)

// String returns the symbolic name of the code.
func (c Code) String() string {
	switch c {
	case 0:
		return "OK"
	case NoSelf:
		return "NO_SELF"
	case NoConfig:
		return "NO_CONFIG"
	case NWindow:
		return "N_WINDOW"
	default:
		return fmt.Sprintf("CODE(%d)", int(c))
	}
}

// MarshalText encodes the code by name.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a code name produced by MarshalText.
func (c *Code) UnmarshalText(text []byte) error {
	code, ok := ParseCode(string(text))
	if !ok {
		return fmt.Errorf("unknown latch code %q", text)
	}
	*c = code
	return nil
}

// ParseCode returns the code named s.
func ParseCode(s string) (Code, bool) {
	for _, c := range []Code{0, NoSelf, NoConfig, NWindow} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// Latch is the sticky error state of an evaluation context.
//
// Once tripped, every evaluator returns zero without touching its state
// until Clear is called. The latch is neither re-entrant nor scoped to a
// single evaluation: one failure freezes the whole context.
//
// Thread-safety: none. A latch belongs to the goroutine driving the graphs.
type Latch struct {
	code  Code
	node  any
	name  string
	names bool
}

// NewLatch creates a cleared latch. When names is true the offending node's
// name is recorded on failure.
func NewLatch(names bool) *Latch {
	return &Latch{names: names}
}

// Tripped reports whether a failure is latched.
func (l *Latch) Tripped() bool {
	return l.code != 0
}

// Code returns the latched code, zero when clear.
func (l *Latch) Code() Code {
	return l.code
}

// Node returns the offending node (a *Node[T]) or nil.
func (l *Latch) Node() any {
	return l.node
}

// Name returns the offending node's name, empty when names are disabled.
func (l *Latch) Name() string {
	return l.name
}

// Fail latches code for node. Callers return zero immediately afterwards.
// A second failure while tripped is ignored so the first cause is kept.
func (l *Latch) Fail(code Code, node any, name string) {
	if l.code != 0 {
		return
	}
	l.code = code
	l.node = node
	if l.names {
		l.name = name
	}
	slog.Warn("signal latch tripped", "code", code.String(), "node", l.name)
}

// Clear resets the latch. Only the owning application calls this, after
// correcting the condition that tripped it.
func (l *Latch) Clear() {
	l.code = 0
	l.node = nil
	l.name = ""
}

// Err returns the latched failure as a *Fault, or nil when clear.
func (l *Latch) Err() error {
	if f := l.Fault(); f != nil {
		return f
	}
	return nil
}

// Fault returns the latched failure, or nil when clear.
func (l *Latch) Fault() *Fault {
	if l.code == 0 {
		return nil
	}
	return &Fault{Code: l.code, Node: l.name}
}

// Fault is the error form of a latched failure.
type Fault struct {
	Code Code   `json:"code"`
	Node string `json:"node,omitempty"`
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Node != "" {
		return fmt.Sprintf("%s: signal evaluation latched (node=%s)", f.Code, f.Node)
	}
	return fmt.Sprintf("%s: signal evaluation latched", f.Code)
}

// IsNoSelf returns true if err is a NO_SELF fault.
func IsNoSelf(err error) bool { return hasCode(err, NoSelf) }

// IsNoConfig returns true if err is a NO_CONFIG fault.
func IsNoConfig(err error) bool { return hasCode(err, NoConfig) }

// IsNWindow returns true if err is a N_WINDOW fault.
func IsNWindow(err error) bool { return hasCode(err, NWindow) }

func hasCode(err error, code Code) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code == code
	}
	return false
}
