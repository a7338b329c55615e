package harness

import (
	"github.com/chmousset/siglib/internal/canonical"
	"github.com/chmousset/siglib/internal/engine"
	"github.com/chmousset/siglib/internal/scope"
	"github.com/chmousset/siglib/internal/sig"
	"github.com/chmousset/siglib/internal/store"
)

// Snapshot is the comparable outcome of one run.
type Snapshot struct {
	Session    string             `json:"session"`
	RunID      string             `json:"run_id"`
	Start      sig.Tick           `json:"start"`
	Ticks      int                `json:"ticks"`
	ScopeState string             `json:"scope_state,omitempty"`
	Samples    int                `json:"samples"`
	Prediv     int                `json:"prediv,omitempty"`
	Channels   []scope.Channel    `json:"channels"`
	Rows       [][]float64        `json:"rows"`
	Roots      []engine.RootValue `json:"roots"`
	Fault      *sig.Fault         `json:"fault,omitempty"`
}

// NewSnapshot builds a snapshot from an engine report and the scope the
// engine fed. sc may be nil.
func NewSnapshot(session string, report *engine.Report, sc *scope.Scope) *Snapshot {
	snap := &Snapshot{
		Session:    session,
		RunID:      report.RunID,
		Start:      report.Start,
		Ticks:      report.Ticks,
		ScopeState: report.ScopeState,
		Samples:    report.Samples,
		Channels:   []scope.Channel{},
		Rows:       [][]float64{},
		Roots:      []engine.RootValue{},
		Fault:      report.Fault,
	}
	snap.Roots = append(snap.Roots, report.Roots...)

	if sc != nil {
		snap.Prediv = sc.Prediv()
		snap.Channels = append(snap.Channels, sc.Channels()...)
		for _, row := range sc.Rows() {
			snap.Rows = append(snap.Rows, row.Values())
		}
	}
	return snap
}

// JSON returns the snapshot as canonical JSON.
func (s *Snapshot) JSON() ([]byte, error) {
	return canonical.Marshal(s)
}

// Column returns the position of the named channel, or -1.
func (s *Snapshot) Column(name string) int {
	for i, ch := range s.Channels {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// Root returns the value of the named root.
func (s *Snapshot) Root(name string) (engine.RootValue, bool) {
	for _, r := range s.Roots {
		if r.Name == name {
			return r, true
		}
	}
	return engine.RootValue{}, false
}

// Record converts the snapshot into its stored form.
func (s *Snapshot) Record() (store.Run, *store.Capture) {
	run := store.Run{
		ID:         s.RunID,
		Session:    s.Session,
		StartTick:  uint32(s.Start),
		Ticks:      s.Ticks,
		ScopeState: s.ScopeState,
		Samples:    s.Samples,
		Prediv:     s.Prediv,
	}
	if s.Fault != nil {
		run.FaultCode = s.Fault.Code.String()
		run.FaultNode = s.Fault.Node
	}
	for _, r := range s.Roots {
		run.Roots = append(run.Roots, store.Root{Name: r.Name, Kind: string(r.Kind), Value: r.Value})
	}

	capture := &store.Capture{Rows: s.Rows}
	for i, ch := range s.Channels {
		capture.Channels = append(capture.Channels, store.Channel{Position: i, Name: ch.Name, Kind: string(ch.Kind)})
	}
	return run, capture
}

// FromRecord rebuilds a snapshot from a stored run. capture may be nil.
func FromRecord(run store.Run, capture *store.Capture) *Snapshot {
	snap := &Snapshot{
		Session:    run.Session,
		RunID:      run.ID,
		Start:      sig.Tick(run.StartTick),
		Ticks:      run.Ticks,
		ScopeState: run.ScopeState,
		Samples:    run.Samples,
		Prediv:     run.Prediv,
		Channels:   []scope.Channel{},
		Rows:       [][]float64{},
		Roots:      []engine.RootValue{},
	}
	if run.ScopeState == "" {
		// the store keeps a divisor of at least 1 even for runs without scope
		snap.Prediv = 0
	}
	if code, ok := sig.ParseCode(run.FaultCode); ok && code != 0 {
		snap.Fault = &sig.Fault{Code: code, Node: run.FaultNode}
	}
	for _, r := range run.Roots {
		snap.Roots = append(snap.Roots, engine.RootValue{Name: r.Name, Kind: scope.Kind(r.Kind), Value: r.Value})
	}
	if capture != nil {
		for _, ch := range capture.Channels {
			snap.Channels = append(snap.Channels, scope.Channel{Name: ch.Name, Kind: scope.Kind(ch.Kind)})
		}
		snap.Rows = append(snap.Rows, capture.Rows...)
	}
	return snap
}
