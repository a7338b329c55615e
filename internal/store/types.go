package store

// Run is the stored summary of one engine run.
type Run struct {
	ID         string
	Session    string
	Seq        int64
	StartTick  uint32
	Ticks      int
	ScopeState string
	Samples    int
	Prediv     int
	FaultCode  string
	FaultNode  string
	Roots      []Root
}

// Root is a root node value at the last evaluated tick.
type Root struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// Channel is one captured signal. Position is its column in every row.
type Channel struct {
	Position int
	Name     string
	Kind     string
}

// Capture is the decoded content of a scope buffer.
type Capture struct {
	Channels []Channel
	Rows     [][]float64
}
