package session

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema closes every struct so unknown fields are rejected, like the YAML
// decoder's KnownFields.
const schema = `
#Operand: {
	node?:  string
	"const"?: number
}

#Node: {
	name: string
	kind: "const" | "sampler" | "adder" | "step" | "buffer" | "iir" | "fir" | "pid" | "linear" | "linear_f" | "step_interp"

	value?:    number
	operands?: [...#Operand]
	source?:   string
	alpha?:    number
	taps?:     [...number]
	history?:  int & >=0

	window?: {
		min: int & >=0
		max: int & >=0
	}
	active?:   number
	inactive?: number
	strict?:   bool

	column?:       string
	values?:       [...number]
	size?:         int & >=0
	delta?:        int
	circular?:     bool
	check_buffer?: bool

	form?:     "naive" | "optimized"
	p?:        number
	i?:        number
	d?:        number
	"max"?:    number
	setpoint?: string
	feedback?: string
	feedforward?: {
		gains: [...number]
		source?: string
	}

	slope?:     number
	intercept?: number
	delay?:     int & >=0
	"div"?:      int
}

#Session: {
	name:         string
	description?: string
	ticks:        int & >=0
	max_ticks?:   int & >=0
	data?: {
		csv: string
	}
	float_nodes?: [...#Node]
	int_nodes?: [...#Node]
	scope?: {
		buffer:   int & >0
		signals?: string
		prediv?:  int
		names?:   bool
	}
	roots?: [...string]
}
`

// ParseCUE compiles a CUE session, checks it against the session schema and
// decodes it. filename is used in error positions only.
func ParseCUE(data []byte, filename string) (*Session, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Session"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("session schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	value = def.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	var s Session
	if err := value.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return finish(&s)
}
