// Package workflow defines the compiled IR that internal/compiler produces
// and internal/coordinator executes: a closed, four-variant algebraic type
// per spec §3/§4.3.
package workflow

import "fmt"

// Topic identifies the worker queue a Task targets, per spec §6.4.
type Topic string

const (
	AddQ   Topic = "add_tasks"
	SubQ   Topic = "sub_tasks"
	MulQ   Topic = "mul_tasks"
	DivQ   Topic = "div_tasks"
	XSumQ  Topic = "xsum_tasks"
	XProdQ Topic = "xprod_tasks"
)

// IR is a node of the compiled workflow. It is one of Const, *Task,
// *Chain, or *Chord; the type switch in coordinator/compiler code
// dispatches on the concrete type.
type IR interface {
	ir()
	// String renders a short human-readable form, used to build the
	// "workflow" field of the HTTP response (spec §6.2).
	String() string
}

// Const is a pre-computed scalar, emitted only for literals (I-1..I-3: the
// compiler never folds across operations, so a Const never appears nested
// where a worker-produced scalar is expected except as a leaf argument).
type Const float64

func (Const) ir() {}
func (c Const) String() string { return fmt.Sprintf("%g", float64(c)) }

// Args is the parameter record carried by a Task, per the wire format in
// spec §6.3. Which fields are populated depends on Topic; zero-valued
// fields are omitted from the envelope, except IsLeftFixed, which is
// always sent.
type Args struct {
	X, Y         *float64
	Result       *float64 // injected by Chain propagation, not set at compile time
	IsLeftFixed  bool
	Constants    []float64
	ChildrenResult []float64 // injected by Chord propagation, not set at compile time
	XList        []float64  // two-element operand list for sub_list/div_list
}

// Task is a single remote call.
type Task struct {
	Topic Topic
	Args  Args
}

func (*Task) ir() {}

func (t *Task) String() string {
	return fmt.Sprintf("%s(%s)", t.Topic, t.Args.describe())
}

func (a Args) describe() string {
	parts := ""
	add := func(s string) {
		if parts != "" {
			parts += ", "
		}
		parts += s
	}
	if a.X != nil {
		add(fmt.Sprintf("x=%g", *a.X))
	}
	if a.Y != nil {
		add(fmt.Sprintf("y=%g", *a.Y))
	}
	if len(a.Constants) > 0 {
		add(fmt.Sprintf("constants=%v", a.Constants))
	}
	if len(a.XList) > 0 {
		add(fmt.Sprintf("x=%v", a.XList))
	}
	if a.IsLeftFixed {
		add("is_left_fixed=true")
	}
	return parts
}

// Chain is sequential composition: stage i's result is injected into stage
// i+1 as Args.Result. Always has at least two stages (the compiler
// collapses a would-be one-stage Chain down to its sole inner IR).
type Chain struct {
	Stages []IR
}

func (*Chain) ir() {}

func (c *Chain) String() string {
	s := "chain["
	for i, stage := range c.Stages {
		if i > 0 {
			s += " -> "
		}
		s += stage.String()
	}
	return s + "]"
}

// Chord is fan-out/fan-in: every Header entry runs concurrently, and their
// ordered results are delivered to Body as Args.XList when Body targets
// sub_tasks or div_tasks, and as Args.ChildrenResult otherwise. Always has
// at least two header children (the compiler rewrites smaller cases to a
// Chain or a bare IR).
type Chord struct {
	Header []IR
	Body   *Task
}

func (*Chord) ir() {}

func (c *Chord) String() string {
	s := "chord{header=["
	for i, h := range c.Header {
		if i > 0 {
			s += ", "
		}
		s += h.String()
	}
	return s + fmt.Sprintf("], body=%s}", c.Body.String())
}

// NewChain builds a Chain, collapsing the degenerate single-stage case to
// the stage itself so a Chain never has fewer than two stages (spec P2).
func NewChain(stages ...IR) IR {
	if len(stages) == 0 {
		panic("workflow: NewChain requires at least one stage")
	}
	if len(stages) == 1 {
		return stages[0]
	}
	return &Chain{Stages: stages}
}

// NewChord builds a Chord, collapsing the degenerate cases so a Chord
// never has fewer than two header children (spec P2): zero headers is a
// caller error, one header returns that header directly.
func NewChord(body *Task, header ...IR) IR {
	switch len(header) {
	case 0:
		panic("workflow: NewChord requires at least one header entry")
	case 1:
		return header[0]
	default:
		return &Chord{Header: header, Body: body}
	}
}

func f64(v float64) *float64 { return &v }

// F64 exposes the pointer helper for packages that build Args literally
// (internal/compiler).
func F64(v float64) *float64 { return f64(v) }
