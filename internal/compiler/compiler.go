// Package compiler lowers the operator tree produced by internal/parser
// into the Workflow IR executed by internal/coordinator, implementing the
// rewrite rules R1-R4 of spec §4.4 exactly as tabulated there.
package compiler

import (
	"github.com/arithflow/arithflow/internal/parser"
	"github.com/arithflow/arithflow/internal/workflow"
)

// Config controls optional compiler diagnostics. The zero value compiles
// with no logging, matching the default behavior of every other stage.
type Config struct {
	// OnRewrite, if set, is called once per synthesized Chain or Chord
	// node, carrying a short description of the rewrite chosen. This
	// mirrors the original reference implementation's log lines at each
	// synthesis point ("Created final parallel group", "Created final
	// chain for group") without requiring a logger dependency here.
	OnRewrite func(description string)
}

// Compile lowers tree into a Workflow IR using the default Config.
func Compile(tree parser.Node) (workflow.IR, error) {
	return (&Config{}).Compile(tree)
}

// Compile lowers tree into a Workflow IR. Compilation never fails for a
// well-formed operator tree (spec §4.4 is total over parser.Node); the
// error return exists so future grammar extensions can surface compile
// errors without an API break.
func (c *Config) Compile(tree parser.Node) (workflow.IR, error) {
	return c.compile(tree), nil
}

func (c *Config) note(description string) {
	if c.OnRewrite != nil {
		c.OnRewrite(description)
	}
}

func topic(op parser.Op) workflow.Topic {
	switch op {
	case parser.ADD:
		return workflow.AddQ
	case parser.SUB:
		return workflow.SubQ
	case parser.MUL:
		return workflow.MulQ
	default:
		return workflow.DivQ
	}
}

func aggTopic(op parser.Op) workflow.Topic {
	if op == parser.ADD {
		return workflow.XSumQ
	}
	return workflow.XProdQ
}

func identity(op parser.Op) float64 {
	if op == parser.ADD {
		return 0
	}
	return 1
}

func (c *Config) compile(node parser.Node) workflow.IR {
	switch n := node.(type) {
	case *parser.Literal:
		// R1
		return workflow.Const(n.Value)
	case *parser.BinaryOp:
		if isLiteral(n.Left) && isLiteral(n.Right) {
			// R2
			l := n.Left.(*parser.Literal).Value
			r := n.Right.(*parser.Literal).Value
			return &workflow.Task{Topic: topic(n.Op), Args: workflow.Args{X: workflow.F64(l), Y: workflow.F64(r)}}
		}
		if n.Op.Commutative() {
			return c.compileCommutative(n)
		}
		return c.compileNonCommutative(n)
	default:
		panic("compiler: unknown operator tree node")
	}
}

func isLiteral(n parser.Node) bool {
	_, ok := n.(*parser.Literal)
	return ok
}

// R3: commutative operator with at least one non-literal child.
func (c *Config) compileCommutative(n *parser.BinaryOp) workflow.IR {
	operands := flatten(n, n.Op)

	var tasks []workflow.IR
	var constants []float64
	for _, operand := range operands {
		compiled := c.compile(operand)
		if cst, ok := compiled.(workflow.Const); ok {
			constants = append(constants, float64(cst))
		} else {
			tasks = append(tasks, compiled)
		}
	}

	return c.reduceCommutative(n.Op, tasks, constants)
}

// flatten collects the maximal left-to-right multiset of operands
// reachable from n through nodes whose operator equals op (I-2's ordering
// guarantee depends on this traversal staying left-to-right).
func flatten(n parser.Node, op parser.Op) []parser.Node {
	bin, ok := n.(*parser.BinaryOp)
	if !ok || bin.Op != op {
		return []parser.Node{n}
	}
	var operands []parser.Node
	operands = append(operands, flatten(bin.Left, op)...)
	operands = append(operands, flatten(bin.Right, op)...)
	return operands
}

// reduceCommutative implements the rewrite table of spec §4.4 R3 exactly.
func (c *Config) reduceCommutative(op parser.Op, tasks []workflow.IR, constants []float64) workflow.IR {
	agg := aggTopic(op)

	switch {
	case len(tasks) == 0 && len(constants) == 0:
		return workflow.Const(identity(op))
	case len(tasks) == 0 && len(constants) == 1:
		return workflow.Const(constants[0])
	case len(tasks) == 0 && len(constants) == 2:
		return &workflow.Task{Topic: topic(op), Args: workflow.Args{X: workflow.F64(constants[0]), Y: workflow.F64(constants[1])}}
	case len(tasks) == 0:
		return &workflow.Task{Topic: agg, Args: workflow.Args{Constants: constants}}
	case len(tasks) == 1 && len(constants) == 0:
		return tasks[0]
	case len(tasks) == 1 && len(constants) == 1:
		c.note("synthesized chain for single task with one fixed constant")
		return workflow.NewChain(tasks[0], &workflow.Task{Topic: topic(op), Args: workflow.Args{Y: workflow.F64(constants[0])}})
	case len(tasks) == 1:
		c.note("synthesized chord for single task with multiple constants")
		constTask := &workflow.Task{Topic: agg, Args: workflow.Args{Constants: constants}}
		header := []workflow.IR{tasks[0], constTask}
		return workflow.NewChord(&workflow.Task{Topic: agg}, header...)
	case len(constants) == 0:
		c.note("synthesized parallel group for multiple tasks")
		return workflow.NewChord(&workflow.Task{Topic: agg}, tasks...)
	case len(constants) == 1:
		c.note("synthesized parallel group for multiple tasks")
		c.note("synthesized chain for parallel group with one fixed constant")
		group := workflow.NewChord(&workflow.Task{Topic: agg}, tasks...)
		return workflow.NewChain(group, &workflow.Task{Topic: topic(op), Args: workflow.Args{Y: workflow.F64(constants[0])}})
	default:
		c.note("synthesized parallel group with constants aggregator")
		constTask := &workflow.Task{Topic: agg, Args: workflow.Args{Constants: constants}}
		header := append(append([]workflow.IR{}, tasks...), constTask)
		return workflow.NewChord(&workflow.Task{Topic: agg}, header...)
	}
}

// R4: non-commutative operator (SUB, DIV).
func (c *Config) compileNonCommutative(n *parser.BinaryOp) workflow.IR {
	lw := c.compile(n.Left)
	rw := c.compile(n.Right)

	lConst, lIsConst := lw.(workflow.Const)
	rConst, rIsConst := rw.(workflow.Const)

	switch {
	case !lIsConst && rIsConst:
		c.note("synthesized chain for non-commutative operator with right fixed constant")
		return workflow.NewChain(lw, &workflow.Task{
			Topic: topic(n.Op),
			Args:  workflow.Args{Y: workflow.F64(float64(rConst)), IsLeftFixed: false},
		})
	case lIsConst && !rIsConst:
		c.note("synthesized chain for non-commutative operator with left fixed constant")
		return workflow.NewChain(rw, &workflow.Task{
			Topic: topic(n.Op),
			Args:  workflow.Args{Y: workflow.F64(float64(lConst)), IsLeftFixed: true},
		})
	default:
		c.note("synthesized ordered pair for non-commutative operator")
		return workflow.NewChord(&workflow.Task{Topic: topic(n.Op)}, lw, rw)
	}
}
