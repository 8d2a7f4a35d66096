package worker

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/arithflow/arithflow/internal/errs"
)

// Contract is a pure, deterministic, idempotent worker function: it
// computes a TaskEnvelope's result with no I/O of its own (spec §5
// "within the contract function they perform no I/O").
type Contract func(TaskEnvelope) (float64, error)

// Dispatch selects the contract matching topic and envelope shape and
// runs it, logging one entry at invocation and one at error level on
// failure, per SPEC_FULL.md §4.9.
func Dispatch(env TaskEnvelope) (float64, error) {
	log := logrus.WithFields(logrus.Fields{"corr_id": env.CorrID, "topic": env.Topic})
	log.Debug("dispatching worker contract")

	fn, err := contractFor(env)
	if err != nil {
		log.WithError(err).Error("no contract for envelope")
		return 0, err
	}

	v, err := fn(env)
	if err != nil {
		log.WithError(err).Error("worker contract failed")
		return 0, err
	}
	return v, nil
}

func contractFor(env TaskEnvelope) (Contract, error) {
	switch env.Topic {
	case "add_tasks":
		if len(env.Params.ChildrenResult) > 0 || len(env.Params.Constants) > 0 {
			return XSum, nil
		}
		return Add, nil
	case "mul_tasks":
		if len(env.Params.ChildrenResult) > 0 || len(env.Params.Constants) > 0 {
			return XProd, nil
		}
		return Mul, nil
	case "sub_tasks":
		if env.Params.XList != nil {
			return SubList, nil
		}
		return Sub, nil
	case "div_tasks":
		if env.Params.XList != nil {
			return DivList, nil
		}
		return Div, nil
	case "xsum_tasks":
		return XSum, nil
	case "xprod_tasks":
		return XProd, nil
	default:
		return nil, errs.WorkerTypeError.New("unknown topic: " + string(env.Topic))
	}
}

// Add implements the "add" contract. When Result is present it is a chain
// continuation; the fixed literal is always carried in Y (commutative
// ops never read IsLeftFixed).
func Add(env TaskEnvelope) (float64, error) {
	p := env.Params
	if p.Result != nil {
		y, err := require(p.Y, "add: missing fixed operand")
		if err != nil {
			return 0, err
		}
		return *p.Result + y, nil
	}
	x, err := require(p.X, "add: missing x")
	if err != nil {
		return 0, err
	}
	y, err := require(p.Y, "add: missing y")
	if err != nil {
		return 0, err
	}
	return x + y, nil
}

// Mul implements the "mul" contract, symmetric to Add.
func Mul(env TaskEnvelope) (float64, error) {
	p := env.Params
	if p.Result != nil {
		y, err := require(p.Y, "mul: missing fixed operand")
		if err != nil {
			return 0, err
		}
		return *p.Result * y, nil
	}
	x, err := require(p.X, "mul: missing x")
	if err != nil {
		return 0, err
	}
	y, err := require(p.Y, "mul: missing y")
	if err != nil {
		return 0, err
	}
	return x * y, nil
}

// Sub implements the "sub" contract. IsLeftFixed distinguishes whether
// the fixed literal (carried in Y) sits to the left or right of the
// chain's predecessor result: IsLeftFixed=true computes y - result,
// IsLeftFixed=false computes result - y.
func Sub(env TaskEnvelope) (float64, error) {
	p := env.Params
	if p.Result != nil {
		y, err := require(p.Y, "sub: missing fixed operand")
		if err != nil {
			return 0, err
		}
		if p.IsLeftFixed {
			return y - *p.Result, nil
		}
		return *p.Result - y, nil
	}
	x, err := require(p.X, "sub: missing x")
	if err != nil {
		return 0, err
	}
	y, err := require(p.Y, "sub: missing y")
	if err != nil {
		return 0, err
	}
	return x - y, nil
}

// Div implements the "div" contract, symmetric to Sub, additionally
// failing with DivideByZero when the effective divisor is zero.
func Div(env TaskEnvelope) (float64, error) {
	p := env.Params
	if p.Result != nil {
		y, err := require(p.Y, "div: missing fixed operand")
		if err != nil {
			return 0, err
		}
		dividend, divisor := *p.Result, y
		if p.IsLeftFixed {
			dividend, divisor = y, *p.Result
		}
		if divisor == 0 {
			return 0, errs.DivideByZero.New()
		}
		return dividend / divisor, nil
	}
	x, err := require(p.X, "div: missing x")
	if err != nil {
		return 0, err
	}
	y, err := require(p.Y, "div: missing y")
	if err != nil {
		return 0, err
	}
	if y == 0 {
		return 0, errs.DivideByZero.New()
	}
	return x / y, nil
}

// XSum sums ChildrenResult union Constants; an empty total is 0.0.
func XSum(env TaskEnvelope) (float64, error) {
	total := 0.0
	for _, v := range env.Params.ChildrenResult {
		total += v
	}
	for _, v := range env.Params.Constants {
		total += v
	}
	return total, nil
}

// XProd multiplies ChildrenResult union Constants; an empty total is 1.0.
func XProd(env TaskEnvelope) (float64, error) {
	total := 1.0
	for _, v := range env.Params.ChildrenResult {
		total *= v
	}
	for _, v := range env.Params.Constants {
		total *= v
	}
	return total, nil
}

// SubList implements the chord-body form of subtraction over an ordered
// two-element list: x[0] - x[1].
func SubList(env TaskEnvelope) (float64, error) {
	x := env.Params.XList
	if len(x) != 2 {
		return 0, errs.WorkerTypeError.New("sub_list expects 2 elements, got " + strconv.Itoa(len(x)))
	}
	return x[0] - x[1], nil
}

// DivList implements the chord-body form of division over an ordered
// two-element list: x[0] / x[1].
func DivList(env TaskEnvelope) (float64, error) {
	x := env.Params.XList
	if len(x) != 2 {
		return 0, errs.WorkerTypeError.New("div_list expects 2 elements, got " + strconv.Itoa(len(x)))
	}
	if x[1] == 0 {
		return 0, errs.DivideByZero.New()
	}
	return x[0] / x[1], nil
}

func require(v *float64, msg string) (float64, error) {
	if v == nil {
		return 0, errs.WorkerTypeError.New(msg)
	}
	return *v, nil
}

