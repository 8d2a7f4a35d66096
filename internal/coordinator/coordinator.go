// Package coordinator executes a compiled workflow.IR against a Broker and
// ResultBackend, per spec §4.5: it submits Tasks, propagates Chain results
// and Chord fan-in results, and enforces a per-request deadline.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arithflow/arithflow/internal/broker"
	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

// DefaultDeadline is the per-request execution budget New installs (spec
// §7 default 3s). Execute applies a Coordinator's budget only when the
// caller's context carries no deadline of its own.
const DefaultDeadline = 3 * time.Second

// Coordinator drives IR execution over a Broker/ResultBackend pair.
type Coordinator struct {
	Broker   broker.Broker
	Backend  broker.ResultBackend
	Deadline time.Duration
}

// New builds a Coordinator with the default deadline.
func New(b broker.Broker, rb broker.ResultBackend) *Coordinator {
	return &Coordinator{Broker: b, Backend: rb, Deadline: DefaultDeadline}
}

// Execute runs ir to completion and returns its scalar result. A Const
// short-circuits with no broker round trip (spec §4.5 "a Const root never
// touches the broker").
func (c *Coordinator) Execute(ctx context.Context, ir workflow.IR) (float64, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deadline())
		defer cancel()
	}
	return c.exec(ctx, ir)
}

func (c *Coordinator) deadline() time.Duration {
	if c.Deadline > 0 {
		return c.Deadline
	}
	return DefaultDeadline
}

func (c *Coordinator) exec(ctx context.Context, ir workflow.IR) (float64, error) {
	switch n := ir.(type) {
	case workflow.Const:
		return float64(n), nil
	case *workflow.Task:
		return c.runTask(ctx, n)
	case *workflow.Chain:
		return c.execChain(ctx, n)
	case *workflow.Chord:
		return c.execChord(ctx, n)
	default:
		return 0, errs.Internal.Wrap(errors.New("coordinator: unknown IR node"))
	}
}

// execChain runs each stage in order, injecting stage i's result into
// stage i+1 as Args.Result. All but the first stage must be a *Task (the
// compiler never emits a Chain whose later stages are themselves compound,
// per spec §4.4 R3/R4's Chain constructions).
func (c *Coordinator) execChain(ctx context.Context, chain *workflow.Chain) (float64, error) {
	result, err := c.exec(ctx, chain.Stages[0])
	if err != nil {
		return 0, err
	}
	for _, stage := range chain.Stages[1:] {
		t, ok := stage.(*workflow.Task)
		if !ok {
			return 0, errs.Internal.Wrap(errors.New("coordinator: non-task chain continuation"))
		}
		t.Args.Result = workflow.F64(result)
		result, err = c.runTask(ctx, t)
		if err != nil {
			return 0, err
		}
	}
	return result, nil
}

// execChord runs every header entry concurrently, then delivers their
// ordered results to Body: sub_tasks/div_tasks bodies (spec §4.4 R4) take
// the pair positionally in Args.XList, all other bodies (aggregators, spec
// §4.4 R3) take the set in Args.ChildrenResult.
func (c *Coordinator) execChord(ctx context.Context, chord *workflow.Chord) (float64, error) {
	results := make([]float64, len(chord.Header))
	errsOut := make([]error, len(chord.Header))

	var wg sync.WaitGroup
	for i, h := range chord.Header {
		wg.Add(1)
		go func(i int, h workflow.IR) {
			defer wg.Done()
			v, err := c.exec(ctx, h)
			results[i] = v
			errsOut[i] = err
		}(i, h)
	}
	wg.Wait()

	for _, err := range errsOut {
		if err != nil {
			return 0, err
		}
	}

	body := *chord.Body
	switch body.Topic {
	case workflow.SubQ, workflow.DivQ:
		body.Args.XList = results
	default:
		body.Args.ChildrenResult = results
	}
	return c.runTask(ctx, &body)
}

// runTask submits t to the broker under a fresh correlation id and blocks
// on the result backend until a reply arrives, ctx is done, or the
// coordinator's deadline elapses.
func (c *Coordinator) runTask(ctx context.Context, t *workflow.Task) (float64, error) {
	corrID := uuid.NewString()
	env := worker.TaskEnvelope{CorrID: corrID, Topic: t.Topic, Params: toParams(t.Args)}

	replies, err := c.Backend.Subscribe(ctx, corrID)
	if err != nil {
		return 0, errs.BrokerUnavailable.Wrap(err)
	}
	if err := c.Broker.Publish(ctx, env); err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{"corr_id": corrID, "topic": t.Topic}).Debug("submitted task")

	select {
	case reply, ok := <-replies:
		if !ok {
			return 0, errs.Timeout.New()
		}
		if reply.Error != nil {
			return 0, errs.Remote(reply.Error.Kind, reply.Error.Message)
		}
		if reply.Value == nil {
			return 0, errs.Internal.Wrap(errors.New("reply carried no value and no error"))
		}
		return *reply.Value, nil
	case <-ctx.Done():
		return 0, errs.Timeout.Wrap(ctx.Err())
	}
}

func toParams(a workflow.Args) worker.Params {
	return worker.Params{
		X:              a.X,
		Y:              a.Y,
		Result:         a.Result,
		IsLeftFixed:    a.IsLeftFixed,
		Constants:      a.Constants,
		ChildrenResult: a.ChildrenResult,
		XList:          a.XList,
	}
}
