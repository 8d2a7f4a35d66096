package worker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

func f64(v float64) *float64 { return &v }

func TestDispatchAdd(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.AddQ,
		Params: worker.Params{X: f64(5), Y: f64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
}

func TestDispatchSubChainLeftFixed(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.SubQ,
		Params: worker.Params{Result: f64(4), Y: f64(10), IsLeftFixed: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v) // 10 - 4
}

func TestDispatchSubChainRightFixed(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.SubQ,
		Params: worker.Params{Result: f64(10), Y: f64(4), IsLeftFixed: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v) // 10 - 4
}

func TestDispatchDivByZero(t *testing.T) {
	_, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.DivQ,
		Params: worker.Params{X: f64(10), Y: f64(0)},
	})
	require.Error(t, err)
	assert.True(t, errs.DivideByZero.Is(err))
}

func TestDispatchXSumOverConstantsAndChildren(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.XSumQ,
		Params: worker.Params{ChildrenResult: []float64{1, 2}, Constants: []float64{3, 4, 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestDispatchXProdEmptyIsOne(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{CorrID: "c1", Topic: workflow.XProdQ})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestDispatchSubListOrderedPair(t *testing.T) {
	v, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.SubQ,
		Params: worker.Params{XList: []float64{10, 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestDispatchDivListByZero(t *testing.T) {
	_, err := worker.Dispatch(worker.TaskEnvelope{
		CorrID: "c1", Topic: workflow.DivQ,
		Params: worker.Params{XList: []float64{10, 0}},
	})
	require.Error(t, err)
	assert.True(t, errs.DivideByZero.Is(err))
}

func TestDispatchUnknownTopic(t *testing.T) {
	_, err := worker.Dispatch(worker.TaskEnvelope{CorrID: "c1", Topic: "bogus"})
	require.Error(t, err)
	assert.True(t, errs.WorkerTypeError.Is(err))
}

func TestDispatchMissingOperand(t *testing.T) {
	_, err := worker.Dispatch(worker.TaskEnvelope{CorrID: "c1", Topic: workflow.AddQ, Params: worker.Params{X: f64(1)}})
	require.Error(t, err)
	assert.True(t, errs.WorkerTypeError.Is(err))
}
