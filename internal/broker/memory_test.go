package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithflow/arithflow/internal/broker"
	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

func f64(v float64) *float64 { return &v }

func TestMemoryBrokerRoundTrip(t *testing.T) {
	b, rb := broker.NewMemory()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	replies, err := rb.Subscribe(ctx, "corr-1")
	require.NoError(t, err)

	err = b.Publish(ctx, worker.TaskEnvelope{
		CorrID: "corr-1",
		Topic:  workflow.AddQ,
		Params: worker.Params{X: f64(2), Y: f64(3)},
	})
	require.NoError(t, err)

	select {
	case reply := <-replies:
		require.Nil(t, reply.Error)
		require.NotNil(t, reply.Value)
		assert.Equal(t, 5.0, *reply.Value)
	case <-ctx.Done():
		t.Fatal("timed out waiting for reply")
	}
}

func TestMemoryBrokerPropagatesContractError(t *testing.T) {
	b, rb := broker.NewMemory()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	replies, err := rb.Subscribe(ctx, "corr-2")
	require.NoError(t, err)

	err = b.Publish(ctx, worker.TaskEnvelope{
		CorrID: "corr-2",
		Topic:  workflow.DivQ,
		Params: worker.Params{X: f64(1), Y: f64(0)},
	})
	require.NoError(t, err)

	select {
	case reply := <-replies:
		require.NotNil(t, reply.Error)
		assert.Equal(t, "DIVIDE_BY_ZERO", reply.Error.Kind)
	case <-ctx.Done():
		t.Fatal("timed out waiting for reply")
	}
}

// Publishing a result before anyone subscribes must still be delivered to
// a later Subscribe call (the in-memory backend keeps it until claimed).
func TestMemoryResultBackendHoldsUnclaimedResult(t *testing.T) {
	_, rb := broker.NewMemory()

	err := rb.Publish(context.Background(), worker.ReplyEnvelope{CorrID: "corr-3", Value: f64(42)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	replies, err := rb.Subscribe(ctx, "corr-3")
	require.NoError(t, err)

	select {
	case reply := <-replies:
		require.NotNil(t, reply.Value)
		assert.Equal(t, 42.0, *reply.Value)
	case <-ctx.Done():
		t.Fatal("timed out waiting for held result")
	}
}
