// Package broker defines the transport-agnostic Broker and ResultBackend
// abstractions of spec §4.6, plus three concrete bindings: an in-memory
// pair that dispatches directly to worker contracts (used for local
// development and required by spec §9 for property-based tests), a
// RabbitMQ-backed Broker, and a Redis-backed ResultBackend.
package broker

import (
	"context"

	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

// Broker publishes task envelopes to their topic's queue and lets worker
// processes consume them. Publish is best-effort at-least-once and must
// never block the caller indefinitely; transport failures are reported as
// *errs.Error of kind BrokerUnavailable.
type Broker interface {
	Publish(ctx context.Context, env worker.TaskEnvelope) error
	// Consume returns a stream of envelopes for topic, for a worker
	// process to range over until ctx is done.
	Consume(ctx context.Context, topic workflow.Topic) (<-chan worker.TaskEnvelope, error)
}

// ResultBackend lets the coordinator await a task's result by correlation
// id, and lets workers publish that result. A single published result is
// enough; multiple subscribers are not required.
type ResultBackend interface {
	// Subscribe returns a channel that receives at most one ReplyEnvelope
	// for corrID. A binding may close the channel without a reply when ctx
	// ends or the stored reply cannot be decoded. The backend may hold
	// results for a bounded TTL if no one subscribes in time.
	Subscribe(ctx context.Context, corrID string) (<-chan worker.ReplyEnvelope, error)
	Publish(ctx context.Context, reply worker.ReplyEnvelope) error
}

// queueOf maps a logical Topic (spec §4.3/§6.3) to the physical queue
// name it is routed to (spec §6.4): xsum_tasks/xprod_tasks are logically
// distinct from add_tasks/mul_tasks but share their queue in the
// reference layout.
func queueOf(topic workflow.Topic) string {
	switch topic {
	case workflow.XSumQ:
		return string(workflow.AddQ)
	case workflow.XProdQ:
		return string(workflow.MulQ)
	default:
		return string(topic)
	}
}

// Queues lists the four physical queues a worker pool consumes from.
var Queues = []string{
	string(workflow.AddQ),
	string(workflow.SubQ),
	string(workflow.MulQ),
	string(workflow.DivQ),
}
