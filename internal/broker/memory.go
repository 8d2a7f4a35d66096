package broker

import (
	"context"
	"sync"

	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

// inMemoryCore holds the waiter bookkeeping shared by MemoryBroker and
// MemoryResultBackend: a correlation id either has a subscriber waiting
// (delivered straight to its channel) or a result waiting (delivered to
// the next Subscribe call), never both.
type inMemoryCore struct {
	mu      sync.Mutex
	waiters map[string]chan worker.ReplyEnvelope
	done    map[string]worker.ReplyEnvelope
}

func newCore() *inMemoryCore {
	return &inMemoryCore{
		waiters: make(map[string]chan worker.ReplyEnvelope),
		done:    make(map[string]worker.ReplyEnvelope),
	}
}

func (c *inMemoryCore) publish(reply worker.ReplyEnvelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.waiters[reply.CorrID]; ok {
		delete(c.waiters, reply.CorrID)
		ch <- reply
		close(ch)
		return
	}
	c.done[reply.CorrID] = reply
}

func (c *inMemoryCore) subscribe(corrID string) <-chan worker.ReplyEnvelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reply, ok := c.done[corrID]; ok {
		delete(c.done, corrID)
		ch := make(chan worker.ReplyEnvelope, 1)
		ch <- reply
		close(ch)
		return ch
	}
	ch := make(chan worker.ReplyEnvelope, 1)
	c.waiters[corrID] = ch
	return ch
}

// MemoryBroker implements Broker without any external transport: Publish
// runs the envelope's worker contract on a new goroutine and deposits the
// reply directly into its paired MemoryResultBackend. This is the
// implementation spec §9 requires for the property-based tests in §8, and
// what arithflowd uses locally when BROKER_URL and RESULT_BACKEND_URL are
// both unset.
type MemoryBroker struct {
	backend *MemoryResultBackend
}

// MemoryResultBackend implements ResultBackend over the same in-process
// waiter table a MemoryBroker publishes into.
type MemoryResultBackend struct {
	core *inMemoryCore
}

// NewMemory creates a matched MemoryBroker/MemoryResultBackend pair
// sharing one waiter table, the combination required for the in-memory
// end-to-end test harness.
func NewMemory() (*MemoryBroker, *MemoryResultBackend) {
	backend := &MemoryResultBackend{core: newCore()}
	return &MemoryBroker{backend: backend}, backend
}

// Publish runs env's worker contract and deposits its reply. It never
// blocks and never fails: the in-memory transport has no network to be
// unavailable.
func (b *MemoryBroker) Publish(ctx context.Context, env worker.TaskEnvelope) error {
	go func() {
		v, err := worker.Dispatch(env)
		b.backend.core.publish(worker.NewReply(env.CorrID, v, err))
	}()
	return nil
}

// Consume is unreachable for MemoryBroker (Publish dispatches directly
// in-process); it exists only so MemoryBroker satisfies the Broker
// interface for code generic over transports.
func (b *MemoryBroker) Consume(ctx context.Context, topic workflow.Topic) (<-chan worker.TaskEnvelope, error) {
	ch := make(chan worker.TaskEnvelope)
	close(ch)
	return ch, nil
}

// Subscribe returns a channel delivering the single reply for corrID.
func (r *MemoryResultBackend) Subscribe(ctx context.Context, corrID string) (<-chan worker.ReplyEnvelope, error) {
	return r.core.subscribe(corrID), nil
}

// Publish deposits reply for the matching Subscribe call.
func (r *MemoryResultBackend) Publish(ctx context.Context, reply worker.ReplyEnvelope) error {
	r.core.publish(reply)
	return nil
}

