package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arithflow/arithflow/internal/errs"
	"github.com/arithflow/arithflow/internal/worker"
)

// resultTTL bounds how long a published result waits in Redis for a
// subscriber, per spec §4.6 "the backend may hold results for a bounded
// TTL".
const resultTTL = 30 * time.Second

// RedisResultBackend implements ResultBackend over a Redis list per
// correlation id: Publish RPUSHes the JSON-encoded reply and sets a TTL;
// Subscribe BLPOPs it.
type RedisResultBackend struct {
	client *redis.Client
}

// DialRedis connects to a Redis result backend at url (e.g.
// "redis://localhost:6379/0").
func DialRedis(url string) (*RedisResultBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errs.BrokerUnavailable.Wrap(err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errs.BrokerUnavailable.Wrap(err)
	}
	return &RedisResultBackend{client: client}, nil
}

// Close releases the underlying Redis connection pool.
func (r *RedisResultBackend) Close() error { return r.client.Close() }

func resultKey(corrID string) string { return "arithflow:result:" + corrID }

// Publish stores reply under corrID's key with a bounded TTL.
func (r *RedisResultBackend) Publish(ctx context.Context, reply worker.ReplyEnvelope) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return errs.Internal.Wrap(err)
	}
	key := resultKey(reply.CorrID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, body)
	pipe.Expire(ctx, key, resultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.BrokerUnavailable.Wrap(err)
	}
	return nil
}

// Subscribe blocks (bounded by ctx) until corrID's result is pushed, then
// decodes and delivers it on the returned channel.
func (r *RedisResultBackend) Subscribe(ctx context.Context, corrID string) (<-chan worker.ReplyEnvelope, error) {
	out := make(chan worker.ReplyEnvelope, 1)
	go func() {
		defer close(out)
		res, err := r.client.BLPop(ctx, 0, resultKey(corrID)).Result()
		if err != nil {
			return // ctx cancellation or timeout; coordinator handles via its own deadline
		}
		// BLPOP returns [key, value].
		if len(res) != 2 {
			return
		}
		var reply worker.ReplyEnvelope
		if err := json.Unmarshal([]byte(res[1]), &reply); err != nil {
			return
		}
		out <- reply
	}()
	return out, nil
}
