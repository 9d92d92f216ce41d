package queue

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/pkg/messaging"
)

const (
	defaultRedisKey = "accounting-sync:webhook-jobs"
	popTimeout      = time.Second
)

// RedisQueue stores jobs in a redis list so several service instances can
// share one queue.
type RedisQueue struct {
	client messaging.RedisClient
	key    string
	maxLen int64
	logger *zap.Logger
}

// NewRedisQueue returns a queue on the list at key. A positive maxLen bounds
// the list like the memory queue's buffer.
func NewRedisQueue(client messaging.RedisClient, key string, maxLen int, logger *zap.Logger) *RedisQueue {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisQueue{
		client: client,
		key:    key,
		maxLen: int64(maxLen),
		logger: logger,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job entity.WebhookJob) error {
	if q.maxLen > 0 {
		n, err := q.client.Len(ctx, q.key)
		if err != nil {
			return err
		}
		if n >= q.maxLen {
			return ErrQueueFull
		}
	}
	return q.client.Push(ctx, q.key, job)
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.Len(ctx, q.key)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (q *RedisQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := q.client.Pop(ctx, q.key, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Error("Failed to pop webhook job", zap.String("key", q.key), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(popTimeout):
			}
			continue
		}
		if msg == nil {
			continue
		}

		var job entity.WebhookJob
		if err := json.Unmarshal(msg.Payload, &job); err != nil {
			q.logger.Error("Dropping malformed webhook job",
				zap.String("payload", string(msg.Payload)),
				zap.Error(err))
			continue
		}
		_ = handler(ctx, job)
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
