package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is a minimal reliable-list client used for work queues.
type RedisClient interface {
	// Push appends message, JSON encoded, to the head of the list at key.
	Push(ctx context.Context, key string, message interface{}) error
	// Pop blocks up to timeout for an element from the tail of the list.
	// It returns (nil, nil) when the timeout elapses with nothing to read.
	Pop(ctx context.Context, key string, timeout time.Duration) (*Message, error)
	Len(ctx context.Context, key string) (int64, error)
	Close() error
}

// Message is a raw element read from a list.
type Message struct {
	Key     string
	Payload []byte
	Time    time.Time
}

type redisClient struct {
	client *redis.Client
}

// NewRedisClient connects to redis and verifies the connection with PING.
func NewRedisClient(addr, password string, db int) (RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisClient{client: client}, nil
}

func (r *redisClient) Push(ctx context.Context, key string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return r.client.LPush(ctx, key, payload).Err()
}

func (r *redisClient) Pop(ctx context.Context, key string, timeout time.Duration) (*Message, error) {
	result, err := r.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from %s: %w", key, err)
	}

	// BRPOP replies with [key, value].
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(result))
	}

	return &Message{
		Key:     result[0],
		Payload: []byte(result[1]),
		Time:    time.Now(),
	}, nil
}

func (r *redisClient) Len(ctx context.Context, key string) (int64, error) {
	return r.client.LLen(ctx, key).Result()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
