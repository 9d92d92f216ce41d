// Package queue hands webhook jobs from the HTTP handlers to background
// workers.
package queue

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/pkg/messaging"
)

var (
	// ErrQueueFull is returned when a job cannot be accepted without blocking.
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one job.
type Handler func(ctx context.Context, job entity.WebhookJob) error

// Queue is a work queue of webhook jobs. Consume blocks, calling handler for
// each job in turn, until ctx is cancelled.
type Queue interface {
	Enqueue(ctx context.Context, job entity.WebhookJob) error
	Consume(ctx context.Context, handler Handler) error
	// Len reports the number of jobs waiting.
	Len(ctx context.Context) (int, error)
	Close() error
}

// New builds the queue selected by cfg.Driver.
func New(cfg config.QueueConfig, logger *zap.Logger) (Queue, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryQueue(cfg.BufferSize), nil
	case "redis":
		client, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		logger.Info("Using redis work queue",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("key", cfg.Redis.Key))
		return NewRedisQueue(client, cfg.Redis.Key, cfg.BufferSize, logger), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver: %s", cfg.Driver)
	}
}
