package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// Worker runs a fixed pool of consumers against a Queue.
type Worker struct {
	queue      Queue
	handler    Handler
	workers    int
	jobTimeout time.Duration
	logger     *zap.Logger
}

func NewWorker(queue Queue, handler Handler, workers int, jobTimeout time.Duration, logger *zap.Logger) *Worker {
	if workers <= 0 {
		workers = 1
	}
	return &Worker{
		queue:      queue,
		handler:    handler,
		workers:    workers,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled and every consumer has returned.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting webhook workers", zap.Int("workers", w.workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		id := i
		g.Go(func() error {
			return w.queue.Consume(gctx, func(ctx context.Context, job entity.WebhookJob) error {
				return w.process(ctx, id, job)
			})
		})
	}

	err := g.Wait()
	w.logger.Info("Webhook workers stopped")
	return err
}

func (w *Worker) process(ctx context.Context, workerID int, job entity.WebhookJob) error {
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := w.handler(ctx, job)
	fields := []zap.Field{
		zap.Int("worker", workerID),
		zap.String("event_id", job.EventID),
		zap.String("provider", job.Provider),
		zap.String("event_type", job.EventType),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		w.logger.Warn("Webhook job failed", append(fields, zap.Error(err))...)
		return err
	}
	w.logger.Debug("Webhook job done", fields...)
	return nil
}
