package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

type WebhookEventRepository interface {
	// SaveEvent stores event unless one with the same provider and key
	// exists. It reports whether a new row was written.
	SaveEvent(ctx context.Context, event *model.WebhookEvent) (bool, error)
	GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error)
	// MarkQueued returns the event to pending and restarts its idle clock.
	MarkQueued(ctx context.Context, id string) error
	MarkProcessing(ctx context.Context, id string) error
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, err error) error
	// GetRetryableEvents returns failed events whose next retry time has
	// passed, and pending or processing events not touched since idleSince,
	// oldest first.
	GetRetryableEvents(ctx context.Context, idleSince time.Time, limit int) ([]*model.WebhookEvent, error)
	ListByStatus(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error)
}
