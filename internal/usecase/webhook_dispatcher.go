package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

// Xero event categories and QuickBooks entity names and operations that
// drive dispatch.
const (
	XeroEventContact = "CONTACT"
	XeroEventInvoice = "INVOICE"
	XeroEventQuote   = "QUOTE"

	QuickBooksEntityCustomer = "Customer"
	QuickBooksOpCreate       = "Create"
	QuickBooksOpUpdate       = "Update"
)

// DefaultIdleAfter is how long a pending or processing event may sit
// untouched before replay queues it again.
const DefaultIdleAfter = 10 * time.Minute

// SyncTrigger is the part of the coordinator webhooks can reach.
type SyncTrigger interface {
	PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error)
	PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error)
	PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error)
	HandleProviderBCustomerChanged(ctx context.Context, quickBooksID string) (*model.Customer, dto.PullOutcome, error)
}

// JobPublisher hands webhook jobs to the workers.
type JobPublisher interface {
	Enqueue(ctx context.Context, job entity.WebhookJob) error
}

// WebhookDispatcher records verified webhook events, queues them, and runs
// them against the coordinator when a worker picks them up.
type WebhookDispatcher struct {
	events    repository.WebhookEventRepository
	trigger   SyncTrigger
	publisher JobPublisher
	logger    *zap.Logger
	idleAfter time.Duration
	now       func() time.Time
}

func NewWebhookDispatcher(
	events repository.WebhookEventRepository,
	trigger SyncTrigger,
	publisher JobPublisher,
	logger *zap.Logger,
) *WebhookDispatcher {
	return &WebhookDispatcher{
		events:    events,
		trigger:   trigger,
		publisher: publisher,
		logger:    logger,
		idleAfter: DefaultIdleAfter,
		now:       time.Now,
	}
}

// WithIdleAfter sets how long queued or running events are left alone by
// replay. It must exceed the worker job timeout.
func (d *WebhookDispatcher) WithIdleAfter(idle time.Duration) *WebhookDispatcher {
	if idle > 0 {
		d.idleAfter = idle
	}
	return d
}

// WithClock replaces the time source.
func (d *WebhookDispatcher) WithClock(now func() time.Time) *WebhookDispatcher {
	d.now = now
	return d
}

// Ingest persists each event and queues the ones not seen before. It fails
// only when an event could not be stored, so the provider redelivers. Events
// that were stored but not queued stay pending for replay.
func (d *WebhookDispatcher) Ingest(ctx context.Context, events []*model.WebhookEvent) (int, error) {
	queued := 0
	for _, event := range events {
		created, err := d.events.SaveEvent(ctx, event)
		if err != nil {
			return queued, fmt.Errorf("failed to store webhook event %s: %w", event.EventKey, err)
		}
		if !created {
			d.logger.Info("Duplicate webhook event ignored",
				zap.String("provider", event.Provider),
				zap.String("event_key", event.EventKey),
				zap.String("status", string(event.Status)))
			continue
		}

		if err := d.publisher.Enqueue(ctx, JobFromEvent(event)); err != nil {
			d.logger.Error("Failed to queue webhook event, left pending",
				zap.String("event_id", event.ID.String()),
				zap.String("event_key", event.EventKey),
				zap.Error(err))
			continue
		}
		queued++
	}
	return queued, nil
}

// Dispatch runs one job and records the outcome on its event row.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, job entity.WebhookJob) error {
	logger := d.logger.With(
		zap.String("event_id", job.EventID),
		zap.String("provider", job.Provider),
		zap.String("event_type", job.EventType),
		zap.String("resource_id", job.ResourceID))

	if job.EventID != "" {
		if err := d.events.MarkProcessing(ctx, job.EventID); err != nil {
			logger.Warn("Failed to mark webhook event processing", zap.Error(err))
		}
	}

	err := d.route(ctx, job, logger)

	// The outcome is recorded even when the job ran out of time.
	store := context.WithoutCancel(ctx)
	if err != nil {
		logger.Error("Webhook event failed", zap.Error(err))
		if job.EventID != "" {
			if markErr := d.events.MarkFailed(store, job.EventID, err); markErr != nil {
				logger.Error("Failed to mark webhook event failed", zap.Error(markErr))
			}
		}
		return err
	}

	if job.EventID != "" {
		if err := d.events.MarkProcessed(store, job.EventID); err != nil {
			logger.Error("Failed to mark webhook event processed", zap.Error(err))
			return err
		}
	}
	return nil
}

func (d *WebhookDispatcher) route(ctx context.Context, job entity.WebhookJob, logger *zap.Logger) error {
	switch provider.ProviderType(job.Provider) {
	case provider.ProviderTypeXero:
		switch job.EventType {
		case XeroEventContact:
			_, outcome, err := d.trigger.PullCustomerFromProvider(ctx, job.ResourceID)
			if err == nil {
				logger.Info("Contact pulled", zap.String("outcome", string(outcome)))
			}
			return err
		case XeroEventInvoice:
			_, outcome, err := d.trigger.PullInvoiceFromProvider(ctx, job.ResourceID)
			if err == nil {
				logger.Info("Invoice pulled", zap.String("outcome", string(outcome)))
			}
			return err
		case XeroEventQuote:
			// Xero quote events do not identify a change precisely enough for a
			// point pull.
			_, err := d.trigger.PollQuotesPeriodically(ctx)
			return err
		}

	case provider.ProviderTypeQuickBooks:
		if job.EventType == QuickBooksEntityCustomer &&
			(job.Operation == QuickBooksOpCreate || job.Operation == QuickBooksOpUpdate) {
			_, outcome, err := d.trigger.HandleProviderBCustomerChanged(ctx, job.ResourceID)
			if err == nil {
				logger.Info("QuickBooks customer applied", zap.String("outcome", string(outcome)))
			}
			return err
		}
	}

	logger.Info("Ignoring unhandled webhook event", zap.String("operation", job.Operation))
	return nil
}

// Replay queues failed events that are due for retry, and pending or
// processing events idle for longer than the idle window. Queued events are
// marked so the next replay leaves them alone.
func (d *WebhookDispatcher) Replay(ctx context.Context, limit int) (int, error) {
	events, err := d.events.GetRetryableEvents(ctx, d.now().Add(-d.idleAfter), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load retryable webhook events: %w", err)
	}

	queued := 0
	for _, event := range events {
		if err := d.publisher.Enqueue(ctx, JobFromEvent(event)); err != nil {
			return queued, fmt.Errorf("failed to queue webhook event %s: %w", event.ID, err)
		}
		queued++
		if err := d.events.MarkQueued(ctx, event.ID.String()); err != nil {
			d.logger.Warn("Failed to mark webhook event queued",
				zap.String("event_id", event.ID.String()),
				zap.Error(err))
		}
	}
	d.logger.Info("Webhook events replayed", zap.Int("queued", queued), zap.Int("due", len(events)))
	return queued, nil
}

// ProcessDue runs pending and due failed events inline, bypassing the queue.
// It reports how many succeeded and failed; a failing event does not stop the
// batch.
func (d *WebhookDispatcher) ProcessDue(ctx context.Context, limit int) (succeeded, failed int, err error) {
	events, err := d.events.GetRetryableEvents(ctx, d.now().Add(-d.idleAfter), limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load retryable webhook events: %w", err)
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return succeeded, failed, ctx.Err()
		}
		if err := d.Dispatch(ctx, JobFromEvent(event)); err != nil {
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}

// ListEvents returns recent events, optionally filtered by status.
func (d *WebhookDispatcher) ListEvents(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error) {
	return d.events.ListByStatus(ctx, status, limit)
}

// GetEvent returns one stored event.
func (d *WebhookDispatcher) GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error) {
	event, err := d.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("webhook event %s: %w", id, domainErrors.ErrNotFound)
	}
	return event, nil
}

// JobFromEvent builds the queue job for a stored event.
func JobFromEvent(event *model.WebhookEvent) entity.WebhookJob {
	return entity.WebhookJob{
		EventID:    event.ID.String(),
		Provider:   event.Provider,
		EventType:  event.EventType,
		Operation:  event.Operation,
		ResourceID: event.ResourceID,
		TenantID:   event.TenantID,
	}
}
