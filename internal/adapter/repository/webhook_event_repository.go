package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

const maxRetryMinutes = 1440

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent inserts the event, ignoring redeliveries. On a duplicate the
// stored row is loaded into event.
func (r *webhookEventRepository) SaveEvent(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	if event.Status == "" {
		event.Status = model.WebhookStatusPending
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("provider", event.Provider),
			zap.String("event_key", event.EventKey),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return true, nil
	}

	var existing model.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("provider = ? AND event_key = ?", event.Provider, event.EventKey).
		First(&existing).Error
	if err != nil {
		return false, fmt.Errorf("failed to load existing webhook event: %w", err)
	}
	*event = existing

	return false, nil
}

func (r *webhookEventRepository) GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

func (r *webhookEventRepository) MarkQueued(ctx context.Context, id string) error {
	return r.updateStatus(ctx, id, map[string]interface{}{
		"status": model.WebhookStatusPending,
	})
}

func (r *webhookEventRepository) MarkProcessing(ctx context.Context, id string) error {
	return r.updateStatus(ctx, id, map[string]interface{}{
		"status": model.WebhookStatusProcessing,
	})
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id string) error {
	now := time.Now()
	return r.updateStatus(ctx, id, map[string]interface{}{
		"status":        model.WebhookStatusCompleted,
		"processed_at":  &now,
		"next_retry_at": nil,
	})
}

// MarkFailed records err and schedules the next attempt with exponential
// backoff starting at ten minutes, capped at one day.
func (r *webhookEventRepository) MarkFailed(ctx context.Context, id string, err error) error {
	var event model.WebhookEvent
	if dbErr := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; dbErr != nil {
		r.logger.Error("Failed to get webhook event for failure update",
			zap.String("event_id", id),
			zap.Error(dbErr))
		return fmt.Errorf("failed to get webhook event: %w", dbErr)
	}

	retryCount := event.RetryCount + 1
	nextRetry := time.Now().Add(retryDelay(retryCount))
	errorMsg := err.Error()

	return r.updateStatus(ctx, id, map[string]interface{}{
		"status":        model.WebhookStatusFailed,
		"retry_count":   retryCount,
		"last_error":    &errorMsg,
		"next_retry_at": &nextRetry,
	})
}

// GetRetryableEvents also picks up processing rows whose worker died or
// whose outcome was never recorded.
func (r *webhookEventRepository) GetRetryableEvents(ctx context.Context, idleSince time.Time, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).
		Where("(status IN ? AND updated_at <= ?) OR (status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?))",
			[]model.WebhookStatus{model.WebhookStatusPending, model.WebhookStatusProcessing},
			idleSince,
			model.WebhookStatusFailed,
			time.Now()).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to get retryable webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to get retryable webhook events: %w", err)
	}

	return events, nil
}

// ListByStatus returns the newest events first. An empty status lists all.
func (r *webhookEventRepository) ListByStatus(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}

	return events, nil
}

func (r *webhookEventRepository) updateStatus(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update webhook event",
			zap.String("event_id", id),
			zap.Any("status", updates["status"]),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", id)
	}

	return nil
}

func retryDelay(retryCount int) time.Duration {
	minutes := maxRetryMinutes
	if retryCount < 10 {
		minutes = 5 * (1 << retryCount)
		if minutes > maxRetryMinutes {
			minutes = maxRetryMinutes
		}
	}
	return time.Duration(minutes) * time.Minute
}
