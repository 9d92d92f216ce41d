package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent is one provider notification. EventKey is derived from the
// notification content so redeliveries of the same event collapse onto one row.
type WebhookEvent struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Provider    string        `gorm:"size:50;not null;uniqueIndex:idx_webhook_events_key" json:"provider"`
	EventKey    string        `gorm:"size:255;not null;uniqueIndex:idx_webhook_events_key" json:"event_key"`
	EventType   string        `gorm:"size:100;not null;index" json:"event_type"`
	Operation   string        `gorm:"size:50" json:"operation,omitempty"`
	ResourceID  string        `gorm:"size:100;index" json:"resource_id"`
	TenantID    string        `gorm:"size:100" json:"tenant_id,omitempty"`
	Payload     string        `gorm:"type:text" json:"payload"`
	Status      WebhookStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RetryCount  int           `gorm:"not null;default:0" json:"retry_count"`
	LastError   *string       `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time    `json:"next_retry_at,omitempty"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	OccurredAt  *time.Time    `json:"occurred_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not.
func (e *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
