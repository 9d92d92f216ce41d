package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote mirrors Invoice with QuoteNumber and ExpiryDate. Xero quotes map to
// QuickBooks estimates.
type Quote struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	QuoteNumber          string          `gorm:"size:100;not null;uniqueIndex" json:"quote_number"`
	XeroID               *string         `gorm:"size:100;uniqueIndex" json:"xero_id,omitempty"`
	QuickBooksID         *string         `gorm:"column:quickbooks_id;size:100;uniqueIndex" json:"quickbooks_id,omitempty"`
	CustomerID           uint            `gorm:"not null;index" json:"customer_id"`
	CustomerXeroID       *string         `gorm:"size:100;index" json:"customer_xero_id,omitempty"`
	CustomerQuickBooksID *string         `gorm:"column:customer_quickbooks_id;size:100" json:"customer_quickbooks_id,omitempty"`
	Description          string          `gorm:"type:text" json:"description"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	ExpiryDate           time.Time       `json:"expiry_date"`
	SyncedToXero         bool            `gorm:"not null;default:false" json:"synced_to_xero"`
	SyncedToQuickBooks   bool            `gorm:"column:synced_to_quickbooks;not null;default:false" json:"synced_to_quickbooks"`
	RemoteUpdatedAt      *time.Time      `json:"remote_updated_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
}

// TableName specifies the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}
