package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a local invoice. CustomerXeroID and CustomerQuickBooksID are
// denormalized copies of the owning customer's remote ids as claimed by the
// caller; they are checked against the Customer row before any remote write.
type Invoice struct {
	ID                   uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber        string          `gorm:"size:100;not null;uniqueIndex" json:"invoice_number"`
	XeroID               *string         `gorm:"size:100;uniqueIndex" json:"xero_id,omitempty"`
	QuickBooksID         *string         `gorm:"column:quickbooks_id;size:100;uniqueIndex" json:"quickbooks_id,omitempty"`
	CustomerID           uint            `gorm:"not null;index" json:"customer_id"`
	CustomerXeroID       *string         `gorm:"size:100;index" json:"customer_xero_id,omitempty"`
	CustomerQuickBooksID *string         `gorm:"column:customer_quickbooks_id;size:100" json:"customer_quickbooks_id,omitempty"`
	Description          string          `gorm:"type:text" json:"description"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	DueDate              time.Time       `json:"due_date"`
	SyncedToXero         bool            `gorm:"not null;default:false" json:"synced_to_xero"`
	SyncedToQuickBooks   bool            `gorm:"column:synced_to_quickbooks;not null;default:false" json:"synced_to_quickbooks"`
	// RemoteUpdatedAt is Xero's UpdatedDateUTC for the last version applied locally.
	RemoteUpdatedAt *time.Time `json:"remote_updated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"-"`
}

// TableName specifies the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}
