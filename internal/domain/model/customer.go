package model

import (
	"time"
)

// Customer is the local record of a customer shared with Xero and QuickBooks.
//
// XeroID and QuickBooksID are nullable and unique when present; once XeroID is
// set it must keep matching the contact Xero returned for this customer.
type Customer struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"size:255;not null;uniqueIndex:idx_customers_natural_key" json:"name"`
	Email        string  `gorm:"size:255;not null;default:'';uniqueIndex:idx_customers_natural_key" json:"email"`
	Phone        string  `gorm:"size:100;not null;default:'';uniqueIndex:idx_customers_natural_key" json:"phone"`
	Address      string  `gorm:"size:500;not null;default:'';uniqueIndex:idx_customers_natural_key" json:"address"`
	XeroID       *string `gorm:"size:100;uniqueIndex" json:"xero_id,omitempty"`
	QuickBooksID *string `gorm:"column:quickbooks_id;size:100;uniqueIndex" json:"quickbooks_id,omitempty"`
	// SyncToken is the QuickBooks concurrency token last seen for this customer.
	SyncToken          *string   `gorm:"size:50" json:"sync_token,omitempty"`
	SyncedToXero       bool      `gorm:"not null;default:false" json:"synced_to_xero"`
	SyncedToQuickBooks bool      `gorm:"column:synced_to_quickbooks;not null;default:false" json:"synced_to_quickbooks"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}
