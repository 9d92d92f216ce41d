package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerInput is the provider-facing shape of a customer write. RemoteID is
// empty for creates.
type CustomerInput struct {
	RemoteID string
	Name     string
	Email    string
	Phone    string
	Address  string
}

// RemoteCustomer is a customer as reported by a provider.
type RemoteCustomer struct {
	ID        string
	SyncToken string
	Name      string
	Email     string
	Phone     string
	Address   string
	UpdatedAt *time.Time
}

// InvoiceInput is the provider-facing shape of an invoice write.
type InvoiceInput struct {
	RemoteID         string
	CustomerRemoteID string
	Number           string
	Description      string
	Total            decimal.Decimal
	Date             time.Time
	DueDate          time.Time
}

// RemoteInvoice is an invoice as reported by a provider.
type RemoteInvoice struct {
	ID          string
	SyncToken   string
	Number      string
	ContactID   string
	Description string
	Status      string
	Total       decimal.Decimal
	DueDate     *time.Time
	UpdatedAt   *time.Time
}

// QuoteInput is the provider-facing shape of a quote (QuickBooks: estimate) write.
type QuoteInput struct {
	RemoteID         string
	CustomerRemoteID string
	Number           string
	Description      string
	Total            decimal.Decimal
	Date             time.Time
	ExpiryDate       time.Time
}

// RemoteQuote is a quote as reported by a provider.
type RemoteQuote struct {
	ID          string
	SyncToken   string
	Number      string
	ContactID   string
	Description string
	Status      string
	Total       decimal.Decimal
	ExpiryDate  *time.Time
	UpdatedAt   *time.Time
}
