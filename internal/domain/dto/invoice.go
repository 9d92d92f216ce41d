package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

// InvoiceRequest is the body of invoice create and update calls.
// CustomerXeroID and CustomerQuickBooksID are the caller's claim about the
// customer's remote ids and must match the stored customer.
type InvoiceRequest struct {
	InvoiceXeroID        string          `json:"invoiceXeroId,omitempty"`
	InvoiceNumber        string          `json:"invoiceNumber" validate:"required,max=100"`
	CustomerID           uint            `json:"customerId" validate:"required"`
	CustomerXeroID       string          `json:"customerXeroId" validate:"required,max=100"`
	CustomerQuickBooksID string          `json:"customerQuickBooksId,omitempty" validate:"max=100"`
	Description          string          `json:"description" validate:"max=4000"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	DueDate              *time.Time      `json:"dueDate,omitempty"`
}

type InvoiceListResponse struct {
	Invoices []*model.Invoice `json:"invoices"`
	Total    int64            `json:"total"`
}
