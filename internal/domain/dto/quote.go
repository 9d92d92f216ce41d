package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

// QuoteRequest is the body of quote create and update calls.
type QuoteRequest struct {
	QuoteXeroID          string          `json:"quoteXeroId,omitempty"`
	QuoteNumber          string          `json:"quoteNumber" validate:"required,max=100"`
	CustomerID           uint            `json:"customerId" validate:"required"`
	CustomerXeroID       string          `json:"customerXeroId" validate:"required,max=100"`
	CustomerQuickBooksID string          `json:"customerQuickBooksId,omitempty" validate:"max=100"`
	Description          string          `json:"description" validate:"max=4000"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	ExpiryDate           *time.Time      `json:"expiryDate,omitempty"`
}

type QuoteListResponse struct {
	Quotes []*model.Quote `json:"quotes"`
	Total  int64          `json:"total"`
}
