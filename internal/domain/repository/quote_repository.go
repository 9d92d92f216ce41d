package repository

import (
	"context"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	Update(ctx context.Context, quote *model.Quote) error
	GetByID(ctx context.Context, id uint) (*model.Quote, error)
	GetByXeroID(ctx context.Context, xeroID string) (*model.Quote, error)
	// GetByNumber matches the natural key (quote number, customer xero id).
	GetByNumber(ctx context.Context, quoteNumber, customerXeroID string) (*model.Quote, error)
	List(ctx context.Context, params entity.PaginationParams) ([]*model.Quote, int64, error)
}
