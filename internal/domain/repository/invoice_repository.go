package repository

import (
	"context"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	GetByID(ctx context.Context, id uint) (*model.Invoice, error)
	GetByXeroID(ctx context.Context, xeroID string) (*model.Invoice, error)
	// GetByNumber matches the natural key (invoice number, customer xero id).
	GetByNumber(ctx context.Context, invoiceNumber, customerXeroID string) (*model.Invoice, error)
	List(ctx context.Context, params entity.PaginationParams) ([]*model.Invoice, int64, error)
}
