package repository

import (
	"context"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

// CustomerRepository owns customer rows. Lookups return (nil, nil) when no
// row matches. Create and Update return an error wrapping
// errors.ErrDuplicateEntity on unique index violations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id uint) (*model.Customer, error)
	GetByXeroID(ctx context.Context, xeroID string) (*model.Customer, error)
	GetByQuickBooksID(ctx context.Context, quickBooksID string) (*model.Customer, error)
	GetByDetails(ctx context.Context, name, email, phone, address string) (*model.Customer, error)
	List(ctx context.Context, params entity.PaginationParams) ([]*model.Customer, int64, error)
}
