package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

type customerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCustomerRepository(db *gorm.DB, logger *zap.Logger) repository.CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return wrapWriteError("customer", err)
	}
	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		r.logger.Error("Failed to update customer",
			zap.Uint("customer_id", customer.ID),
			zap.Error(err))
		return wrapWriteError("customer", err)
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *customerRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Customer, error) {
	return r.first(ctx, "xero_id = ?", xeroID)
}

func (r *customerRepository) GetByQuickBooksID(ctx context.Context, quickBooksID string) (*model.Customer, error) {
	return r.first(ctx, "quickbooks_id = ?", quickBooksID)
}

func (r *customerRepository) GetByDetails(ctx context.Context, name, email, phone, address string) (*model.Customer, error) {
	return r.first(ctx, "name = ? AND email = ? AND phone = ? AND address = ?", name, email, phone, address)
}

func (r *customerRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Customer, int64, error) {
	params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var customers []*model.Customer
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&customers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, total, nil
}

func (r *customerRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where(query, args...).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}
