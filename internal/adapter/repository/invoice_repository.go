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

type invoiceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewInvoiceRepository(db *gorm.DB, logger *zap.Logger) repository.InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Create(invoice).Error; err != nil {
		return wrapWriteError("invoice", err)
	}
	return nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Save(invoice).Error; err != nil {
		r.logger.Error("Failed to update invoice",
			zap.Uint("invoice_id", invoice.ID),
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return wrapWriteError("invoice", err)
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uint) (*model.Invoice, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *invoiceRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Invoice, error) {
	return r.first(ctx, "xero_id = ?", xeroID)
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, invoiceNumber, customerXeroID string) (*model.Invoice, error) {
	return r.first(ctx, "invoice_number = ? AND customer_xero_id = ?", invoiceNumber, customerXeroID)
}

func (r *invoiceRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Invoice, int64, error) {
	params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	var invoices []*model.Invoice
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	return invoices, total, nil
}

func (r *invoiceRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Where(query, args...).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}
