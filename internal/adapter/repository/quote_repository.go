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

type quoteRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewQuoteRepository(db *gorm.DB, logger *zap.Logger) repository.QuoteRepository {
	return &quoteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Create(quote).Error; err != nil {
		return wrapWriteError("quote", err)
	}
	return nil
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Save(quote).Error; err != nil {
		r.logger.Error("Failed to update quote",
			zap.Uint("quote_id", quote.ID),
			zap.String("quote_number", quote.QuoteNumber),
			zap.Error(err))
		return wrapWriteError("quote", err)
	}
	return nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id uint) (*model.Quote, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *quoteRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Quote, error) {
	return r.first(ctx, "xero_id = ?", xeroID)
}

func (r *quoteRepository) GetByNumber(ctx context.Context, quoteNumber, customerXeroID string) (*model.Quote, error) {
	return r.first(ctx, "quote_number = ? AND customer_xero_id = ?", quoteNumber, customerXeroID)
}

func (r *quoteRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Quote, int64, error) {
	params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Quote{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	var quotes []*model.Quote
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}

	return quotes, total, nil
}

func (r *quoteRepository) first(ctx context.Context, query string, args ...interface{}) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).Where(query, args...).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}
