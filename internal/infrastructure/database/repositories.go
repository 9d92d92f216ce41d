package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/accounting-sync/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/crypto"
)

// Repositories holds all repository instances
type Repositories struct {
	Customer     domainRepo.CustomerRepository
	Invoice      domainRepo.InvoiceRepository
	Quote        domainRepo.QuoteRepository
	Token        domainRepo.TokenRepository
	WebhookEvent domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, encryptor crypto.EncryptionService, logger *zap.Logger) *Repositories {
	return &Repositories{
		Customer:     repository.NewCustomerRepository(db, logger),
		Invoice:      repository.NewInvoiceRepository(db, logger),
		Quote:        repository.NewQuoteRepository(db, logger),
		Token:        repository.NewTokenRepository(db, encryptor, logger),
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
	}
}
