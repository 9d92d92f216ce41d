package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&model.Customer{},
		&model.Invoice{},
		&model.Quote{},
		&model.ProviderToken{},
		&model.WebhookEvent{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if db.Dialector.Name() == "postgres" {
		if err := createCustomIndexes(db); err != nil {
			logger.Error("Failed to create custom indexes", zap.Error(err))
			return err
		}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express.
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_retryable ON webhook_events (created_at) WHERE status IN ('pending', 'failed')`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_unsynced ON invoices (id) WHERE synced_to_xero = false OR synced_to_quickbooks = false`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_unsynced ON quotes (id) WHERE synced_to_xero = false OR synced_to_quickbooks = false`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
