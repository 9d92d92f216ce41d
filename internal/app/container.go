// Package app assembles the sync engine from configuration. Both the server
// and the operator CLI build on it.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	handlers "github.com/wekeepgrowing/accounting-sync/internal/adapter/handler/http"
	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/database"
	httpServer "github.com/wekeepgrowing/accounting-sync/internal/infrastructure/http"
	providerFactory "github.com/wekeepgrowing/accounting-sync/internal/infrastructure/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/queue"
	"github.com/wekeepgrowing/accounting-sync/internal/usecase"
)

type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Repos       *database.Repositories
	Coordinator *usecase.SyncCoordinator
	Dispatcher  *usecase.WebhookDispatcher
	Queue       queue.Queue
	XeroTokens  *usecase.TokenManager
	// QuickBooksTokens is nil when no QuickBooks app is configured.
	QuickBooksTokens *usecase.TokenManager
}

// Build opens the database, runs migrations and wires every service.
func Build(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, logger); err != nil {
		_ = database.Close(db, logger)
		return nil, err
	}

	c, err := Wire(cfg, db, logger)
	if err != nil {
		_ = database.Close(db, logger)
		return nil, err
	}
	return c, nil
}

// Wire builds the services on an open database.
func Wire(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Container, error) {
	var encryptor crypto.EncryptionService
	if cfg.Encryption.Key != "" {
		aes, err := crypto.NewAESEncryptionService(cfg.Encryption.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		encryptor = aes
	} else {
		logger.Warn("Encryption key not configured, provider tokens are stored in plaintext")
	}

	repos := database.NewRepositories(db, encryptor, logger)
	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos:  repos,
	}

	factory := providerFactory.NewFactory(cfg, logger)

	xeroOAuth, err := factory.XeroOAuth()
	if err != nil {
		return nil, err
	}
	c.XeroTokens = usecase.NewTokenManager(provider.ProviderTypeXero, repos.Token, xeroOAuth, logger)
	xero, err := factory.Xero(c.XeroTokens)
	if err != nil {
		return nil, err
	}

	var (
		qbCustomers provider.CustomerProvider
		qbInvoices  provider.InvoiceProvider
		qbQuotes    provider.QuoteProvider
	)
	if oauth, err := factory.QuickBooksOAuth(); err == nil {
		c.QuickBooksTokens = usecase.NewTokenManager(provider.ProviderTypeQuickBooks, repos.Token, oauth, logger)
		qb, err := factory.QuickBooks(c.QuickBooksTokens)
		if err != nil {
			return nil, err
		}
		qbCustomers, qbInvoices, qbQuotes = qb, qb, qb
	} else {
		logger.Warn("QuickBooks not configured, syncing with Xero only", zap.Error(err))
	}

	q, err := queue.New(cfg.Queue, logger)
	if err != nil {
		return nil, err
	}
	c.Queue = q

	c.Coordinator = usecase.NewSyncCoordinator(
		repos.Customer,
		usecase.NewCustomerSyncService(repos.Customer, xero, qbCustomers, logger),
		usecase.NewInvoiceSyncService(repos.Invoice, xero, qbInvoices, logger),
		usecase.NewQuoteSyncService(repos.Quote, xero, qbQuotes, logger),
		xero,
		qbCustomers,
		logger,
	)
	c.Dispatcher = usecase.NewWebhookDispatcher(repos.WebhookEvent, c.Coordinator, q, logger).
		WithIdleAfter(idleWindow(cfg.Queue.JobTimeout))

	return c, nil
}

// Worker returns the queue worker pool running the dispatcher.
func (c *Container) Worker() *queue.Worker {
	return queue.NewWorker(c.Queue, c.Dispatcher.Dispatch, c.Config.Queue.Workers, c.Config.Queue.JobTimeout, c.Logger)
}

func (c *Container) HTTPHandlers() httpServer.Handlers {
	h := httpServer.Handlers{
		Customers:         handlers.NewCustomerHandler(c.Coordinator, c.Repos.Customer, c.Logger),
		Invoices:          handlers.NewInvoiceHandler(c.Coordinator, c.Repos.Invoice, c.Logger),
		Quotes:            handlers.NewQuoteHandler(c.Coordinator, c.Repos.Quote, c.Logger),
		Sync:              handlers.NewSyncHandler(c.Coordinator, c.Logger),
		WebhookEvents:     handlers.NewWebhookEventHandler(c.Dispatcher, c.Logger),
		XeroWebhook:       handlers.NewXeroWebhookHandler(c.Dispatcher, c.Config.Webhooks.XeroKey, c.Logger),
		QuickBooksWebhook: handlers.NewQuickBooksWebhookHandler(c.Dispatcher, c.Config.Webhooks.QuickBooksVerifier, c.Logger),
		Queue:             c.Queue,
	}
	if c.XeroTokens != nil {
		h.XeroOAuth = handlers.NewXeroOAuthHandler(c.XeroTokens, c.Logger)
	}
	if c.QuickBooksTokens != nil {
		h.QuickBooksOAuth = handlers.NewQuickBooksOAuthHandler(c.QuickBooksTokens, c.Logger)
	}
	return h
}

// Tokens returns the token manager for a provider, or nil when that
// provider is not configured.
func (c *Container) Tokens(providerType provider.ProviderType) *usecase.TokenManager {
	switch providerType {
	case provider.ProviderTypeXero:
		return c.XeroTokens
	case provider.ProviderTypeQuickBooks:
		return c.QuickBooksTokens
	}
	return nil
}

// idleWindow leaves running jobs five timeouts before replay takes them back.
func idleWindow(jobTimeout time.Duration) time.Duration {
	if idle := 5 * jobTimeout; idle > usecase.DefaultIdleAfter {
		return idle
	}
	return usecase.DefaultIdleAfter
}

func (c *Container) Close() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			c.Logger.Error("Failed to close queue", zap.Error(err))
		}
	}
	if err := database.Close(c.DB, c.Logger); err != nil {
		c.Logger.Error("Failed to close database connection", zap.Error(err))
	}
}
