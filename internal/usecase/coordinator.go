package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

// XeroReader is the read side of the Xero API used by the pull paths.
type XeroReader interface {
	GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error)
	GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error)
	GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error)
	ListQuotes(ctx context.Context) ([]entity.RemoteQuote, error)
}

// SyncCoordinator is the entry point for API calls, webhooks and the poller.
// It checks cross-entity invariants and hands writes to the entity sync
// services; it never writes rows itself.
type SyncCoordinator struct {
	customers    repository.CustomerRepository
	customerSync *CustomerSyncService
	invoiceSync  *InvoiceSyncService
	quoteSync    *QuoteSyncService
	xero         XeroReader
	quickBooks   provider.CustomerProvider
	logger       *zap.Logger
}

func NewSyncCoordinator(
	customers repository.CustomerRepository,
	customerSync *CustomerSyncService,
	invoiceSync *InvoiceSyncService,
	quoteSync *QuoteSyncService,
	xero XeroReader,
	quickBooks provider.CustomerProvider,
	logger *zap.Logger,
) *SyncCoordinator {
	return &SyncCoordinator{
		customers:    customers,
		customerSync: customerSync,
		invoiceSync:  invoiceSync,
		quoteSync:    quoteSync,
		xero:         xero,
		quickBooks:   quickBooks,
		logger:       logger,
	}
}

// CheckCustomerLinkage loads the customer and verifies the caller's claimed
// Xero contact id matches the stored one.
func (c *SyncCoordinator) CheckCustomerLinkage(ctx context.Context, customerID uint, claimedXeroID string) (*model.Customer, error) {
	customer, err := c.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: id %d", domainErrors.ErrCustomerNotFound, customerID)
	}

	if stored := deref(customer.XeroID); stored != claimedXeroID {
		c.logger.Warn("Customer linkage mismatch",
			zap.Uint("customer_id", customerID),
			zap.String("stored_xero_id", stored),
			zap.String("claimed_xero_id", claimedXeroID))
		return nil, &domainErrors.LinkageMismatchError{
			CustomerID: customerID,
			Provider:   string(provider.ProviderTypeXero),
			Stored:     stored,
			Claimed:    claimedXeroID,
		}
	}
	return customer, nil
}

// checkQuickBooksClaim applies the same rule to an optional QuickBooks claim.
func checkQuickBooksClaim(customer *model.Customer, claimed string) error {
	if claimed == "" {
		return nil
	}
	if stored := deref(customer.QuickBooksID); stored != claimed {
		return &domainErrors.LinkageMismatchError{
			CustomerID: customer.ID,
			Provider:   string(provider.ProviderTypeQuickBooks),
			Stored:     stored,
			Claimed:    claimed,
		}
	}
	return nil
}

func (c *SyncCoordinator) checkLinkage(ctx context.Context, customerID uint, xeroID, quickBooksID string) error {
	customer, err := c.CheckCustomerLinkage(ctx, customerID, xeroID)
	if err != nil {
		return err
	}
	return checkQuickBooksClaim(customer, quickBooksID)
}

func (c *SyncCoordinator) CreateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	return c.customerSync.SyncCreated(ctx, req)
}

func (c *SyncCoordinator) UpdateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	return c.customerSync.SyncUpdated(ctx, req)
}

func (c *SyncCoordinator) CreateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	if err := c.checkLinkage(ctx, req.CustomerID, req.CustomerXeroID, req.CustomerQuickBooksID); err != nil {
		return nil, err
	}
	return c.invoiceSync.SyncCreated(ctx, req)
}

func (c *SyncCoordinator) UpdateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	if err := c.checkLinkage(ctx, req.CustomerID, req.CustomerXeroID, req.CustomerQuickBooksID); err != nil {
		return nil, err
	}
	return c.invoiceSync.SyncUpdated(ctx, req)
}

func (c *SyncCoordinator) CreateQuote(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error) {
	if err := c.checkLinkage(ctx, req.CustomerID, req.CustomerXeroID, req.CustomerQuickBooksID); err != nil {
		return nil, err
	}
	return c.quoteSync.SyncCreated(ctx, req)
}

func (c *SyncCoordinator) UpdateQuote(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error) {
	if err := c.checkLinkage(ctx, req.CustomerID, req.CustomerXeroID, req.CustomerQuickBooksID); err != nil {
		return nil, err
	}
	return c.quoteSync.SyncUpdated(ctx, req)
}

// PullCustomerFromProvider fetches a Xero contact and upserts it locally.
func (c *SyncCoordinator) PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error) {
	if xeroID == "" {
		return nil, "", domainErrors.ErrMissingExternalID
	}

	remote, err := c.xero.GetCustomer(ctx, xeroID)
	if err != nil {
		return nil, "", &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "get customer", Err: err}
	}
	if remote == nil {
		return nil, "", fmt.Errorf("%w: xero contact %s", domainErrors.ErrNotFound, xeroID)
	}

	return c.customerSync.UpsertFromXero(ctx, remote)
}

// PullInvoiceFromProvider fetches a Xero invoice and upserts it under the
// local customer owning its contact. Invoices for unknown contacts are
// skipped.
func (c *SyncCoordinator) PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error) {
	if xeroID == "" {
		return nil, "", domainErrors.ErrMissingExternalID
	}

	remote, err := c.xero.GetInvoice(ctx, xeroID)
	if err != nil {
		return nil, "", &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "get invoice", Err: err}
	}
	if remote == nil {
		return nil, "", fmt.Errorf("%w: xero invoice %s", domainErrors.ErrNotFound, xeroID)
	}

	customer, err := c.ownerOf(ctx, remote.ContactID)
	if err != nil {
		return nil, "", err
	}
	if customer == nil {
		c.logger.Warn("Skipping invoice for unknown contact",
			zap.String("xero_id", xeroID),
			zap.String("contact_id", remote.ContactID))
		return nil, dto.PullSkipped, nil
	}

	return c.invoiceSync.UpsertFromXero(ctx, remote, customer)
}

// PullQuoteFromProvider is the quote counterpart of PullInvoiceFromProvider.
func (c *SyncCoordinator) PullQuoteFromProvider(ctx context.Context, xeroID string) (*model.Quote, dto.PullOutcome, error) {
	if xeroID == "" {
		return nil, "", domainErrors.ErrMissingExternalID
	}

	remote, err := c.xero.GetQuote(ctx, xeroID)
	if err != nil {
		return nil, "", &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "get quote", Err: err}
	}
	if remote == nil {
		return nil, "", fmt.Errorf("%w: xero quote %s", domainErrors.ErrNotFound, xeroID)
	}

	customer, err := c.ownerOf(ctx, remote.ContactID)
	if err != nil {
		return nil, "", err
	}
	if customer == nil {
		c.logger.Warn("Skipping quote for unknown contact",
			zap.String("xero_id", xeroID),
			zap.String("contact_id", remote.ContactID))
		return nil, dto.PullSkipped, nil
	}

	return c.quoteSync.UpsertFromXero(ctx, remote, customer)
}

// PollQuotesPeriodically lists every Xero quote and reconciles it with the
// local store. A failing quote is logged and counted without stopping the pass.
func (c *SyncCoordinator) PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error) {
	remotes, err := c.xero.ListQuotes(ctx)
	if err != nil {
		return nil, &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "list quotes", Err: err}
	}

	result := &dto.PollResult{Listed: len(remotes)}
	owners := make(map[string]*model.Customer)

	for i := range remotes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		remote := &remotes[i]

		customer, ok := owners[remote.ContactID]
		if !ok {
			customer, err = c.ownerOf(ctx, remote.ContactID)
			if err != nil {
				c.logger.Error("Quote poll: failed to resolve customer",
					zap.String("xero_id", remote.ID),
					zap.String("contact_id", remote.ContactID),
					zap.Error(err))
				result.Failed++
				continue
			}
			owners[remote.ContactID] = customer
		}
		if customer == nil {
			result.Skipped++
			continue
		}

		_, outcome, err := c.quoteSync.UpsertFromXero(ctx, remote, customer)
		if err != nil {
			c.logger.Error("Quote poll: failed to apply quote",
				zap.String("xero_id", remote.ID),
				zap.String("quote_number", remote.Number),
				zap.Error(err))
			result.Failed++
			continue
		}
		switch outcome {
		case dto.PullInserted:
			result.Inserted++
		case dto.PullUpdated:
			result.Updated++
		default:
			result.Skipped++
		}
	}

	c.logger.Info("Quote poll completed",
		zap.Int("listed", result.Listed),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// HandleProviderBCustomerChanged applies a QuickBooks customer change to the
// local store.
func (c *SyncCoordinator) HandleProviderBCustomerChanged(ctx context.Context, quickBooksID string) (*model.Customer, dto.PullOutcome, error) {
	if quickBooksID == "" {
		return nil, "", domainErrors.ErrMissingExternalID
	}

	remote, err := c.quickBooks.GetCustomer(ctx, quickBooksID)
	if err != nil {
		return nil, "", &domainErrors.RemoteError{Provider: string(provider.ProviderTypeQuickBooks), Op: "get customer", Err: err}
	}
	if remote == nil {
		return nil, "", fmt.Errorf("%w: quickbooks customer %s", domainErrors.ErrNotFound, quickBooksID)
	}

	return c.customerSync.UpsertFromQuickBooks(ctx, remote)
}

func (c *SyncCoordinator) ownerOf(ctx context.Context, contactID string) (*model.Customer, error) {
	if contactID == "" {
		return nil, nil
	}
	customer, err := c.customers.GetByXeroID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer for contact %s: %w", contactID, err)
	}
	return customer, nil
}
