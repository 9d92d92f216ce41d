package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

// QuoteSyncService mirrors InvoiceSyncService for quotes, which QuickBooks
// stores as estimates.
type QuoteSyncService struct {
	quotes     repository.QuoteRepository
	xero       provider.QuoteProvider
	quickBooks provider.QuoteProvider
	validator  *Validator
	pipeline   *syncPipeline[model.Quote]
	logger     *zap.Logger
	now        func() time.Time
}

func NewQuoteSyncService(
	quotes repository.QuoteRepository,
	xero provider.QuoteProvider,
	quickBooks provider.QuoteProvider,
	logger *zap.Logger,
) *QuoteSyncService {
	s := &QuoteSyncService{
		quotes:     quotes,
		xero:       xero,
		quickBooks: quickBooks,
		validator:  NewValidator(),
		logger:     logger,
		now:        time.Now,
	}
	s.pipeline = newSyncPipeline(entityOps[model.Quote]{
		kind:       "quote",
		insert:     quotes.Create,
		save:       quotes.Update,
		pushA:      s.pushXero,
		linkedB:    func(q *model.Quote) bool { return s.quickBooks != nil && deref(q.CustomerQuickBooksID) != "" },
		pushB:      s.pushQuickBooks,
		setSyncedA: func(q *model.Quote, v bool) { q.SyncedToXero = v },
		setSyncedB: func(q *model.Quote, v bool) { q.SyncedToQuickBooks = v },
	}, logger)
	return s
}

// SyncCreated stores a new quote and pushes it to Xero, then to QuickBooks
// when the request names the customer's QuickBooks id.
func (s *QuoteSyncService) SyncCreated(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	existing, err := s.quotes.GetByNumber(ctx, req.QuoteNumber, req.CustomerXeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing quote: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: quote %s already exists for this customer", domainErrors.ErrDuplicateEntity, req.QuoteNumber)
	}

	quote := &model.Quote{
		QuoteNumber:          req.QuoteNumber,
		CustomerID:           req.CustomerID,
		CustomerXeroID:       stringPtr(req.CustomerXeroID),
		CustomerQuickBooksID: optionalString(req.CustomerQuickBooksID),
		Description:          req.Description,
		TotalAmount:          req.TotalAmount,
		ExpiryDate:           s.dateOrDefault(req.ExpiryDate),
	}
	if err := s.pipeline.create(ctx, quote); err != nil {
		if quote.ID == 0 {
			return nil, err
		}
		return quote, err
	}

	s.logger.Info("Quote synced",
		zap.Uint("quote_id", quote.ID),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Stringp("xero_id", quote.XeroID),
		zap.Stringp("quickbooks_id", quote.QuickBooksID))
	return quote, nil
}

// SyncUpdated applies req to the quote identified by req.QuoteXeroID.
func (s *QuoteSyncService) SyncUpdated(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error) {
	if strings.TrimSpace(req.QuoteXeroID) == "" {
		return nil, domainErrors.ErrMissingExternalID
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetByXeroID(ctx, req.QuoteXeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if quote == nil {
		return nil, fmt.Errorf("%w: quote with xero id %s", domainErrors.ErrNotFound, req.QuoteXeroID)
	}

	err = s.pipeline.update(ctx, quote, func(q *model.Quote) {
		q.QuoteNumber = req.QuoteNumber
		q.CustomerID = req.CustomerID
		q.CustomerXeroID = stringPtr(req.CustomerXeroID)
		q.CustomerQuickBooksID = optionalString(req.CustomerQuickBooksID)
		q.Description = req.Description
		q.TotalAmount = req.TotalAmount
		if req.ExpiryDate != nil {
			q.ExpiryDate = *req.ExpiryDate
		}
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *QuoteSyncService) validate(req *dto.QuoteRequest) error {
	req.QuoteNumber = strings.TrimSpace(req.QuoteNumber)
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if req.TotalAmount.IsNegative() {
		return domainErrors.NewValidationError("totalAmount", "must not be negative")
	}
	return nil
}

func (s *QuoteSyncService) dateOrDefault(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.now().Add(defaultTerm)
	}
	return *t
}

func (s *QuoteSyncService) pushXero(ctx context.Context, q *model.Quote, update bool) error {
	in := &entity.QuoteInput{
		CustomerRemoteID: deref(q.CustomerXeroID),
		Number:           q.QuoteNumber,
		Description:      q.Description,
		Total:            q.TotalAmount,
		ExpiryDate:       q.ExpiryDate,
	}

	var (
		remote *entity.RemoteQuote
		err    error
	)
	if update {
		in.RemoteID = deref(q.XeroID)
		remote, err = s.xero.UpdateQuote(ctx, in)
	} else {
		remote, err = s.xero.CreateQuote(ctx, in)
	}
	if err != nil {
		return err
	}

	if remote.ID != "" {
		q.XeroID = stringPtr(remote.ID)
	}
	if !update {
		// Xero assigns quote numbers and may recompute the total.
		if remote.Number != "" {
			q.QuoteNumber = remote.Number
		}
		if !remote.Total.IsZero() {
			q.TotalAmount = remote.Total
		}
	}
	if remote.UpdatedAt != nil {
		q.RemoteUpdatedAt = remote.UpdatedAt
	}
	return nil
}

func (s *QuoteSyncService) pushQuickBooks(ctx context.Context, q *model.Quote) error {
	in := &entity.QuoteInput{
		CustomerRemoteID: deref(q.CustomerQuickBooksID),
		Number:           q.QuoteNumber,
		Description:      q.Description,
		Total:            q.TotalAmount,
		ExpiryDate:       q.ExpiryDate,
	}

	var (
		remote *entity.RemoteQuote
		err    error
	)
	if id := deref(q.QuickBooksID); id != "" {
		in.RemoteID = id
		remote, err = s.quickBooks.UpdateQuote(ctx, in)
	} else {
		remote, err = s.quickBooks.CreateQuote(ctx, in)
	}
	if err != nil {
		return err
	}
	if remote.ID != "" {
		q.QuickBooksID = stringPtr(remote.ID)
	}
	return nil
}

// UpsertFromXero applies a quote fetched from Xero to the local store under
// customer, with the same staleness rule as invoices.
func (s *QuoteSyncService) UpsertFromXero(ctx context.Context, remote *entity.RemoteQuote, customer *model.Customer) (*model.Quote, dto.PullOutcome, error) {
	number := remote.Number
	if number == "" {
		number = remote.ID
	}

	quote, err := s.quotes.GetByXeroID(ctx, remote.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load quote: %w", err)
	}
	if quote == nil {
		quote, err = s.quotes.GetByNumber(ctx, number, deref(customer.XeroID))
		if err != nil {
			return nil, "", fmt.Errorf("failed to match quote by number: %w", err)
		}
		if quote != nil && quote.XeroID != nil && *quote.XeroID != remote.ID {
			return nil, "", fmt.Errorf("%w: quote %s is linked to xero id %s", domainErrors.ErrDuplicateEntity, number, *quote.XeroID)
		}
	} else {
		if !quote.SyncedToXero {
			s.logger.Info("Skipping Xero pull, local change not yet synced",
				zap.Uint("quote_id", quote.ID),
				zap.String("xero_id", remote.ID))
			return quote, dto.PullSkipped, nil
		}
		if !IsRemoteNewer(quote.RemoteUpdatedAt, remote.UpdatedAt) {
			return quote, dto.PullSkipped, nil
		}
	}

	if quote == nil {
		quote = &model.Quote{SyncedToXero: true}
		applyRemoteQuote(quote, remote, customer, number, s.now)
		if err := s.quotes.Create(ctx, quote); err != nil {
			return nil, "", err
		}
		s.logger.Info("Quote inserted from Xero",
			zap.Uint("quote_id", quote.ID),
			zap.String("xero_id", remote.ID),
			zap.Uint("customer_id", customer.ID))
		return quote, dto.PullInserted, nil
	}

	if quote.QuickBooksID != nil {
		quote.SyncedToQuickBooks = false
	}
	quote.SyncedToXero = true
	applyRemoteQuote(quote, remote, customer, number, s.now)
	if err := s.quotes.Update(ctx, quote); err != nil {
		return nil, "", err
	}
	s.logger.Info("Quote updated from Xero",
		zap.Uint("quote_id", quote.ID),
		zap.String("xero_id", remote.ID))
	return quote, dto.PullUpdated, nil
}

func applyRemoteQuote(q *model.Quote, remote *entity.RemoteQuote, customer *model.Customer, number string, now func() time.Time) {
	q.QuoteNumber = number
	q.XeroID = stringPtr(remote.ID)
	q.CustomerID = customer.ID
	q.CustomerXeroID = customer.XeroID
	q.CustomerQuickBooksID = customer.QuickBooksID
	q.Description = remote.Description
	q.TotalAmount = remote.Total
	switch {
	case remote.ExpiryDate != nil:
		q.ExpiryDate = *remote.ExpiryDate
	case q.ExpiryDate.IsZero():
		q.ExpiryDate = now().Add(defaultTerm)
	}
	q.RemoteUpdatedAt = remote.UpdatedAt
}
