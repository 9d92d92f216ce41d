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

// defaultTerm is applied when an invoice has no due date or a quote no expiry.
const defaultTerm = 30 * 24 * time.Hour

// InvoiceSyncService creates and updates invoices locally and in both
// providers. Callers are expected to have checked customer linkage.
type InvoiceSyncService struct {
	invoices   repository.InvoiceRepository
	xero       provider.InvoiceProvider
	quickBooks provider.InvoiceProvider
	validator  *Validator
	pipeline   *syncPipeline[model.Invoice]
	logger     *zap.Logger
	now        func() time.Time
}

func NewInvoiceSyncService(
	invoices repository.InvoiceRepository,
	xero provider.InvoiceProvider,
	quickBooks provider.InvoiceProvider,
	logger *zap.Logger,
) *InvoiceSyncService {
	s := &InvoiceSyncService{
		invoices:   invoices,
		xero:       xero,
		quickBooks: quickBooks,
		validator:  NewValidator(),
		logger:     logger,
		now:        time.Now,
	}
	s.pipeline = newSyncPipeline(entityOps[model.Invoice]{
		kind:       "invoice",
		insert:     invoices.Create,
		save:       invoices.Update,
		pushA:      s.pushXero,
		linkedB:    func(inv *model.Invoice) bool { return s.quickBooks != nil && deref(inv.CustomerQuickBooksID) != "" },
		pushB:      s.pushQuickBooks,
		setSyncedA: func(inv *model.Invoice, v bool) { inv.SyncedToXero = v },
		setSyncedB: func(inv *model.Invoice, v bool) { inv.SyncedToQuickBooks = v },
	}, logger)
	return s
}

// SyncCreated stores a new invoice and pushes it to Xero, then to QuickBooks
// when the request names the customer's QuickBooks id.
func (s *InvoiceSyncService) SyncCreated(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	existing, err := s.invoices.GetByNumber(ctx, req.InvoiceNumber, req.CustomerXeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: invoice %s already exists for this customer", domainErrors.ErrDuplicateEntity, req.InvoiceNumber)
	}

	invoice := &model.Invoice{
		InvoiceNumber:        req.InvoiceNumber,
		CustomerID:           req.CustomerID,
		CustomerXeroID:       stringPtr(req.CustomerXeroID),
		CustomerQuickBooksID: optionalString(req.CustomerQuickBooksID),
		Description:          req.Description,
		TotalAmount:          req.TotalAmount,
		DueDate:              s.dateOrDefault(req.DueDate),
	}
	if err := s.pipeline.create(ctx, invoice); err != nil {
		if invoice.ID == 0 {
			return nil, err
		}
		return invoice, err
	}

	s.logger.Info("Invoice synced",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Stringp("xero_id", invoice.XeroID),
		zap.Stringp("quickbooks_id", invoice.QuickBooksID))
	return invoice, nil
}

// SyncUpdated applies req to the invoice identified by req.InvoiceXeroID.
func (s *InvoiceSyncService) SyncUpdated(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	if strings.TrimSpace(req.InvoiceXeroID) == "" {
		return nil, domainErrors.ErrMissingExternalID
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	invoice, err := s.invoices.GetByXeroID(ctx, req.InvoiceXeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice with xero id %s", domainErrors.ErrNotFound, req.InvoiceXeroID)
	}

	err = s.pipeline.update(ctx, invoice, func(inv *model.Invoice) {
		inv.InvoiceNumber = req.InvoiceNumber
		inv.CustomerID = req.CustomerID
		inv.CustomerXeroID = stringPtr(req.CustomerXeroID)
		inv.CustomerQuickBooksID = optionalString(req.CustomerQuickBooksID)
		inv.Description = req.Description
		inv.TotalAmount = req.TotalAmount
		if req.DueDate != nil {
			inv.DueDate = *req.DueDate
		}
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceSyncService) validate(req *dto.InvoiceRequest) error {
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if req.TotalAmount.IsNegative() {
		return domainErrors.NewValidationError("totalAmount", "must not be negative")
	}
	return nil
}

func (s *InvoiceSyncService) dateOrDefault(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.now().Add(defaultTerm)
	}
	return *t
}

func (s *InvoiceSyncService) pushXero(ctx context.Context, inv *model.Invoice, update bool) error {
	in := &entity.InvoiceInput{
		CustomerRemoteID: deref(inv.CustomerXeroID),
		Number:           inv.InvoiceNumber,
		Description:      inv.Description,
		Total:            inv.TotalAmount,
		DueDate:          inv.DueDate,
	}

	var (
		remote *entity.RemoteInvoice
		err    error
	)
	if update {
		in.RemoteID = deref(inv.XeroID)
		remote, err = s.xero.UpdateInvoice(ctx, in)
	} else {
		remote, err = s.xero.CreateInvoice(ctx, in)
	}
	if err != nil {
		return err
	}

	if remote.ID != "" {
		inv.XeroID = stringPtr(remote.ID)
	}
	if !update {
		// Xero may assign its own number and recompute the total.
		if remote.Number != "" {
			inv.InvoiceNumber = remote.Number
		}
		if !remote.Total.IsZero() {
			inv.TotalAmount = remote.Total
		}
	}
	if remote.UpdatedAt != nil {
		inv.RemoteUpdatedAt = remote.UpdatedAt
	}
	return nil
}

func (s *InvoiceSyncService) pushQuickBooks(ctx context.Context, inv *model.Invoice) error {
	in := &entity.InvoiceInput{
		CustomerRemoteID: deref(inv.CustomerQuickBooksID),
		Number:           inv.InvoiceNumber,
		Description:      inv.Description,
		Total:            inv.TotalAmount,
		DueDate:          inv.DueDate,
	}

	var (
		remote *entity.RemoteInvoice
		err    error
	)
	if id := deref(inv.QuickBooksID); id != "" {
		in.RemoteID = id
		remote, err = s.quickBooks.UpdateInvoice(ctx, in)
	} else {
		remote, err = s.quickBooks.CreateInvoice(ctx, in)
	}
	if err != nil {
		return err
	}
	if remote.ID != "" {
		inv.QuickBooksID = stringPtr(remote.ID)
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UpsertFromXero applies an invoice fetched from Xero to the local store
// under customer. A stored row is only overwritten when Xero reports a newer
// modification time, or when no remote time was recorded yet.
func (s *InvoiceSyncService) UpsertFromXero(ctx context.Context, remote *entity.RemoteInvoice, customer *model.Customer) (*model.Invoice, dto.PullOutcome, error) {
	number := remote.Number
	if number == "" {
		number = remote.ID
	}

	invoice, err := s.invoices.GetByXeroID(ctx, remote.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load invoice: %w", err)
	}
	if invoice == nil {
		invoice, err = s.invoices.GetByNumber(ctx, number, deref(customer.XeroID))
		if err != nil {
			return nil, "", fmt.Errorf("failed to match invoice by number: %w", err)
		}
		if invoice != nil && invoice.XeroID != nil && *invoice.XeroID != remote.ID {
			return nil, "", fmt.Errorf("%w: invoice %s is linked to xero id %s", domainErrors.ErrDuplicateEntity, number, *invoice.XeroID)
		}
	} else {
		if !invoice.SyncedToXero {
			s.logger.Info("Skipping Xero pull, local change not yet synced",
				zap.Uint("invoice_id", invoice.ID),
				zap.String("xero_id", remote.ID))
			return invoice, dto.PullSkipped, nil
		}
		if !IsRemoteNewer(invoice.RemoteUpdatedAt, remote.UpdatedAt) {
			return invoice, dto.PullSkipped, nil
		}
	}

	if invoice == nil {
		invoice = &model.Invoice{SyncedToXero: true}
		applyRemoteInvoice(invoice, remote, customer, number, s.now)
		if err := s.invoices.Create(ctx, invoice); err != nil {
			return nil, "", err
		}
		s.logger.Info("Invoice inserted from Xero",
			zap.Uint("invoice_id", invoice.ID),
			zap.String("xero_id", remote.ID),
			zap.Uint("customer_id", customer.ID))
		return invoice, dto.PullInserted, nil
	}

	if invoice.QuickBooksID != nil {
		invoice.SyncedToQuickBooks = false
	}
	invoice.SyncedToXero = true
	applyRemoteInvoice(invoice, remote, customer, number, s.now)
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, "", err
	}
	s.logger.Info("Invoice updated from Xero",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("xero_id", remote.ID))
	return invoice, dto.PullUpdated, nil
}

func applyRemoteInvoice(inv *model.Invoice, remote *entity.RemoteInvoice, customer *model.Customer, number string, now func() time.Time) {
	inv.InvoiceNumber = number
	inv.XeroID = stringPtr(remote.ID)
	inv.CustomerID = customer.ID
	inv.CustomerXeroID = customer.XeroID
	inv.CustomerQuickBooksID = customer.QuickBooksID
	inv.Description = remote.Description
	inv.TotalAmount = remote.Total
	switch {
	case remote.DueDate != nil:
		inv.DueDate = *remote.DueDate
	case inv.DueDate.IsZero():
		inv.DueDate = now().Add(defaultTerm)
	}
	inv.RemoteUpdatedAt = remote.UpdatedAt
}

// IsRemoteNewer reports whether a remote modification time should replace
// the stored one. A missing stored time counts as stale. A missing remote
// time cannot be ordered and is applied.
func IsRemoteNewer(stored, remote *time.Time) bool {
	if stored == nil || remote == nil {
		return true
	}
	return remote.After(*stored)
}
