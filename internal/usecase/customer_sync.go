package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

// CustomerSyncService creates and updates customers locally and in both
// providers. Customers are written to QuickBooks whenever a QuickBooks
// provider is configured; quickBooks may be nil.
type CustomerSyncService struct {
	customers  repository.CustomerRepository
	xero       provider.CustomerProvider
	quickBooks provider.CustomerProvider
	validator  *Validator
	pipeline   *syncPipeline[model.Customer]
	logger     *zap.Logger
}

func NewCustomerSyncService(
	customers repository.CustomerRepository,
	xero provider.CustomerProvider,
	quickBooks provider.CustomerProvider,
	logger *zap.Logger,
) *CustomerSyncService {
	s := &CustomerSyncService{
		customers:  customers,
		xero:       xero,
		quickBooks: quickBooks,
		validator:  NewValidator(),
		logger:     logger,
	}
	s.pipeline = newSyncPipeline(entityOps[model.Customer]{
		kind:       "customer",
		insert:     customers.Create,
		save:       customers.Update,
		pushA:      s.pushXero,
		linkedB:    func(*model.Customer) bool { return s.quickBooks != nil },
		pushB:      s.pushQuickBooks,
		setSyncedA: func(c *model.Customer, v bool) { c.SyncedToXero = v },
		setSyncedB: func(c *model.Customer, v bool) { c.SyncedToQuickBooks = v },
	}, logger)
	return s
}

// SyncCreated stores a new customer and pushes it to Xero and QuickBooks.
func (s *CustomerSyncService) SyncCreated(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	normalizeCustomerRequest(req)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.customers.GetByDetails(ctx, req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing customer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a customer with the same name, email, phone and address already exists", domainErrors.ErrDuplicateEntity)
	}

	customer := &model.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := s.pipeline.create(ctx, customer); err != nil {
		return customerOrNil(customer), err
	}

	s.logger.Info("Customer synced",
		zap.Uint("customer_id", customer.ID),
		zap.Stringp("xero_id", customer.XeroID),
		zap.Stringp("quickbooks_id", customer.QuickBooksID))
	return customer, nil
}

// SyncUpdated applies req to the customer identified by req.XeroID.
func (s *CustomerSyncService) SyncUpdated(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	if strings.TrimSpace(req.XeroID) == "" {
		return nil, domainErrors.ErrMissingExternalID
	}
	normalizeCustomerRequest(req)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByXeroID(ctx, req.XeroID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer with xero id %s", domainErrors.ErrNotFound, req.XeroID)
	}

	err = s.pipeline.update(ctx, customer, func(c *model.Customer) {
		c.Name = req.Name
		c.Email = req.Email
		c.Phone = req.Phone
		c.Address = req.Address
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerSyncService) pushXero(ctx context.Context, c *model.Customer, update bool) error {
	in := customerInput(c)
	var (
		remote *entity.RemoteCustomer
		err    error
	)
	if update {
		in.RemoteID = deref(c.XeroID)
		remote, err = s.xero.UpdateCustomer(ctx, in)
	} else {
		remote, err = s.xero.CreateCustomer(ctx, in)
	}
	if err != nil {
		return err
	}
	if remote.ID != "" {
		c.XeroID = stringPtr(remote.ID)
	}
	return nil
}

func (s *CustomerSyncService) pushQuickBooks(ctx context.Context, c *model.Customer) error {
	in := customerInput(c)
	var (
		remote *entity.RemoteCustomer
		err    error
	)
	if id := deref(c.QuickBooksID); id != "" {
		in.RemoteID = id
		remote, err = s.quickBooks.UpdateCustomer(ctx, in)
	} else {
		remote, err = s.quickBooks.CreateCustomer(ctx, in)
	}
	if err != nil {
		return err
	}
	if remote.ID != "" {
		c.QuickBooksID = stringPtr(remote.ID)
	}
	if remote.SyncToken != "" {
		c.SyncToken = stringPtr(remote.SyncToken)
	}
	return nil
}

func customerInput(c *model.Customer) *entity.CustomerInput {
	return &entity.CustomerInput{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

func normalizeCustomerRequest(req *dto.CustomerRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
}

// customerOrNil returns the row when it was persisted, so callers can report
// a half-synced customer.
func customerOrNil(c *model.Customer) *model.Customer {
	if c.ID == 0 {
		return nil
	}
	return c
}

func stringPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UpsertFromXero applies a contact fetched from Xero to the local store. The
// row is found by Xero id, then by natural key for customers created locally
// before Xero assigned an id. Rows with an unsynced local change are left
// alone.
func (s *CustomerSyncService) UpsertFromXero(ctx context.Context, remote *entity.RemoteCustomer) (*model.Customer, dto.PullOutcome, error) {
	customer, err := s.customers.GetByXeroID(ctx, remote.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		customer, err = s.customers.GetByDetails(ctx, remote.Name, remote.Email, remote.Phone, remote.Address)
		if err != nil {
			return nil, "", fmt.Errorf("failed to match customer by details: %w", err)
		}
		if customer != nil && customer.XeroID != nil && *customer.XeroID != remote.ID {
			return nil, "", &domainErrors.LinkageMismatchError{
				CustomerID: customer.ID,
				Provider:   string(provider.ProviderTypeXero),
				Stored:     *customer.XeroID,
				Claimed:    remote.ID,
			}
		}
	} else if !customer.SyncedToXero {
		s.logger.Info("Skipping Xero pull, local change not yet synced",
			zap.Uint("customer_id", customer.ID),
			zap.String("xero_id", remote.ID))
		return customer, dto.PullSkipped, nil
	}

	if customer == nil {
		customer = &model.Customer{
			Name:         remote.Name,
			Email:        remote.Email,
			Phone:        remote.Phone,
			Address:      remote.Address,
			XeroID:       stringPtr(remote.ID),
			SyncedToXero: true,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, "", err
		}
		s.logger.Info("Customer inserted from Xero",
			zap.Uint("customer_id", customer.ID),
			zap.String("xero_id", remote.ID))
		return customer, dto.PullInserted, nil
	}

	changed := applyRemoteCustomer(customer, remote)
	if !changed && deref(customer.XeroID) == remote.ID && customer.SyncedToXero {
		return customer, dto.PullSkipped, nil
	}
	if changed && customer.QuickBooksID != nil {
		// QuickBooks still holds the previous values.
		customer.SyncedToQuickBooks = false
	}
	customer.XeroID = stringPtr(remote.ID)
	customer.SyncedToXero = true
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, "", err
	}
	s.logger.Info("Customer updated from Xero",
		zap.Uint("customer_id", customer.ID),
		zap.String("xero_id", remote.ID),
		zap.Bool("fields_changed", changed))
	return customer, dto.PullUpdated, nil
}

// UpsertFromQuickBooks applies a QuickBooks customer to the local store,
// refreshing the stored SyncToken. Unknown customers are inserted linked to
// QuickBooks only.
func (s *CustomerSyncService) UpsertFromQuickBooks(ctx context.Context, remote *entity.RemoteCustomer) (*model.Customer, dto.PullOutcome, error) {
	customer, err := s.customers.GetByQuickBooksID(ctx, remote.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		customer, err = s.customers.GetByDetails(ctx, remote.Name, remote.Email, remote.Phone, remote.Address)
		if err != nil {
			return nil, "", fmt.Errorf("failed to match customer by details: %w", err)
		}
		if customer != nil && customer.QuickBooksID != nil && *customer.QuickBooksID != remote.ID {
			return nil, "", &domainErrors.LinkageMismatchError{
				CustomerID: customer.ID,
				Provider:   string(provider.ProviderTypeQuickBooks),
				Stored:     *customer.QuickBooksID,
				Claimed:    remote.ID,
			}
		}
	} else if !customer.SyncedToQuickBooks {
		s.logger.Info("Skipping QuickBooks pull, local change not yet synced",
			zap.Uint("customer_id", customer.ID),
			zap.String("quickbooks_id", remote.ID))
		return customer, dto.PullSkipped, nil
	}

	if customer == nil {
		customer = &model.Customer{
			Name:               remote.Name,
			Email:              remote.Email,
			Phone:              remote.Phone,
			Address:            remote.Address,
			QuickBooksID:       stringPtr(remote.ID),
			SyncToken:          optionalString(remote.SyncToken),
			SyncedToQuickBooks: true,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, "", err
		}
		s.logger.Info("Customer inserted from QuickBooks",
			zap.Uint("customer_id", customer.ID),
			zap.String("quickbooks_id", remote.ID))
		return customer, dto.PullInserted, nil
	}

	changed := applyRemoteCustomer(customer, remote)
	if !changed && deref(customer.QuickBooksID) == remote.ID && deref(customer.SyncToken) == remote.SyncToken {
		return customer, dto.PullSkipped, nil
	}
	if changed && customer.XeroID != nil {
		customer.SyncedToXero = false
	}
	customer.QuickBooksID = stringPtr(remote.ID)
	if remote.SyncToken != "" {
		customer.SyncToken = stringPtr(remote.SyncToken)
	}
	customer.SyncedToQuickBooks = true
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, "", err
	}
	s.logger.Info("Customer updated from QuickBooks",
		zap.Uint("customer_id", customer.ID),
		zap.String("quickbooks_id", remote.ID),
		zap.Bool("fields_changed", changed))
	return customer, dto.PullUpdated, nil
}

// applyRemoteCustomer copies the remote fields onto c and reports whether any
// of them differed.
func applyRemoteCustomer(c *model.Customer, remote *entity.RemoteCustomer) bool {
	changed := c.Name != remote.Name || c.Email != remote.Email ||
		c.Phone != remote.Phone || c.Address != remote.Address
	c.Name = remote.Name
	c.Email = remote.Email
	c.Phone = remote.Phone
	c.Address = remote.Address
	return changed
}
