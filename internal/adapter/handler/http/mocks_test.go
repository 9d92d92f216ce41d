package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) CreateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCoordinator) UpdateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCoordinator) CreateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockCoordinator) UpdateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockCoordinator) PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error) {
	args := m.Called(ctx, xeroID)
	customer, _ := args.Get(0).(*model.Customer)
	return customer, args.Get(1).(dto.PullOutcome), args.Error(2)
}

func (m *MockCoordinator) PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error) {
	args := m.Called(ctx, xeroID)
	invoice, _ := args.Get(0).(*model.Invoice)
	return invoice, args.Get(1).(dto.PullOutcome), args.Error(2)
}

func (m *MockCoordinator) PullQuoteFromProvider(ctx context.Context, xeroID string) (*model.Quote, dto.PullOutcome, error) {
	args := m.Called(ctx, xeroID)
	quote, _ := args.Get(0).(*model.Quote)
	return quote, args.Get(1).(dto.PullOutcome), args.Error(2)
}

func (m *MockCoordinator) PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PollResult), args.Error(1)
}

type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, events []*model.WebhookEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

type MockWebhookEvents struct {
	mock.Mock
}

func (m *MockWebhookEvents) ListEvents(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEvents) GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEvents) Replay(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) ConnectURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockAuthorizer) HandleAuthCallback(ctx context.Context, code, tenantID string) (*entity.ProviderToken, error) {
	args := m.Called(ctx, code, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderToken), args.Error(1)
}

func strPtr(s string) *string {
	return &s
}
