package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Customer, error) {
	args := m.Called(ctx, xeroID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByQuickBooksID(ctx context.Context, quickBooksID string) (*model.Customer, error) {
	args := m.Called(ctx, quickBooksID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByDetails(ctx context.Context, name, email, phone, address string) (*model.Customer, error) {
	args := m.Called(ctx, name, email, phone, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Customer, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.Customer), args.Get(1).(int64), args.Error(2)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uint) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Invoice, error) {
	args := m.Called(ctx, xeroID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByNumber(ctx context.Context, invoiceNumber, customerXeroID string) (*model.Invoice, error) {
	args := m.Called(ctx, invoiceNumber, customerXeroID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Invoice, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.Invoice), args.Get(1).(int64), args.Error(2)
}

// MockQuoteRepository is a mock implementation of QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id uint) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockQuoteRepository) GetByXeroID(ctx context.Context, xeroID string) (*model.Quote, error) {
	args := m.Called(ctx, xeroID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockQuoteRepository) GetByNumber(ctx context.Context, quoteNumber, customerXeroID string) (*model.Quote, error) {
	args := m.Called(ctx, quoteNumber, customerXeroID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockQuoteRepository) List(ctx context.Context, params entity.PaginationParams) ([]*model.Quote, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*model.Quote), args.Get(1).(int64), args.Error(2)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Get(ctx context.Context, provider string) (*entity.ProviderToken, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderToken), args.Error(1)
}

func (m *MockTokenRepository) Save(ctx context.Context, token *entity.ProviderToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) SaveEvent(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) GetEvent(ctx context.Context, id string) (*model.WebhookEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkQueued(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkProcessing(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, id string, err error) error {
	args := m.Called(ctx, id, err)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) GetRetryableEvents(ctx context.Context, idleSince time.Time, limit int) ([]*model.WebhookEvent, error) {
	args := m.Called(ctx, idleSince, limit)
	return args.Get(0).([]*model.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) ListByStatus(ctx context.Context, status model.WebhookStatus, limit int) ([]*model.WebhookEvent, error) {
	args := m.Called(ctx, status, limit)
	return args.Get(0).([]*model.WebhookEvent), args.Error(1)
}

// MockCustomerProvider is a mock implementation of CustomerProvider
type MockCustomerProvider struct {
	mock.Mock
}

func (m *MockCustomerProvider) GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteCustomer), args.Error(1)
}

func (m *MockCustomerProvider) CreateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteCustomer), args.Error(1)
}

func (m *MockCustomerProvider) UpdateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteCustomer), args.Error(1)
}

// MockInvoiceProvider is a mock implementation of InvoiceProvider
type MockInvoiceProvider struct {
	mock.Mock
}

func (m *MockInvoiceProvider) GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteInvoice), args.Error(1)
}

func (m *MockInvoiceProvider) CreateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteInvoice), args.Error(1)
}

func (m *MockInvoiceProvider) UpdateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteInvoice), args.Error(1)
}

// MockQuoteProvider is a mock implementation of QuoteProvider
type MockQuoteProvider struct {
	mock.Mock
}

func (m *MockQuoteProvider) GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteQuote), args.Error(1)
}

func (m *MockQuoteProvider) CreateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteQuote), args.Error(1)
}

func (m *MockQuoteProvider) UpdateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteQuote), args.Error(1)
}

// MockXeroReader is a mock implementation of XeroReader
type MockXeroReader struct {
	mock.Mock
}

func (m *MockXeroReader) GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteCustomer), args.Error(1)
}

func (m *MockXeroReader) GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteInvoice), args.Error(1)
}

func (m *MockXeroReader) GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteQuote), args.Error(1)
}

func (m *MockXeroReader) ListQuotes(ctx context.Context) ([]entity.RemoteQuote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RemoteQuote), args.Error(1)
}

// MockOAuthClient is a mock implementation of OAuthClient
type MockOAuthClient struct {
	mock.Mock
}

func (m *MockOAuthClient) AuthorizeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthClient) ExchangeCode(ctx context.Context, code string) (*entity.TokenGrant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TokenGrant), args.Error(1)
}

func (m *MockOAuthClient) Refresh(ctx context.Context, refreshToken string) (*entity.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TokenGrant), args.Error(1)
}

// MockSyncTrigger is a mock implementation of SyncTrigger
type MockSyncTrigger struct {
	mock.Mock
}

func (m *MockSyncTrigger) PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error) {
	args := m.Called(ctx, xeroID)
	return nil, args.Get(0).(dto.PullOutcome), args.Error(1)
}

func (m *MockSyncTrigger) PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error) {
	args := m.Called(ctx, xeroID)
	return nil, args.Get(0).(dto.PullOutcome), args.Error(1)
}

func (m *MockSyncTrigger) PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PollResult), args.Error(1)
}

func (m *MockSyncTrigger) HandleProviderBCustomerChanged(ctx context.Context, quickBooksID string) (*model.Customer, dto.PullOutcome, error) {
	args := m.Called(ctx, quickBooksID)
	return nil, args.Get(0).(dto.PullOutcome), args.Error(1)
}

// MockJobPublisher is a mock implementation of JobPublisher
type MockJobPublisher struct {
	mock.Mock
}

func (m *MockJobPublisher) Enqueue(ctx context.Context, job entity.WebhookJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

// MockTenantOAuthClient is a MockOAuthClient that also resolves tenants
type MockTenantOAuthClient struct {
	MockOAuthClient
}

func (m *MockTenantOAuthClient) ResolveTenant(ctx context.Context, accessToken string) (string, error) {
	args := m.Called(ctx, accessToken)
	return args.String(0), args.Error(1)
}
