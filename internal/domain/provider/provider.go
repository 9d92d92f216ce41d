package provider

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// ProviderType identifies an external accounting platform.
type ProviderType string

const (
	ProviderTypeXero       ProviderType = "xero"
	ProviderTypeQuickBooks ProviderType = "quickbooks"
)

// ParseProviderType accepts a provider name as it appears in config, flags and
// stored rows.
func ParseProviderType(s string) (ProviderType, error) {
	switch p := ProviderType(s); p {
	case ProviderTypeXero, ProviderTypeQuickBooks:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider type: %s", s)
	}
}

// CustomerProvider reads and writes customers (Xero: contacts).
// Get returns (nil, nil) when the provider reports the record does not exist.
type CustomerProvider interface {
	GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error)
	CreateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error)
	UpdateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error)
}

// InvoiceProvider reads and writes invoices.
type InvoiceProvider interface {
	GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error)
	CreateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error)
	UpdateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error)
}

// QuoteProvider reads and writes quotes (QuickBooks: estimates).
type QuoteProvider interface {
	GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error)
	CreateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error)
	UpdateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error)
}

// QuoteLister lists every quote, for providers that lack granular quote webhooks.
type QuoteLister interface {
	ListQuotes(ctx context.Context) ([]entity.RemoteQuote, error)
}

// TokenSource supplies a valid access token for outbound calls.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (*entity.ProviderToken, error)
}

// OAuthClient talks to a provider's OAuth2 endpoints.
type OAuthClient interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*entity.TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenGrant, error)
}

// TenantResolver is implemented by OAuth clients whose callback does not
// name the connected organisation (Xero). It is asked after the code
// exchange.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, accessToken string) (string, error)
}

// ProviderError is a non-success response or transport failure from a provider.
type ProviderError struct {
	Provider   ProviderType `json:"provider"`
	StatusCode int          `json:"status_code,omitempty"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    string       `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Details != "" {
		return msg + ": " + e.Details
	}
	return msg
}
