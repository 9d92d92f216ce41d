package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/provider/quickbooks"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/provider/xero"
)

// Factory creates provider clients from configuration.
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// Xero returns the Xero API client. tokens is normally the token manager.
func (f *Factory) Xero(tokens provider.TokenSource) (*xero.Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("Xero token source not configured")
	}

	return xero.NewClient(f.config.Xero, tokens, f.logger.Named("xero")), nil
}

func (f *Factory) QuickBooks(tokens provider.TokenSource) (*quickbooks.Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("QuickBooks token source not configured")
	}

	return quickbooks.NewClient(f.config.QuickBooks, tokens, f.logger.Named("quickbooks")), nil
}

// XeroOAuth returns the OAuth client for the Xero app.
func (f *Factory) XeroOAuth() (*xero.OAuthClient, error) {
	if f.config.Xero.ClientID == "" || f.config.Xero.ClientSecret == "" {
		return nil, fmt.Errorf("Xero OAuth client credentials not configured")
	}

	return xero.NewOAuthClient(f.config.Xero, f.logger.Named("xero_oauth")), nil
}

// QuickBooksOAuth returns the OAuth client for the QuickBooks app.
func (f *Factory) QuickBooksOAuth() (*quickbooks.OAuthClient, error) {
	if f.config.QuickBooks.ClientID == "" || f.config.QuickBooks.ClientSecret == "" {
		return nil, fmt.Errorf("QuickBooks OAuth client credentials not configured")
	}

	return quickbooks.NewOAuthClient(f.config.QuickBooks, f.logger.Named("quickbooks_oauth")), nil
}
