package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wekeepgrowing/accounting-sync/internal/app"
	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
	"github.com/wekeepgrowing/accounting-sync/pkg/logger"
)

// ErrProviderNotConfigured is returned by connect-url for a provider without
// an OAuth app.
var ErrProviderNotConfigured = errors.New("provider is not configured")

type containerBackend struct {
	*app.Container
}

// LoadBackend builds the real engine from the config file. CLI logs go to
// stderr so stdout stays machine readable.
func LoadBackend(opts *RootOptions) (Backend, error) {
	if opts.ConfigPath != "" {
		if err := os.Setenv("CONFIG_PATH", opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Log.Output = "stderr"
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	container, err := app.Build(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &containerBackend{Container: container}, nil
}

func (b *containerBackend) PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error) {
	return b.Coordinator.PullCustomerFromProvider(ctx, xeroID)
}

func (b *containerBackend) PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error) {
	return b.Coordinator.PullInvoiceFromProvider(ctx, xeroID)
}

func (b *containerBackend) PullQuoteFromProvider(ctx context.Context, xeroID string) (*model.Quote, dto.PullOutcome, error) {
	return b.Coordinator.PullQuoteFromProvider(ctx, xeroID)
}

func (b *containerBackend) PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error) {
	return b.Coordinator.PollQuotesPeriodically(ctx)
}

func (b *containerBackend) ProcessDue(ctx context.Context, limit int) (int, int, error) {
	return b.Dispatcher.ProcessDue(ctx, limit)
}

func (b *containerBackend) ConnectURL(providerType provider.ProviderType, state string) (string, error) {
	tokens := b.Tokens(providerType)
	if tokens == nil {
		return "", fmt.Errorf("%s: %w", providerType, ErrProviderNotConfigured)
	}
	return tokens.ConnectURL(state), nil
}

func (b *containerBackend) Close() {
	b.Container.Close()
	_ = b.Logger.Sync()
}

var _ Backend = (*containerBackend)(nil)
