// Package cli implements syncctl, the operator command line for the sync
// engine.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

// Backend is what the commands drive.
type Backend interface {
	PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error)
	PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error)
	PullQuoteFromProvider(ctx context.Context, xeroID string) (*model.Quote, dto.PullOutcome, error)
	PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error)
	ProcessDue(ctx context.Context, limit int) (succeeded, failed int, err error)
	ConnectURL(providerType provider.ProviderType, state string) (string, error)
	Close()
}

// BackendLoader opens a Backend for the given options.
type BackendLoader func(opts *RootOptions) (Backend, error)

type RootOptions struct {
	ConfigPath string
	Format     string
	Verbose    bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand(load BackendLoader) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Operate the Xero and QuickBooks sync engine",
		Long: `syncctl runs sync operations against the configured database and providers
without going through the HTTP API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/accounting-sync.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newPullCommand(opts, load))
	cmd.AddCommand(newPollQuotesCommand(opts, load))
	cmd.AddCommand(newReplayWebhooksCommand(opts, load))
	cmd.AddCommand(newConnectURLCommand(opts, load))

	return cmd
}

// withBackend opens the backend, runs fn and closes it.
func withBackend(opts *RootOptions, load BackendLoader, fn func(Backend) error) error {
	backend, err := load(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer backend.Close()
	return fn(backend)
}
