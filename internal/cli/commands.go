package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

func newPullCommand(opts *RootOptions, load BackendLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull one record from Xero into the local store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "customer <xero-contact-id>",
		Short: "Pull a Xero contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, load, func(b Backend) error {
				customer, outcome, err := b.PullCustomerFromProvider(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return newPrinter(cmd, opts).pull(args[0], outcome, customer)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "invoice <xero-invoice-id>",
		Short: "Pull a Xero invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, load, func(b Backend) error {
				invoice, outcome, err := b.PullInvoiceFromProvider(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return newPrinter(cmd, opts).pull(args[0], outcome, invoice)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "quote <xero-quote-id>",
		Short: "Pull a Xero quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, load, func(b Backend) error {
				quote, outcome, err := b.PullQuoteFromProvider(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return newPrinter(cmd, opts).pull(args[0], outcome, quote)
			})
		},
	})

	return cmd
}

func newPollQuotesCommand(opts *RootOptions, load BackendLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "poll-quotes",
		Short: "Reconcile every Xero quote once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(opts, load, func(b Backend) error {
				result, err := b.PollQuotesPeriodically(cmd.Context())
				if err != nil {
					return err
				}
				p := newPrinter(cmd, opts)
				if p.json {
					return p.writeJSON(result)
				}
				p.linef("listed=%d inserted=%d updated=%d skipped=%d failed=%d",
					result.Listed, result.Inserted, result.Updated, result.Skipped, result.Failed)
				return nil
			})
		},
	}
}

func newReplayWebhooksCommand(opts *RootOptions, load BackendLoader) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "replay-webhooks",
		Short: "Process pending and due failed webhook events now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return withBackend(opts, load, func(b Backend) error {
				succeeded, failed, err := b.ProcessDue(cmd.Context(), limit)
				if err != nil {
					return err
				}
				p := newPrinter(cmd, opts)
				if p.json {
					return p.writeJSON(map[string]int{"succeeded": succeeded, "failed": failed})
				}
				p.linef("succeeded=%d failed=%d", succeeded, failed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum events to process")

	return cmd
}

func newConnectURLCommand(opts *RootOptions, load BackendLoader) *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "connect-url",
		Short: "Print a provider consent URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			providerType, err := provider.ParseProviderType(providerName)
			if err != nil {
				return err
			}
			return withBackend(opts, load, func(b Backend) error {
				state := uuid.NewString()
				url, err := b.ConnectURL(providerType, state)
				if err != nil {
					return err
				}
				p := newPrinter(cmd, opts)
				if p.json {
					return p.writeJSON(map[string]string{"url": url, "state": state})
				}
				p.linef("%s", url)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&providerName, "provider", string(provider.ProviderTypeQuickBooks), "provider to connect: xero or quickbooks")

	return cmd
}
