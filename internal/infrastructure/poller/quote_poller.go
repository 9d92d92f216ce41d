// Package poller periodically pulls Xero quotes, which Xero does not
// announce through webhooks.
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
)

// QuotePoll runs one polling pass.
type QuotePoll interface {
	PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error)
}

type QuotePoller struct {
	poll     QuotePoll
	interval time.Duration
	logger   *zap.Logger
}

func NewQuotePoller(poll QuotePoll, interval time.Duration, logger *zap.Logger) *QuotePoller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &QuotePoller{
		poll:     poll,
		interval: interval,
		logger:   logger,
	}
}

// Run polls once immediately and then every interval until ctx is done.
// Passes never overlap: the next tick is only read after a pass returns.
func (p *QuotePoller) Run(ctx context.Context) {
	p.logger.Info("Starting quote poller", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.runOnce(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("Quote poller stopped")
			return
		case <-ticker.C:
		}
	}
}

func (p *QuotePoller) runOnce(ctx context.Context) {
	result, err := p.poll.PollQuotesPeriodically(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("Quote poll failed", zap.Error(err))
		return
	}
	p.logger.Debug("Quote poll finished",
		zap.Int("listed", result.Listed),
		zap.Int("failed", result.Failed))
}
