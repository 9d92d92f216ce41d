package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/middleware/auth"
)

// PullSync exposes the provider-to-local operations for manual triggering.
type PullSync interface {
	PullCustomerFromProvider(ctx context.Context, xeroID string) (*model.Customer, dto.PullOutcome, error)
	PullInvoiceFromProvider(ctx context.Context, xeroID string) (*model.Invoice, dto.PullOutcome, error)
	PullQuoteFromProvider(ctx context.Context, xeroID string) (*model.Quote, dto.PullOutcome, error)
	PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error)
}

type SyncHandler struct {
	sync   PullSync
	logger *zap.Logger
}

func NewSyncHandler(sync PullSync, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		logger: logger,
	}
}

func (h *SyncHandler) PullCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	xeroID := c.Param("xeroId")
	h.logger.Info("Manual customer pull requested", zap.String("xero_id", xeroID), auth.OperatorField(ctx))

	customer, outcome, err := h.sync.PullCustomerFromProvider(ctx, xeroID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to pull customer", zap.String("xero_id", xeroID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"outcome":  outcome,
		"customer": customer,
	})
}

func (h *SyncHandler) PullInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	xeroID := c.Param("xeroId")
	h.logger.Info("Manual invoice pull requested", zap.String("xero_id", xeroID), auth.OperatorField(ctx))

	invoice, outcome, err := h.sync.PullInvoiceFromProvider(ctx, xeroID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to pull invoice", zap.String("xero_id", xeroID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"outcome": outcome,
		"invoice": invoice,
	})
}

func (h *SyncHandler) PullQuote(c echo.Context) error {
	ctx := c.Request().Context()
	xeroID := c.Param("xeroId")
	h.logger.Info("Manual quote pull requested", zap.String("xero_id", xeroID), auth.OperatorField(ctx))

	quote, outcome, err := h.sync.PullQuoteFromProvider(ctx, xeroID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to pull quote", zap.String("xero_id", xeroID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"outcome": outcome,
		"quote":   quote,
	})
}

func (h *SyncHandler) PollQuotes(c echo.Context) error {
	ctx := c.Request().Context()
	h.logger.Info("Manual quote poll requested", auth.OperatorField(ctx))

	result, err := h.sync.PollQuotesPeriodically(ctx)
	if err != nil {
		return respondError(c, h.logger, err, "Quote poll failed")
	}

	return c.JSON(http.StatusOK, result)
}
