package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

type QuoteSync interface {
	CreateQuote(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error)
	UpdateQuote(ctx context.Context, req *dto.QuoteRequest) (*model.Quote, error)
}

type QuoteHandler struct {
	sync   QuoteSync
	repo   repository.QuoteRepository
	logger *zap.Logger
}

func NewQuoteHandler(sync QuoteSync, repo repository.QuoteRepository, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		sync:   sync,
		repo:   repo,
		logger: logger,
	}
}

func (h *QuoteHandler) Create(c echo.Context) error {
	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	quote, err := h.sync.CreateQuote(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create quote",
			zap.String("quote_number", req.QuoteNumber),
			zap.Uint("customer_id", req.CustomerID))
	}

	return c.JSON(http.StatusCreated, quote)
}

func (h *QuoteHandler) Update(c echo.Context) error {
	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.QuoteXeroID = c.Param("xeroId")

	quote, err := h.sync.UpdateQuote(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update quote", zap.String("xero_id", req.QuoteXeroID))
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) List(c echo.Context) error {
	params, err := bindPagination(c)
	if err != nil {
		return badRequest(c, "Invalid pagination parameters")
	}

	quotes, total, err := h.repo.List(c.Request().Context(), params)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list quotes")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"quotes":     quotes,
		"pagination": entity.NewPaginationMeta(params, total),
	})
}
