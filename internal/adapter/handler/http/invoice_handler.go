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

type InvoiceSync interface {
	CreateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, req *dto.InvoiceRequest) (*model.Invoice, error)
}

type InvoiceHandler struct {
	sync   InvoiceSync
	repo   repository.InvoiceRepository
	logger *zap.Logger
}

func NewInvoiceHandler(sync InvoiceSync, repo repository.InvoiceRepository, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		sync:   sync,
		repo:   repo,
		logger: logger,
	}
}

func (h *InvoiceHandler) Create(c echo.Context) error {
	var req dto.InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	invoice, err := h.sync.CreateInvoice(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create invoice",
			zap.String("invoice_number", req.InvoiceNumber),
			zap.Uint("customer_id", req.CustomerID))
	}

	return c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Update(c echo.Context) error {
	var req dto.InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.InvoiceXeroID = c.Param("xeroId")

	invoice, err := h.sync.UpdateInvoice(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update invoice", zap.String("xero_id", req.InvoiceXeroID))
	}

	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) List(c echo.Context) error {
	params, err := bindPagination(c)
	if err != nil {
		return badRequest(c, "Invalid pagination parameters")
	}

	invoices, total, err := h.repo.List(c.Request().Context(), params)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list invoices")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"invoices":   invoices,
		"pagination": entity.NewPaginationMeta(params, total),
	})
}
