// Package http holds the echo handlers of the sync API and the provider
// webhook endpoints.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/repository"
)

// CustomerSync is the customer side of the sync coordinator.
type CustomerSync interface {
	CreateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error)
}

type CustomerHandler struct {
	sync   CustomerSync
	repo   repository.CustomerRepository
	logger *zap.Logger
}

func NewCustomerHandler(sync CustomerSync, repo repository.CustomerRepository, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		sync:   sync,
		repo:   repo,
		logger: logger,
	}
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var req dto.CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	customer, err := h.sync.CreateCustomer(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create customer", zap.String("name", req.Name))
	}

	return c.JSON(http.StatusCreated, customer)
}

// Update pushes a local edit of the customer identified by its Xero id.
func (h *CustomerHandler) Update(c echo.Context) error {
	var req dto.CustomerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.XeroID = c.Param("xeroId")

	customer, err := h.sync.UpdateCustomer(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update customer", zap.String("xero_id", req.XeroID))
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "Invalid customer id")
	}

	customer, err := h.repo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get customer", zap.Uint64("id", id))
	}
	if customer == nil {
		return respondError(c, h.logger, domainErrors.ErrCustomerNotFound, "Customer not found", zap.Uint64("id", id))
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) List(c echo.Context) error {
	params, err := bindPagination(c)
	if err != nil {
		return badRequest(c, "Invalid pagination parameters")
	}

	customers, total, err := h.repo.List(c.Request().Context(), params)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list customers")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"customers":  customers,
		"pagination": entity.NewPaginationMeta(params, total),
	})
}

func bindPagination(c echo.Context) (entity.PaginationParams, error) {
	var params entity.PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return params, err
	}
	params.Normalize()
	return params, nil
}
