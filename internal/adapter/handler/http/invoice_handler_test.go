package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/accounting-sync/internal/adapter/handler/http"
	"github.com/wekeepgrowing/accounting-sync/internal/adapter/repository"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/model"
)

func TestInvoiceHandler_Create(t *testing.T) {
	body := `{"invoiceNumber":"INV-100","customerId":1,"customerXeroId":"A-2","totalAmount":"250.00"}`

	t.Run("linkage mismatch is a conflict", func(t *testing.T) {
		coordinator := new(MockCoordinator)
		coordinator.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req *dto.InvoiceRequest) bool {
			return req.CustomerXeroID == "A-2" && req.TotalAmount.Equal(decimal.RequireFromString("250"))
		})).Return(nil, &domainErrors.LinkageMismatchError{CustomerID: 1, Provider: "xero", Stored: "A-1", Claimed: "A-2"})
		h := handlers.NewInvoiceHandler(coordinator, nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Create(echo.New().NewContext(req, rec)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "customer linkage mismatch")
	})

	t.Run("malformed body", func(t *testing.T) {
		coordinator := new(MockCoordinator)
		h := handlers.NewInvoiceHandler(coordinator, nil, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"customerId":"one"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Create(echo.New().NewContext(req, rec)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		coordinator.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	})
}

func TestInvoiceHandler_List(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Invoice{InvoiceNumber: "INV-1", CustomerID: 1, CustomerXeroID: strPtr("A-1"), XeroID: strPtr("X-1")}).Error)
	h := handlers.NewInvoiceHandler(new(MockCoordinator), repository.NewInvoiceRepository(db, zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	require.NoError(t, h.List(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil), rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INV-1"`)
}
