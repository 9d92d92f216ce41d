package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// Authorizer runs a provider's authorization code flow.
type Authorizer interface {
	ConnectURL(state string) string
	HandleAuthCallback(ctx context.Context, code, tenantID string) (*entity.ProviderToken, error)
}

// OAuthHandler serves the connect and callback routes of one provider.
type OAuthHandler struct {
	auth     Authorizer
	provider string
	cookie   string
	// tenantParam is the callback query parameter naming the tenant. Empty
	// when the provider leaves it to a lookup after the exchange.
	tenantParam string
	tenantKey   string
	logger      *zap.Logger
}

func NewQuickBooksOAuthHandler(auth Authorizer, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		auth:        auth,
		provider:    "quickbooks",
		cookie:      "qbo_oauth_state",
		tenantParam: "realmId",
		tenantKey:   "realm_id",
		logger:      logger,
	}
}

func NewXeroOAuthHandler(auth Authorizer, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		auth:      auth,
		provider:  "xero",
		cookie:    "xero_oauth_state",
		tenantKey: "tenant_id",
		logger:    logger,
	}
}

// Connect redirects to the consent page with a fresh state bound to a cookie.
func (h *OAuthHandler) Connect(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     h.cookie,
		Value:    state,
		Path:     "/oauth/" + h.provider,
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, h.auth.ConnectURL(state))
}

func (h *OAuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return badRequest(c, "code is required")
	}
	var tenantID string
	if h.tenantParam != "" {
		tenantID = c.QueryParam(h.tenantParam)
		if tenantID == "" {
			return badRequest(c, h.tenantParam+" is required")
		}
	}

	if cookie, err := c.Cookie(h.cookie); err == nil && cookie.Value != c.QueryParam("state") {
		h.logger.Warn("OAuth state mismatch",
			zap.String("provider", h.provider),
			zap.String("tenant_id", tenantID))
		return badRequest(c, "Invalid OAuth state")
	}

	token, err := h.auth.HandleAuthCallback(c.Request().Context(), code, tenantID)
	if err != nil {
		return respondError(c, h.logger, err, "Provider authorization failed",
			zap.String("provider", h.provider),
			zap.String("tenant_id", tenantID))
	}

	c.SetCookie(&http.Cookie{Name: h.cookie, Path: "/oauth/" + h.provider, MaxAge: -1})
	return c.JSON(http.StatusOK, echo.Map{
		"connected":         true,
		h.tenantKey:         token.TenantID,
		"access_expires_at": token.AccessTokenExpiresAt,
	})
}
