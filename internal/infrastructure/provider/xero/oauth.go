package xero

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

// OAuthClient talks to the Xero identity endpoints.
type OAuthClient struct {
	clientID       string
	clientSecret   string
	redirectURI    string
	scope          string
	authorizeURL   string
	tokenURL       string
	connectionsURL string
	tenantID       string
	client         *http.Client
	logger         *zap.Logger
}

func NewOAuthClient(cfg config.XeroConfig, logger *zap.Logger) *OAuthClient {
	return &OAuthClient{
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		redirectURI:    cfg.RedirectURI,
		scope:          cfg.Scope,
		authorizeURL:   cfg.AuthorizeURL,
		tokenURL:       cfg.TokenURL,
		connectionsURL: cfg.ConnectionsURL,
		tenantID:       cfg.TenantID,
		client:         &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
	}
}

func (o *OAuthClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", o.clientID)
	q.Set("redirect_uri", o.redirectURI)
	q.Set("scope", o.scope)
	q.Set("state", state)
	return o.authorizeURL + "?" + q.Encode()
}

func (o *OAuthClient) ExchangeCode(ctx context.Context, code string) (*entity.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", o.redirectURI)
	return o.requestToken(ctx, form)
}

// Refresh exchanges a refresh token. Xero rotates refresh tokens, so the
// returned grant always carries a new one.
func (o *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*entity.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return o.requestToken(ctx, form)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type connection struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	TenantType string `json:"tenantType"`
	TenantName string `json:"tenantName"`
}

// ResolveTenant picks the organisation the token was granted for. A
// configured tenant id must be among the connections; otherwise the first
// ORGANISATION connection wins.
func (o *OAuthClient) ResolveTenant(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.connectionsURL, nil)
	if err != nil {
		return "", &provider.ProviderError{
			Provider: provider.ProviderTypeXero,
			Code:     "REQUEST_ERROR",
			Message:  "Failed to create connections request",
			Details:  err.Error(),
		}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	body, status, err := o.send(req, "connections")
	if err != nil {
		return "", err
	}

	var conns []connection
	if err := json.Unmarshal(body, &conns); err != nil {
		return "", &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: status,
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse connections",
			Details:    err.Error(),
		}
	}

	for _, conn := range conns {
		if o.tenantID != "" {
			if conn.TenantID == o.tenantID {
				return conn.TenantID, nil
			}
			continue
		}
		if conn.TenantType == "" || conn.TenantType == "ORGANISATION" {
			o.logger.Info("Xero tenant resolved",
				zap.String("tenant_id", conn.TenantID),
				zap.String("tenant_name", conn.TenantName),
				zap.Int("connections", len(conns)))
			return conn.TenantID, nil
		}
	}

	return "", &provider.ProviderError{
		Provider: provider.ProviderTypeXero,
		Code:     "NO_TENANT",
		Message:  "No matching Xero organisation connected",
		Details:  o.tenantID,
	}
}

func (o *OAuthClient) requestToken(ctx context.Context, form url.Values) (*entity.TokenGrant, error) {
	grantType := form.Get("grant_type")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: provider.ProviderTypeXero,
			Code:     "REQUEST_ERROR",
			Message:  "Failed to create token request",
			Details:  err.Error(),
		}
	}
	req.SetBasicAuth(o.clientID, o.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	body, status, err := o.send(req, grantType)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: status,
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse token response",
			Details:    err.Error(),
		}
	}

	o.logger.Info("Xero token issued",
		zap.String("grant_type", grantType),
		zap.Int64("expires_in", tr.ExpiresIn),
		zap.Duration("latency", time.Since(start)))

	// Xero does not report the refresh token lifetime; the token manager
	// applies its default.
	return &entity.TokenGrant{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
		TokenType:    tr.TokenType,
	}, nil
}

// send runs an identity request and returns the body of a 200 response.
func (o *OAuthClient) send(req *http.Request, op string) ([]byte, int, error) {
	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("Xero identity request failed",
			zap.String("op", op),
			zap.Error(err))
		return nil, 0, &provider.ProviderError{
			Provider: provider.ProviderTypeXero,
			Code:     "API_ERROR",
			Message:  "Xero identity request failed",
			Details:  err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: resp.StatusCode,
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read identity response",
			Details:    err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Error("Xero identity endpoint rejected request",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode))
		return nil, resp.StatusCode, &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: resp.StatusCode,
			Code:       "TOKEN_ERROR",
			Message:    http.StatusText(resp.StatusCode),
			Details:    string(body),
		}
	}
	return body, resp.StatusCode, nil
}
