package quickbooks

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

// OAuthClient talks to the Intuit OAuth2 endpoints.
type OAuthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scope        string
	authorizeURL string
	tokenURL     string
	client       *http.Client
	logger       *zap.Logger
}

func NewOAuthClient(cfg config.QuickBooksConfig, logger *zap.Logger) *OAuthClient {
	return &OAuthClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		scope:        cfg.Scope,
		authorizeURL: cfg.AuthorizeURL,
		tokenURL:     cfg.TokenURL,
		client:       &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

// AuthorizeURL builds the consent screen URL the operator visits to connect a company.
func (o *OAuthClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("response_type", "code")
	q.Set("scope", o.scope)
	q.Set("redirect_uri", o.redirectURI)
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

func (o *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*entity.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return o.requestToken(ctx, form)
}

type tokenResponse struct {
	AccessToken            string `json:"access_token"`
	RefreshToken           string `json:"refresh_token"`
	TokenType              string `json:"token_type"`
	ExpiresIn              int64  `json:"expires_in"`
	XRefreshTokenExpiresIn int64  `json:"x_refresh_token_expires_in"`
}

func (o *OAuthClient) requestToken(ctx context.Context, form url.Values) (*entity.TokenGrant, error) {
	grantType := form.Get("grant_type")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: provider.ProviderTypeQuickBooks,
			Code:     "REQUEST_ERROR",
			Message:  "Failed to create token request",
			Details:  err.Error(),
		}
	}
	req.SetBasicAuth(o.clientID, o.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Error("QuickBooks token request failed",
			zap.String("grant_type", grantType),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Provider: provider.ProviderTypeQuickBooks,
			Code:     "API_ERROR",
			Message:  "QuickBooks token request failed",
			Details:  err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read token response",
			Details:    err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Error("QuickBooks token endpoint rejected request",
			zap.String("grant_type", grantType),
			zap.Int("status_code", resp.StatusCode))
		return nil, &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       "TOKEN_ERROR",
			Message:    http.StatusText(resp.StatusCode),
			Details:    string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse token response",
			Details:    err.Error(),
		}
	}

	o.logger.Info("QuickBooks token issued",
		zap.String("grant_type", grantType),
		zap.Int64("expires_in", tr.ExpiresIn),
		zap.Duration("latency", time.Since(start)))

	return &entity.TokenGrant{
		AccessToken:      tr.AccessToken,
		RefreshToken:     tr.RefreshToken,
		ExpiresIn:        tr.ExpiresIn,
		RefreshExpiresIn: tr.XRefreshTokenExpiresIn,
		TokenType:        tr.TokenType,
	}, nil
}
