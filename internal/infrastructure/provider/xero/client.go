package xero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/config"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

const dateLayout = "2006-01-02"

// Client is the Xero accounting API adapter.
type Client struct {
	baseURL  string
	tenantID string
	tokens   provider.TokenSource
	client   *http.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewClient creates a Xero client. tokens supplies the bearer token; its
// TenantID overrides the configured tenant when set.
func NewClient(cfg config.XeroConfig, tokens provider.TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tenantID: cfg.TenantID,
		tokens:   tokens,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		now:      time.Now,
	}
}

// do sends one request. A nil out skips decoding. Non-2xx responses come back
// as *provider.ProviderError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Provider: provider.ProviderTypeXero,
				Code:     "MARSHAL_ERROR",
				Message:  "Failed to prepare request",
				Details:  err.Error(),
			}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &provider.ProviderError{
			Provider: provider.ProviderTypeXero,
			Code:     "REQUEST_ERROR",
			Message:  "Failed to create request",
			Details:  err.Error(),
		}
	}

	tenantID := c.tenantID
	if token.TenantID != "" {
		tenantID = token.TenantID
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("xero-tenant-id", tenantID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Xero request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &provider.ProviderError{
			Provider: provider.ProviderTypeXero,
			Code:     "API_ERROR",
			Message:  "Xero API request failed",
			Details:  err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: resp.StatusCode,
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read response",
			Details:    err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Xero returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: resp.StatusCode,
			Code:       "HTTP_ERROR",
			Message:    http.StatusText(resp.StatusCode),
			Details:    string(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeXero,
			StatusCode: resp.StatusCode,
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse response",
			Details:    err.Error(),
		}
	}
	return nil
}

// isNotFound reports whether err is a 404 from Xero.
func isNotFound(err error) bool {
	var perr *provider.ProviderError
	return errors.As(err, &perr) && perr.StatusCode == http.StatusNotFound
}

// emptyResult is returned when Xero answers 2xx without the expected record.
func emptyResult(kind string) error {
	return &provider.ProviderError{
		Provider: provider.ProviderTypeXero,
		Code:     "EMPTY_RESPONSE",
		Message:  fmt.Sprintf("Xero returned no %s", kind),
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
