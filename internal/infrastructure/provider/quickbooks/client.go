package quickbooks

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

// placeholderItemID is the product/service every synthesized line points at.
// QuickBooks rejects sales lines without an ItemRef.
const placeholderItemID = "1"

// Client is the QuickBooks Online accounting API adapter.
type Client struct {
	baseURL string
	realmID string
	tokens  provider.TokenSource
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewClient creates a QuickBooks client. The company (realm) id comes from
// the stored token and falls back to cfg.RealmID.
func NewClient(cfg config.QuickBooksConfig, tokens provider.TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		realmID: cfg.RealmID,
		tokens:  tokens,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		now:     time.Now,
	}
}

// do sends one request to {base}/{realm}/{resource}. Non-2xx responses come
// back as *provider.ProviderError.
func (c *Client) do(ctx context.Context, method, resource string, body, out interface{}) error {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return err
	}

	realmID := token.TenantID
	if realmID == "" {
		c.logger.Warn("No realm id on QuickBooks token, using configured realm",
			zap.String("realm_id", c.realmID))
		realmID = c.realmID
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Provider: provider.ProviderTypeQuickBooks,
				Code:     "MARSHAL_ERROR",
				Message:  "Failed to prepare request",
				Details:  err.Error(),
			}
		}
		reader = bytes.NewReader(payload)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, realmID, resource)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &provider.ProviderError{
			Provider: provider.ProviderTypeQuickBooks,
			Code:     "REQUEST_ERROR",
			Message:  "Failed to create request",
			Details:  err.Error(),
		}
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("QuickBooks request failed",
			zap.String("method", method),
			zap.String("resource", resource),
			zap.Error(err))
		return &provider.ProviderError{
			Provider: provider.ProviderTypeQuickBooks,
			Code:     "API_ERROR",
			Message:  "QuickBooks API request failed",
			Details:  err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read response",
			Details:    err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("QuickBooks returned an error",
			zap.String("method", method),
			zap.String("resource", resource),
			zap.Int("status_code", resp.StatusCode))
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       faultCode(respBody),
			Message:    http.StatusText(resp.StatusCode),
			Details:    string(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Provider:   provider.ProviderTypeQuickBooks,
			StatusCode: resp.StatusCode,
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse response",
			Details:    err.Error(),
		}
	}
	return nil
}

// isNotFound reports a 404, or the 400 "Object Not Found" fault (code 610)
// QuickBooks returns for unknown ids.
func isNotFound(err error) bool {
	var perr *provider.ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.StatusCode == http.StatusNotFound || perr.Code == objectNotFoundCode
}

func faultCode(body []byte) string {
	var resp faultResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Fault.Error) == 0 {
		return "HTTP_ERROR"
	}
	return resp.Fault.Error[0].Code
}

func emptyResult(kind string) error {
	return &provider.ProviderError{
		Provider: provider.ProviderTypeQuickBooks,
		Code:     "EMPTY_RESPONSE",
		Message:  fmt.Sprintf("QuickBooks returned no %s", kind),
	}
}

func (c *Client) dateOr(t time.Time) string {
	if t.IsZero() {
		t = c.now()
	}
	return t.UTC().Format(dateLayout)
}

// dueDateOr defaults an unset due or expiry date to thirty days out.
func (c *Client) dueDateOr(t time.Time) string {
	if t.IsZero() {
		t = c.now().AddDate(0, 0, 30)
	}
	return t.UTC().Format(dateLayout)
}
