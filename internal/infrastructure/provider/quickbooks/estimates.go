package quickbooks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// Quotes map to QuickBooks estimates.

// GetQuote fetches an estimate. A missing estimate yields (nil, nil).
func (c *Client) GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error) {
	var resp estimateResponse
	if err := c.do(ctx, http.MethodGet, "estimate/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Estimate == nil {
		return nil, nil
	}
	return toRemoteQuote(resp.Estimate), nil
}

func (c *Client) CreateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	return c.saveEstimate(ctx, "estimate", c.estimateBody(in))
}

// UpdateQuote sends a sparse update carrying the latest SyncToken.
func (c *Client) UpdateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	latest, err := c.GetQuote(ctx, in.RemoteID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, emptyResult("estimate sync token")
	}

	body := c.estimateBody(in)
	body.ID = latest.ID
	body.SyncToken = latest.SyncToken
	body.Sparse = true
	return c.saveEstimate(ctx, "estimate?operation=update", body)
}

func (c *Client) estimateBody(in *entity.QuoteInput) *transaction {
	return &transaction{
		DocNumber:      in.Number,
		CustomerRef:    &ref{Value: in.CustomerRemoteID},
		TxnDate:        c.dateOr(in.Date),
		ExpirationDate: c.dueDateOr(in.ExpiryDate),
		Line:           salesLine(in.Description, in.Total),
	}
}

func (c *Client) saveEstimate(ctx context.Context, resource string, body *transaction) (*entity.RemoteQuote, error) {
	var resp estimateResponse
	if err := c.do(ctx, http.MethodPost, resource, body, &resp); err != nil {
		return nil, err
	}
	if resp.Estimate == nil {
		return nil, emptyResult("estimate")
	}
	return toRemoteQuote(resp.Estimate), nil
}

func toRemoteQuote(t *transaction) *entity.RemoteQuote {
	return &entity.RemoteQuote{
		ID:          t.ID,
		SyncToken:   t.SyncToken,
		Number:      t.DocNumber,
		ContactID:   t.customerID(),
		Description: t.description(),
		Status:      t.TxnStatus,
		Total:       t.total(),
		ExpiryDate:  parseDate(t.ExpirationDate),
		UpdatedAt:   t.updatedAt(),
	}
}
