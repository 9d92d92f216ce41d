package xero

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

const defaultTermDays = 30

// GetQuote fetches a quote. A missing quote yields (nil, nil).
func (c *Client) GetQuote(ctx context.Context, id string) (*entity.RemoteQuote, error) {
	var resp quotesEnvelope
	if err := c.do(ctx, http.MethodGet, "/Quotes/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Quotes) == 0 {
		return nil, nil
	}
	return toRemoteQuote(resp.Quotes[0]), nil
}

// ListQuotes returns every quote in the organisation. Xero has no quote
// webhooks granular enough to drive pulls, so callers poll this.
func (c *Client) ListQuotes(ctx context.Context) ([]entity.RemoteQuote, error) {
	var resp quotesEnvelope
	if err := c.do(ctx, http.MethodGet, "/Quotes", nil, &resp); err != nil {
		return nil, err
	}

	quotes := make([]entity.RemoteQuote, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		quotes = append(quotes, *toRemoteQuote(q))
	}
	return quotes, nil
}

// CreateQuote creates a DRAFT quote.
func (c *Client) CreateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	body := c.quoteBody(in)
	body.Reference = in.Description
	body.Status = quoteStatusDraft
	return c.saveQuote(ctx, "/Quotes", body)
}

// UpdateQuote rewrites the quote and moves it to SENT.
func (c *Client) UpdateQuote(ctx context.Context, in *entity.QuoteInput) (*entity.RemoteQuote, error) {
	body := c.quoteBody(in)
	body.QuoteID = in.RemoteID
	body.Status = quoteStatusSent
	return c.saveQuote(ctx, "/Quotes/"+url.PathEscape(in.RemoteID), body)
}

func (c *Client) quoteBody(in *entity.QuoteInput) quoteRequest {
	return quoteRequest{
		QuoteNumber: in.Number,
		Contact:     contactRef{ContactID: in.CustomerRemoteID},
		Date:        formatDate(c.dateOr(in.Date)),
		ExpiryDate:  formatDate(c.dueDateOr(in.ExpiryDate)),
		LineItems: []lineItemRequest{{
			Description: in.Description,
			Quantity:    1,
			UnitAmount:  amount(in.Total),
		}},
	}
}

func (c *Client) saveQuote(ctx context.Context, path string, body quoteRequest) (*entity.RemoteQuote, error) {
	var resp quotesEnvelope
	if err := c.do(ctx, http.MethodPost, path, quoteRequestEnvelope{Quotes: []quoteRequest{body}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Quotes) == 0 {
		return nil, emptyResult("quote")
	}
	return toRemoteQuote(resp.Quotes[0]), nil
}

func (c *Client) dateOr(t time.Time) time.Time {
	if t.IsZero() {
		return c.now()
	}
	return t
}

// dueDateOr defaults an unset due or expiry date to thirty days out.
func (c *Client) dueDateOr(t time.Time) time.Time {
	if t.IsZero() {
		return c.now().AddDate(0, 0, defaultTermDays)
	}
	return t
}

func toRemoteQuote(q quote) *entity.RemoteQuote {
	description := firstDescription(q.LineItems)
	if description == "" {
		description = q.Reference
	}
	return &entity.RemoteQuote{
		ID:          q.QuoteID,
		Number:      q.QuoteNumber,
		ContactID:   q.Contact.ContactID,
		Description: description,
		Status:      q.Status,
		Total:       q.Total,
		ExpiryDate:  q.ExpiryDate.Ptr(),
		UpdatedAt:   q.UpdatedDateUTC.Ptr(),
	}
}
