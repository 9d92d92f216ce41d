package quickbooks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// GetInvoice fetches an invoice. A missing invoice yields (nil, nil).
func (c *Client) GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error) {
	var resp invoiceResponse
	if err := c.do(ctx, http.MethodGet, "invoice/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Invoice == nil {
		return nil, nil
	}
	return toRemoteInvoice(resp.Invoice), nil
}

func (c *Client) CreateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	return c.saveInvoice(ctx, "invoice", c.invoiceBody(in))
}

// UpdateInvoice sends a sparse update carrying the latest SyncToken.
func (c *Client) UpdateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	latest, err := c.GetInvoice(ctx, in.RemoteID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, emptyResult("invoice sync token")
	}

	body := c.invoiceBody(in)
	body.ID = latest.ID
	body.SyncToken = latest.SyncToken
	body.Sparse = true
	return c.saveInvoice(ctx, "invoice?operation=update", body)
}

func (c *Client) invoiceBody(in *entity.InvoiceInput) *transaction {
	return &transaction{
		DocNumber:   in.Number,
		CustomerRef: &ref{Value: in.CustomerRemoteID},
		TxnDate:     c.dateOr(in.Date),
		DueDate:     c.dueDateOr(in.DueDate),
		Line:        salesLine(in.Description, in.Total),
	}
}

func (c *Client) saveInvoice(ctx context.Context, resource string, body *transaction) (*entity.RemoteInvoice, error) {
	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, resource, body, &resp); err != nil {
		return nil, err
	}
	if resp.Invoice == nil {
		return nil, emptyResult("invoice")
	}
	return toRemoteInvoice(resp.Invoice), nil
}

func toRemoteInvoice(t *transaction) *entity.RemoteInvoice {
	return &entity.RemoteInvoice{
		ID:          t.ID,
		SyncToken:   t.SyncToken,
		Number:      t.DocNumber,
		ContactID:   t.customerID(),
		Description: t.description(),
		Status:      t.TxnStatus,
		Total:       t.total(),
		DueDate:     parseDate(t.DueDate),
		UpdatedAt:   t.updatedAt(),
	}
}
