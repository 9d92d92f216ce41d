package xero

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// GetInvoice fetches an invoice. A missing invoice yields (nil, nil).
func (c *Client) GetInvoice(ctx context.Context, id string) (*entity.RemoteInvoice, error) {
	var resp invoicesEnvelope
	if err := c.do(ctx, http.MethodGet, "/Invoices/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Invoices) == 0 {
		return nil, nil
	}
	return toRemoteInvoice(resp.Invoices[0]), nil
}

// CreateInvoice creates an ACCREC invoice. The returned number and total are
// the ones Xero assigned.
func (c *Client) CreateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	body := invoiceRequest{
		Type:          invoiceTypeReceivable,
		Contact:       contactRef{ContactID: in.CustomerRemoteID},
		Date:          formatDate(c.dateOr(in.Date)),
		DueDate:       formatDate(c.dueDateOr(in.DueDate)),
		InvoiceNumber: in.Number,
		LineItems: []lineItemRequest{{
			Description: in.Description,
			Quantity:    1,
			UnitAmount:  amount(in.Total),
		}},
	}
	return c.saveInvoice(ctx, "/Invoices", body)
}

func (c *Client) UpdateInvoice(ctx context.Context, in *entity.InvoiceInput) (*entity.RemoteInvoice, error) {
	body := invoiceRequest{
		InvoiceID:       in.RemoteID,
		Type:            invoiceTypeReceivable,
		Contact:         contactRef{ContactID: in.CustomerRemoteID},
		Date:            formatDate(c.dateOr(in.Date)),
		DueDate:         formatDate(c.dueDateOr(in.DueDate)),
		LineAmountTypes: "Exclusive",
		InvoiceNumber:   in.Number,
		LineItems: []lineItemRequest{{
			Description: in.Description,
			Quantity:    1,
			UnitAmount:  amount(in.Total),
			AccountCode: salesAccountCode,
			TaxType:     taxTypeNone,
		}},
	}
	return c.saveInvoice(ctx, "/Invoices/"+url.PathEscape(in.RemoteID), body)
}

func (c *Client) saveInvoice(ctx context.Context, path string, body invoiceRequest) (*entity.RemoteInvoice, error) {
	var resp invoicesEnvelope
	if err := c.do(ctx, http.MethodPost, path, invoiceRequestEnvelope{Invoices: []invoiceRequest{body}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Invoices) == 0 {
		return nil, emptyResult("invoice")
	}
	return toRemoteInvoice(resp.Invoices[0]), nil
}

func toRemoteInvoice(inv invoice) *entity.RemoteInvoice {
	return &entity.RemoteInvoice{
		ID:          inv.InvoiceID,
		Number:      inv.InvoiceNumber,
		ContactID:   inv.Contact.ContactID,
		Description: firstDescription(inv.LineItems),
		Status:      inv.Status,
		Total:       inv.Total,
		DueDate:     inv.DueDate.Ptr(),
		UpdatedAt:   inv.UpdatedDateUTC.Ptr(),
	}
}
