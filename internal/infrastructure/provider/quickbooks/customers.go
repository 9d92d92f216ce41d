package quickbooks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// GetCustomer fetches a customer. A missing customer yields (nil, nil).
func (c *Client) GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error) {
	var resp customerResponse
	if err := c.do(ctx, http.MethodGet, "customer/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Customer == nil {
		return nil, nil
	}
	return toRemoteCustomer(resp.Customer), nil
}

// FindCustomerByName looks a customer up by DisplayName.
func (c *Client) FindCustomerByName(ctx context.Context, name string) (*entity.RemoteCustomer, error) {
	query := fmt.Sprintf("select * from Customer where DisplayName = '%s'", strings.ReplaceAll(name, "'", "''"))

	var resp customerQueryResponse
	if err := c.do(ctx, http.MethodGet, "query?query="+url.QueryEscape(query), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Customer) == 0 {
		return nil, nil
	}
	return toRemoteCustomer(&resp.QueryResponse.Customer[0]), nil
}

// CreateCustomer creates a customer. QuickBooks rejects duplicate display
// names, so an existing customer with the same name is updated instead.
func (c *Client) CreateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	existing, err := c.FindCustomerByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		c.logger.Info("QuickBooks customer with same display name exists, updating",
			zap.String("display_name", in.Name),
			zap.String("quickbooks_id", existing.ID))
		update := *in
		update.RemoteID = existing.ID
		return c.UpdateCustomer(ctx, &update)
	}

	return c.saveCustomer(ctx, "customer", customerBody(in))
}

// UpdateCustomer sends a sparse update carrying the latest SyncToken.
func (c *Client) UpdateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	latest, err := c.GetCustomer(ctx, in.RemoteID)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.SyncToken == "" {
		return nil, emptyResult("customer sync token")
	}

	body := customerBody(in)
	body.ID = in.RemoteID
	body.SyncToken = latest.SyncToken
	body.Sparse = true
	return c.saveCustomer(ctx, "customer?operation=update", body)
}

func (c *Client) saveCustomer(ctx context.Context, resource string, body *customer) (*entity.RemoteCustomer, error) {
	var resp customerResponse
	if err := c.do(ctx, http.MethodPost, resource, body, &resp); err != nil {
		return nil, err
	}
	if resp.Customer == nil {
		return nil, emptyResult("customer")
	}
	return toRemoteCustomer(resp.Customer), nil
}

func customerBody(in *entity.CustomerInput) *customer {
	body := &customer{DisplayName: in.Name}
	if strings.TrimSpace(in.Email) != "" {
		body.PrimaryEmailAddr = &emailAddr{Address: in.Email}
	}
	if strings.TrimSpace(in.Phone) != "" {
		body.PrimaryPhone = &phoneNumber{FreeFormNumber: in.Phone}
	}
	if strings.TrimSpace(in.Address) != "" {
		body.BillAddr = &physicalAddress{Line1: in.Address}
	}
	return body
}

func toRemoteCustomer(cu *customer) *entity.RemoteCustomer {
	out := &entity.RemoteCustomer{
		ID:        cu.ID,
		SyncToken: cu.SyncToken,
		Name:      cu.DisplayName,
	}
	if cu.PrimaryEmailAddr != nil {
		out.Email = cu.PrimaryEmailAddr.Address
	}
	if cu.PrimaryPhone != nil {
		out.Phone = cu.PrimaryPhone.FreeFormNumber
	}
	if cu.BillAddr != nil {
		out.Address = cu.BillAddr.Line1
	}
	if cu.MetaData != nil {
		out.UpdatedAt = cu.MetaData.LastUpdatedTime
	}
	return out
}
