package xero

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/entity"
)

// GetCustomer fetches a contact. A missing contact yields (nil, nil).
func (c *Client) GetCustomer(ctx context.Context, id string) (*entity.RemoteCustomer, error) {
	var resp contactsEnvelope
	if err := c.do(ctx, http.MethodGet, "/Contacts/"+url.PathEscape(id), nil, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Contacts) == 0 {
		return nil, nil
	}
	return toRemoteCustomer(resp.Contacts[0]), nil
}

func (c *Client) CreateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	body := contactFromInput(in)
	body.IsCustomer = true
	return c.saveContact(ctx, body)
}

// UpdateCustomer posts the contact with its ContactID, which Xero treats as an update.
func (c *Client) UpdateCustomer(ctx context.Context, in *entity.CustomerInput) (*entity.RemoteCustomer, error) {
	body := contactFromInput(in)
	body.ContactID = in.RemoteID
	return c.saveContact(ctx, body)
}

func (c *Client) saveContact(ctx context.Context, body contact) (*entity.RemoteCustomer, error) {
	var resp contactsEnvelope
	if err := c.do(ctx, http.MethodPost, "/Contacts", contactsEnvelope{Contacts: []contact{body}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Contacts) == 0 {
		return nil, emptyResult("contact")
	}
	return toRemoteCustomer(resp.Contacts[0]), nil
}

func contactFromInput(in *entity.CustomerInput) contact {
	return contact{
		Name:         in.Name,
		EmailAddress: in.Email,
		Phones:       []Phone{{PhoneType: phoneTypeDefault, PhoneNumber: in.Phone}},
		Addresses:    []Address{{AddressType: addressTypeStreet, AddressLine1: in.Address}},
	}
}

func toRemoteCustomer(ct contact) *entity.RemoteCustomer {
	phone, address := ExtractContactDetails(ct.Phones, ct.Addresses)
	return &entity.RemoteCustomer{
		ID:        ct.ContactID,
		Name:      ct.Name,
		Email:     ct.EmailAddress,
		Phone:     phone,
		Address:   address,
		UpdatedAt: ct.UpdatedDateUTC.Ptr(),
	}
}
