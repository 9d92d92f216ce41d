package xero

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	phoneTypeDefault  = "DEFAULT"
	addressTypeStreet = "STREET"

	invoiceTypeReceivable = "ACCREC"
	quoteStatusDraft      = "DRAFT"
	quoteStatusSent       = "SENT"

	salesAccountCode = "200"
	taxTypeNone      = "NONE"
)

type Phone struct {
	PhoneType   string `json:"PhoneType"`
	PhoneNumber string `json:"PhoneNumber"`
}

type Address struct {
	AddressType  string `json:"AddressType"`
	AddressLine1 string `json:"AddressLine1"`
}

type contact struct {
	ContactID      string    `json:"ContactID,omitempty"`
	Name           string    `json:"Name,omitempty"`
	EmailAddress   string    `json:"EmailAddress,omitempty"`
	Phones         []Phone   `json:"Phones,omitempty"`
	Addresses      []Address `json:"Addresses,omitempty"`
	IsCustomer     bool      `json:"IsCustomer,omitempty"`
	UpdatedDateUTC *Date     `json:"UpdatedDateUTC,omitempty"`
}

type contactRef struct {
	ContactID string `json:"ContactID"`
	Name      string `json:"Name,omitempty"`
}

type contactsEnvelope struct {
	Contacts []contact `json:"Contacts"`
}

// lineItemRequest carries amounts as json.Number so they go out unquoted.
type lineItemRequest struct {
	Description string      `json:"Description"`
	Quantity    int         `json:"Quantity"`
	UnitAmount  json.Number `json:"UnitAmount"`
	AccountCode string      `json:"AccountCode,omitempty"`
	TaxType     string      `json:"TaxType,omitempty"`
}

type lineItem struct {
	Description string          `json:"Description"`
	Quantity    decimal.Decimal `json:"Quantity"`
	UnitAmount  decimal.Decimal `json:"UnitAmount"`
}

type invoiceRequest struct {
	InvoiceID       string            `json:"InvoiceID,omitempty"`
	Type            string            `json:"Type"`
	Contact         contactRef        `json:"Contact"`
	Date            string            `json:"Date"`
	DueDate         string            `json:"DueDate"`
	LineAmountTypes string            `json:"LineAmountTypes,omitempty"`
	LineItems       []lineItemRequest `json:"LineItems"`
	InvoiceNumber   string            `json:"InvoiceNumber,omitempty"`
}

type invoiceRequestEnvelope struct {
	Invoices []invoiceRequest `json:"Invoices"`
}

type invoice struct {
	InvoiceID      string          `json:"InvoiceID"`
	InvoiceNumber  string          `json:"InvoiceNumber"`
	Type           string          `json:"Type"`
	Contact        contactRef      `json:"Contact"`
	Status         string          `json:"Status"`
	Total          decimal.Decimal `json:"Total"`
	DueDate        *Date           `json:"DueDate"`
	LineItems      []lineItem      `json:"LineItems"`
	UpdatedDateUTC *Date           `json:"UpdatedDateUTC"`
}

type invoicesEnvelope struct {
	Invoices []invoice `json:"Invoices"`
}

type quoteRequest struct {
	QuoteID     string            `json:"QuoteID,omitempty"`
	QuoteNumber string            `json:"QuoteNumber,omitempty"`
	Contact     contactRef        `json:"Contact"`
	Date        string            `json:"Date"`
	ExpiryDate  string            `json:"ExpiryDate"`
	LineItems   []lineItemRequest `json:"LineItems"`
	Reference   string            `json:"Reference,omitempty"`
	Status      string            `json:"Status"`
}

type quoteRequestEnvelope struct {
	Quotes []quoteRequest `json:"Quotes"`
}

type quote struct {
	QuoteID        string          `json:"QuoteID"`
	QuoteNumber    string          `json:"QuoteNumber"`
	Contact        contactRef      `json:"Contact"`
	Status         string          `json:"Status"`
	Total          decimal.Decimal `json:"Total"`
	ExpiryDate     *Date           `json:"ExpiryDate"`
	Reference      string          `json:"Reference"`
	LineItems      []lineItem      `json:"LineItems"`
	UpdatedDateUTC *Date           `json:"UpdatedDateUTC"`
}

type quotesEnvelope struct {
	Quotes []quote `json:"Quotes"`
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func firstDescription(items []lineItem) string {
	for _, item := range items {
		if item.Description != "" {
			return item.Description
		}
	}
	return ""
}
