package quickbooks

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	objectNotFoundCode = "610"
	salesItemLine      = "SalesItemLineDetail"
)

type ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type emailAddr struct {
	Address string `json:"Address"`
}

type phoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type physicalAddress struct {
	Line1 string `json:"Line1"`
}

type metaData struct {
	CreateTime      *time.Time `json:"CreateTime,omitempty"`
	LastUpdatedTime *time.Time `json:"LastUpdatedTime,omitempty"`
}

type customer struct {
	ID               string           `json:"Id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"`
	Sparse           bool             `json:"sparse,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	PrimaryEmailAddr *emailAddr       `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *phoneNumber     `json:"PrimaryPhone,omitempty"`
	BillAddr         *physicalAddress `json:"BillAddr,omitempty"`
	MetaData         *metaData        `json:"MetaData,omitempty"`
}

type customerResponse struct {
	Customer *customer `json:"Customer"`
}

type customerQueryResponse struct {
	QueryResponse struct {
		Customer []customer `json:"Customer"`
	} `json:"QueryResponse"`
}

type itemRefDetail struct {
	ItemRef ref `json:"ItemRef"`
}

type line struct {
	DetailType          string         `json:"DetailType,omitempty"`
	SalesItemLineDetail *itemRefDetail `json:"SalesItemLineDetail,omitempty"`
	Amount              json.Number    `json:"Amount,omitempty"`
	Description         string         `json:"Description,omitempty"`
}

// transaction is the shared shape of invoices and estimates.
type transaction struct {
	ID             string      `json:"Id,omitempty"`
	SyncToken      string      `json:"SyncToken,omitempty"`
	Sparse         bool        `json:"sparse,omitempty"`
	DocNumber      string      `json:"DocNumber,omitempty"`
	CustomerRef    *ref        `json:"CustomerRef,omitempty"`
	TxnDate        string      `json:"TxnDate,omitempty"`
	DueDate        string      `json:"DueDate,omitempty"`
	ExpirationDate string      `json:"ExpirationDate,omitempty"`
	Line           []line      `json:"Line,omitempty"`
	TxnStatus      string      `json:"TxnStatus,omitempty"`
	TotalAmt       json.Number `json:"TotalAmt,omitempty"`
	MetaData       *metaData   `json:"MetaData,omitempty"`
}

type invoiceResponse struct {
	Invoice *transaction `json:"Invoice"`
}

type estimateResponse struct {
	Estimate *transaction `json:"Estimate"`
}

type faultResponse struct {
	Fault struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
	} `json:"Fault"`
}

func salesLine(description string, amount decimal.Decimal) []line {
	return []line{{
		DetailType:          salesItemLine,
		SalesItemLineDetail: &itemRefDetail{ItemRef: ref{Value: placeholderItemID}},
		Amount:              json.Number(amount.StringFixed(2)),
		Description:         description,
	}}
}

func (t *transaction) description() string {
	for _, l := range t.Line {
		if l.Description != "" {
			return l.Description
		}
	}
	return ""
}

func (t *transaction) total() decimal.Decimal {
	if t.TotalAmt == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(t.TotalAmt))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (t *transaction) customerID() string {
	if t.CustomerRef == nil {
		return ""
	}
	return t.CustomerRef.Value
}

func (t *transaction) updatedAt() *time.Time {
	if t.MetaData == nil {
		return nil
	}
	return t.MetaData.LastUpdatedTime
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &d
}
