package dto

import "github.com/wekeepgrowing/accounting-sync/internal/domain/model"

// CustomerRequest is the body of customer create and update calls. XeroID
// locates the record on update and is taken from the path.
type CustomerRequest struct {
	XeroID  string `json:"xeroId,omitempty"`
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Phone   string `json:"phone" validate:"max=100"`
	Address string `json:"address" validate:"max=500"`
}

type CustomerListResponse struct {
	Customers []*model.Customer `json:"customers"`
	Total     int64             `json:"total"`
}
