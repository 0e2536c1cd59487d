package models

import "github.com/shopspring/decimal"

// WalkInClientID identifies the anonymous counter client. It always exists
// and cannot be deleted.
const WalkInClientID = "1"

// Client is a customer account. TotalDebt is a running balance maintained
// incrementally by ledger operations; a negative value is a credit.
type Client struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	TotalDebt   decimal.Decimal `json:"totalDebt"`
	NIF         string          `json:"nif,omitempty"`
	NIS         string          `json:"nis,omitempty"`
	CarteFellah string          `json:"carteFellah,omitempty"` // farmer subsidy card
}

// IsWalkIn reports whether c is the anonymous counter client.
func (c Client) IsWalkIn() bool {
	return c.ID == WalkInClientID
}

// Supplier is a vendor account. TotalDebt is what the business owes it.
type Supplier struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	TotalDebt decimal.Decimal `json:"totalDebt"`
	NIF       string          `json:"nif,omitempty"`
	NIS       string          `json:"nis,omitempty"`
}
