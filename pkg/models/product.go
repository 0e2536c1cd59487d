package models

import "github.com/shopspring/decimal"

// Product is a stock-keeping item sold by weight, bag or unit.
type Product struct {
	ID        string          `json:"id" validate:"required"`
	Reference string          `json:"reference,omitempty"` // short catalogue code, e.g. "AL-DEM"
	Name      string          `json:"name" validate:"required"`
	Unit      string          `json:"unit" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`

	// Stock is signed: invoices may oversell and drive it below zero.
	Stock decimal.Decimal `json:"stock"`
}
