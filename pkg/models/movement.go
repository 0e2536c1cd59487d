package models

import "github.com/shopspring/decimal"

// PurchaseStatus tracks whether a supplier order has arrived.
type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseReceived PurchaseStatus = "received"
)

// Valid reports whether s is a known purchase status.
func (s PurchaseStatus) Valid() bool {
	return s == PurchasePending || s == PurchaseReceived
}

// ProductReturn is merchandise brought back by a client and refunded
// against the client's balance.
type ProductReturn struct {
	ID          string          `json:"id" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	ClientID    string          `json:"clientId" validate:"required"`
	ClientName  string          `json:"clientName"`
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	TotalRefund decimal.Decimal `json:"totalRefund"`
}

// NewProductReturn builds a return, copying client and product names and
// computing TotalRefund = quantity × unitPrice.
func NewProductReturn(id, date string, client Client, product Product, quantity, unitPrice decimal.Decimal) ProductReturn {
	return ProductReturn{
		ID:          id,
		Date:        date,
		ClientID:    client.ID,
		ClientName:  client.Name,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalRefund: quantity.Mul(unitPrice),
	}
}

// PurchaseOrder is stock bought from a supplier on credit.
type PurchaseOrder struct {
	ID           string          `json:"id" validate:"required"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	SupplierID   string          `json:"supplierId" validate:"required"`
	SupplierName string          `json:"supplierName"`
	Items        []InvoiceItem   `json:"items" validate:"required,min=1,dive"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       PurchaseStatus  `json:"status" validate:"oneof=pending received"`
}

// NewPurchaseOrder assembles a purchase from supplier, computing TotalAmount
// from the lines.
func NewPurchaseOrder(id, date string, supplier Supplier, items []InvoiceItem, status PurchaseStatus) PurchaseOrder {
	return PurchaseOrder{
		ID:           id,
		Date:         date,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Items:        items,
		TotalAmount:  ItemsTotal(items),
		Status:       status,
	}
}

// Payment is a cash receipt (versement) from a client.
type Payment struct {
	ID         string          `json:"id" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	ClientID   string          `json:"clientId" validate:"required"`
	ClientName string          `json:"clientName"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Note       string          `json:"note,omitempty"`
}

// SupplierPayment is cash paid out to a supplier.
type SupplierPayment struct {
	ID           string          `json:"id" validate:"required"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	SupplierID   string          `json:"supplierId" validate:"required"`
	SupplierName string          `json:"supplierName"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	Note         string          `json:"note,omitempty"`
}
