package models

import "github.com/shopspring/decimal"

// DeliveryStatus records whether the goods on an invoice have left the
// premises. It is independent of payment.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Valid reports whether s is a known delivery status.
func (s DeliveryStatus) Valid() bool {
	return s == DeliveryPending || s == DeliveryDelivered
}

// InvoiceItem is one line of an invoice or purchase order. ProductName and
// Unit are copies taken when the line was written and are never resynced
// with the product catalogue.
type InvoiceItem struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Total       decimal.Decimal `json:"total"`
}

// NewInvoiceItem builds a line for product, freezing its name and unit and
// computing Total = quantity × unitPrice.
func NewInvoiceItem(product Product, quantity, unitPrice decimal.Decimal) InvoiceItem {
	return InvoiceItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Unit:        product.Unit,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       quantity.Mul(unitPrice),
	}
}

// ItemsTotal sums the Total of every line.
func ItemsTotal(items []InvoiceItem) decimal.Decimal {
	totals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		totals[i] = item.Total
	}
	return SumDecimals(totals...)
}

// Invoice is a sale to a client. Totals are computed once at creation;
// only UpdateInvoicePayment recomputes RemainingAmount afterwards.
type Invoice struct {
	ID              string          `json:"id" validate:"required"`
	Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
	Number          string          `json:"number" validate:"required"`
	ClientID        string          `json:"clientId" validate:"required"`
	ClientName      string          `json:"clientName"`
	ClientAddress   string          `json:"clientAddress,omitempty"`
	Items           []InvoiceItem   `json:"items" validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount" validate:"gte=0"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	DeliveryStatus  DeliveryStatus  `json:"deliveryStatus" validate:"oneof=pending delivered"`
}

// NewInvoice assembles an invoice for client, copying the client's name and
// address and computing TotalAmount and RemainingAmount from the lines.
func NewInvoice(id, number, date string, client Client, items []InvoiceItem, paid decimal.Decimal, status DeliveryStatus) Invoice {
	total := ItemsTotal(items)
	return Invoice{
		ID:              id,
		Date:            date,
		Number:          number,
		ClientID:        client.ID,
		ClientName:      client.Name,
		ClientAddress:   client.Address,
		Items:           items,
		TotalAmount:     total,
		PaidAmount:      paid,
		RemainingAmount: total.Sub(paid),
		DeliveryStatus:  status,
	}
}
