package sheets

import (
	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Tab is one worksheet as it will be written: a header row and its data.
type Tab struct {
	Title  string
	Header []any
	Rows   [][]any
}

// Tabs builds every exported worksheet from a snapshot.
func Tabs(data models.AppData) []Tab {
	return []Tab{
		{Title: "Clients", Header: clientHeader, Rows: ClientRows(data.Clients)},
		{Title: "Invoices", Header: invoiceHeader, Rows: InvoiceRows(data.Invoices)},
		{Title: "Stock", Header: stockHeader, Rows: StockRows(data.Products)},
	}
}

var (
	clientHeader  = []any{"ID", "Nom", "Téléphone", "Adresse", "Dette"}
	invoiceHeader = []any{"N° Facture", "Date", "Client", "Total", "Versé", "Reste", "Livraison"}
	stockHeader   = []any{"Référence", "Désignation", "Unité", "Prix", "Stock"}
)

// ClientRows lists clients with their running debt.
func ClientRows(clients []models.Client) [][]any {
	rows := make([][]any, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []any{c.ID, c.Name, c.Phone, c.Address, number(c.TotalDebt)})
	}
	return rows
}

// InvoiceRows lists invoices in stored order, newest first.
func InvoiceRows(invoices []models.Invoice) [][]any {
	rows := make([][]any, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, []any{
			inv.Number,
			inv.Date,
			inv.ClientName,
			number(inv.TotalAmount),
			number(inv.PaidAmount),
			number(inv.RemainingAmount),
			deliveryLabel(inv.DeliveryStatus),
		})
	}
	return rows
}

// StockRows lists the product catalogue with current stock.
func StockRows(products []models.Product) [][]any {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{p.Reference, p.Name, p.Unit, number(p.Price), number(p.Stock)})
	}
	return rows
}

func deliveryLabel(s models.DeliveryStatus) string {
	switch s {
	case models.DeliveryDelivered:
		return "Livrée"
	case models.DeliveryPending:
		return "En attente"
	default:
		return string(s)
	}
}

// number renders a decimal for a USER_ENTERED cell. Sheets stores numbers
// as doubles anyway.
func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// columnName converts a 1-based column index to its A1 letters.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
