package ledger

import (
	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// DefaultLowStockThreshold flags products with fewer than ten units left.
var DefaultLowStockThreshold = decimal.NewFromInt(10)

const recentInvoiceCount = 10

// Summary holds the dashboard figures.
type Summary struct {
	TotalSales        decimal.Decimal  `json:"totalSales"`
	TotalClientDebt   decimal.Decimal  `json:"totalClientDebt"`
	TotalSupplierDebt decimal.Decimal  `json:"totalSupplierDebt"`
	InvoiceCount      int              `json:"invoiceCount"`
	PendingDeliveries int              `json:"pendingDeliveries"`
	LowStock          []models.Product `json:"lowStock"`
	RecentInvoices    []models.Invoice `json:"recentInvoices"`
}

// Summarize computes the dashboard. Products whose stock is strictly below
// lowStock are listed as low.
func Summarize(data models.AppData, lowStock decimal.Decimal) Summary {
	s := Summary{
		TotalSales:        decimal.Zero,
		TotalClientDebt:   decimal.Zero,
		TotalSupplierDebt: decimal.Zero,
		InvoiceCount:      len(data.Invoices),
		LowStock:          []models.Product{},
	}

	for _, inv := range data.Invoices {
		s.TotalSales = s.TotalSales.Add(inv.TotalAmount)
		if inv.DeliveryStatus == models.DeliveryPending {
			s.PendingDeliveries++
		}
	}
	for _, c := range data.Clients {
		s.TotalClientDebt = s.TotalClientDebt.Add(c.TotalDebt)
	}
	for _, sup := range data.Suppliers {
		s.TotalSupplierDebt = s.TotalSupplierDebt.Add(sup.TotalDebt)
	}
	for _, p := range data.Products {
		if p.Stock.LessThan(lowStock) {
			s.LowStock = append(s.LowStock, p)
		}
	}

	// Invoices are kept newest first.
	n := min(recentInvoiceCount, len(data.Invoices))
	s.RecentInvoices = append([]models.Invoice{}, data.Invoices[:n]...)

	return s
}
