package storage

import (
	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// DefaultData returns the snapshot a fresh installation starts from: one
// seed product, the walk-in client, the shop letterhead and empty history.
func DefaultData() models.AppData {
	return models.AppData{
		Products:         defaultProducts(),
		Clients:          defaultClients(),
		Suppliers:        []models.Supplier{},
		Invoices:         []models.Invoice{},
		Returns:          []models.ProductReturn{},
		Purchases:        []models.PurchaseOrder{},
		Payments:         []models.Payment{},
		SupplierPayments: []models.SupplierPayment{},
		CompanyInfo:      defaultCompanyInfo(),
	}
}

func defaultProducts() []models.Product {
	return []models.Product{{
		ID:        "1",
		Reference: "AL-DEM",
		Name:      "Aliment Démarrage",
		Unit:      "Qt",
		Price:     decimal.NewFromInt(8500),
		Stock:     decimal.NewFromInt(50),
	}}
}

func defaultClients() []models.Client {
	return []models.Client{{
		ID:        models.WalkInClientID,
		Name:      "Client Passager",
		TotalDebt: decimal.Zero,
	}}
}

func defaultCompanyInfo() models.CompanyInfo {
	return models.CompanyInfo{
		Name:    "ETS MERABET & FILS",
		Address: "Route de Barbacha, Amizour - Bejaia",
		Phone:   "05 60 96 88 58",
	}
}
