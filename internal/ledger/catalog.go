package ledger

import (
	"slices"

	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Catalogue maintenance: products, clients and suppliers. Deleting an entity
// only removes it from its live collection; invoices, returns, purchases and
// payments that name it keep their copied names and a dangling id.

func productID(p models.Product) string   { return p.ID }
func clientID(c models.Client) string     { return c.ID }
func supplierID(s models.Supplier) string { return s.ID }
func invoiceID(i models.Invoice) string   { return i.ID }

// AddProduct appends a product. The id must be new.
func AddProduct(data models.AppData, product models.Product) (models.AppData, error) {
	const op = "AddProduct"

	if indexOf(data.Products, product.ID, productID) >= 0 {
		return data, NewLedgerError(op, product.ID, ErrDuplicateID)
	}
	data.Products = appendClone(data.Products, product)
	return data, nil
}

// UpdateProduct replaces the product with the same id.
func UpdateProduct(data models.AppData, product models.Product) (models.AppData, Report) {
	const op = "UpdateProduct"
	var report Report

	data.Products = replaceByID(data.Products, product, productID, func() {
		report.miss(op, KindProduct, product.ID)
	})
	return data, report
}

// DeleteProduct removes a product from the catalogue.
func DeleteProduct(data models.AppData, id string) (models.AppData, Report) {
	const op = "DeleteProduct"
	var report Report

	data.Products = removeByID(data.Products, id, productID, func() {
		report.miss(op, KindProduct, id)
	})
	return data, report
}

// AddClient appends a client with a zero balance. The id must be new.
func AddClient(data models.AppData, client models.Client) (models.AppData, error) {
	const op = "AddClient"

	if indexOf(data.Clients, client.ID, clientID) >= 0 {
		return data, NewLedgerError(op, client.ID, ErrDuplicateID)
	}
	client.TotalDebt = decimal.Zero
	data.Clients = appendClone(data.Clients, client)
	return data, nil
}

// UpdateClient replaces the client with the same id, balance included.
func UpdateClient(data models.AppData, client models.Client) (models.AppData, Report) {
	const op = "UpdateClient"
	var report Report

	data.Clients = replaceByID(data.Clients, client, clientID, func() {
		report.miss(op, KindClient, client.ID)
	})
	return data, report
}

// DeleteClient removes a client. The walk-in client is permanent.
func DeleteClient(data models.AppData, id string) (models.AppData, Report, error) {
	const op = "DeleteClient"
	var report Report

	if id == models.WalkInClientID {
		return data, report, NewLedgerError(op, id, ErrWalkInClient)
	}
	data.Clients = removeByID(data.Clients, id, clientID, func() {
		report.miss(op, KindClient, id)
	})
	return data, report, nil
}

// AddSupplier appends a supplier with a zero balance. The id must be new.
func AddSupplier(data models.AppData, supplier models.Supplier) (models.AppData, error) {
	const op = "AddSupplier"

	if indexOf(data.Suppliers, supplier.ID, supplierID) >= 0 {
		return data, NewLedgerError(op, supplier.ID, ErrDuplicateID)
	}
	supplier.TotalDebt = decimal.Zero
	data.Suppliers = appendClone(data.Suppliers, supplier)
	return data, nil
}

// UpdateSupplier replaces the supplier with the same id, balance included.
func UpdateSupplier(data models.AppData, supplier models.Supplier) (models.AppData, Report) {
	const op = "UpdateSupplier"
	var report Report

	data.Suppliers = replaceByID(data.Suppliers, supplier, supplierID, func() {
		report.miss(op, KindSupplier, supplier.ID)
	})
	return data, report
}

// DeleteSupplier removes a supplier.
func DeleteSupplier(data models.AppData, id string) (models.AppData, Report) {
	const op = "DeleteSupplier"
	var report Report

	data.Suppliers = removeByID(data.Suppliers, id, supplierID, func() {
		report.miss(op, KindSupplier, id)
	})
	return data, report
}

// UpdateCompanyInfo replaces the letterhead.
func UpdateCompanyInfo(data models.AppData, info models.CompanyInfo) models.AppData {
	data.CompanyInfo = info
	return data
}

func appendClone[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s...)
	return append(out, v)
}

func replaceByID[T any](s []T, v T, key func(T) string, missing func()) []T {
	i := indexOf(s, key(v), key)
	if i < 0 {
		missing()
		return s
	}
	out := slices.Clone(s)
	out[i] = v
	return out
}

func removeByID[T any](s []T, id string, key func(T) string, missing func()) []T {
	if indexOf(s, id, key) < 0 {
		missing()
		return s
	}
	out := make([]T, 0, len(s)-1)
	for _, v := range s {
		if key(v) != id {
			out = append(out, v)
		}
	}
	return out
}
