package ledger

import (
	"slices"

	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// The functions in this file apply one business event to a snapshot and
// return the resulting snapshot. They never modify the slices of the
// snapshot they receive, so a caller that discards the result has not
// changed anything.

// CreateInvoice records a sale: the invoice is prepended, every line takes
// its quantity out of stock, and the client's debt grows by the unpaid
// remainder. Invoice totals are taken as given.
func CreateInvoice(data models.AppData, invoice models.Invoice) (models.AppData, Report) {
	const op = "CreateInvoice"
	var report Report

	invoice.Items = slices.Clone(invoice.Items)
	data.Invoices = prepend(data.Invoices, invoice)
	data.Products = adjustStock(op, data.Products, invoice.Items, decimal.Decimal.Sub, &report)

	var found bool
	data.Clients, found = adjustClientDebt(data.Clients, invoice.ClientID, invoice.RemainingAmount)
	if !found {
		report.miss(op, KindClient, invoice.ClientID)
	}

	return data, report
}

// UpdateInvoicePayment sets the total amount paid on an invoice and moves
// the difference off (or back onto) the client's debt. An unknown invoice
// leaves the snapshot unchanged.
func UpdateInvoicePayment(data models.AppData, id string, newPaid decimal.Decimal) (models.AppData, Report) {
	const op = "UpdateInvoicePayment"
	var report Report

	i := indexOf(data.Invoices, id, invoiceID)
	if i < 0 {
		report.miss(op, KindInvoice, id)
		return data, report
	}

	invoices := slices.Clone(data.Invoices)
	inv := invoices[i]
	diff := newPaid.Sub(inv.PaidAmount)
	inv.PaidAmount = newPaid
	inv.RemainingAmount = inv.TotalAmount.Sub(newPaid)
	invoices[i] = inv
	data.Invoices = invoices

	var found bool
	data.Clients, found = adjustClientDebt(data.Clients, inv.ClientID, diff.Neg())
	if !found {
		report.miss(op, KindClient, inv.ClientID)
	}

	return data, report
}

// AddPayment records cash received from a client. The debt may go negative,
// which is a credit in the client's favour.
func AddPayment(data models.AppData, payment models.Payment) (models.AppData, Report) {
	const op = "AddPayment"
	var report Report

	data.Payments = prepend(data.Payments, payment)

	var found bool
	data.Clients, found = adjustClientDebt(data.Clients, payment.ClientID, payment.Amount.Neg())
	if !found {
		report.miss(op, KindClient, payment.ClientID)
	}

	return data, report
}

// AddSupplierPayment records cash paid to a supplier.
func AddSupplierPayment(data models.AppData, payment models.SupplierPayment) (models.AppData, Report) {
	const op = "AddSupplierPayment"
	var report Report

	data.SupplierPayments = prepend(data.SupplierPayments, payment)

	var found bool
	data.Suppliers, found = adjustSupplierDebt(data.Suppliers, payment.SupplierID, payment.Amount.Neg())
	if !found {
		report.miss(op, KindSupplier, payment.SupplierID)
	}

	return data, report
}

// AddReturn puts returned goods back in stock and refunds them against the
// client's debt.
func AddReturn(data models.AppData, ret models.ProductReturn) (models.AppData, Report) {
	const op = "AddReturn"
	var report Report

	data.Returns = prepend(data.Returns, ret)
	data.Products = adjustStock(op, data.Products,
		[]models.InvoiceItem{{ProductID: ret.ProductID, Quantity: ret.Quantity}},
		decimal.Decimal.Add, &report)

	var found bool
	data.Clients, found = adjustClientDebt(data.Clients, ret.ClientID, ret.TotalRefund.Neg())
	if !found {
		report.miss(op, KindClient, ret.ClientID)
	}

	return data, report
}

// AddPurchase receives supplier goods into stock and adds the order total to
// what is owed to the supplier.
func AddPurchase(data models.AppData, purchase models.PurchaseOrder) (models.AppData, Report) {
	const op = "AddPurchase"
	var report Report

	purchase.Items = slices.Clone(purchase.Items)
	data.Purchases = prepend(data.Purchases, purchase)
	data.Products = adjustStock(op, data.Products, purchase.Items, decimal.Decimal.Add, &report)

	var found bool
	data.Suppliers, found = adjustSupplierDebt(data.Suppliers, purchase.SupplierID, purchase.TotalAmount)
	if !found {
		report.miss(op, KindSupplier, purchase.SupplierID)
	}

	return data, report
}

// SetInvoiceDeliveryStatus changes the delivery flag of an invoice. It has
// no effect on stock or balances, and either status may follow the other.
func SetInvoiceDeliveryStatus(data models.AppData, id string, status models.DeliveryStatus) (models.AppData, Report, error) {
	const op = "SetInvoiceDeliveryStatus"
	var report Report

	if !status.Valid() {
		return data, report, NewLedgerError(op, string(status), ErrInvalidStatus)
	}

	i := indexOf(data.Invoices, id, invoiceID)
	if i < 0 {
		report.miss(op, KindInvoice, id)
		return data, report, nil
	}

	invoices := slices.Clone(data.Invoices)
	invoices[i].DeliveryStatus = status
	data.Invoices = invoices

	return data, report, nil
}

// adjustStock applies apply(stock, quantity) to the product of every line.
// Lines naming an unknown product are reported and skipped.
func adjustStock(
	op string,
	products []models.Product,
	lines []models.InvoiceItem,
	apply func(stock, quantity decimal.Decimal) decimal.Decimal,
	report *Report,
) []models.Product {
	if len(lines) == 0 {
		return products
	}

	out := slices.Clone(products)
	for _, line := range lines {
		i := indexOf(out, line.ProductID, productID)
		if i < 0 {
			report.miss(op, KindProduct, line.ProductID)
			continue
		}
		out[i].Stock = apply(out[i].Stock, line.Quantity)
	}
	return out
}

func adjustClientDebt(clients []models.Client, id string, delta decimal.Decimal) ([]models.Client, bool) {
	i := indexOf(clients, id, clientID)
	if i < 0 {
		return clients, false
	}
	out := slices.Clone(clients)
	out[i].TotalDebt = out[i].TotalDebt.Add(delta)
	return out, true
}

func adjustSupplierDebt(suppliers []models.Supplier, id string, delta decimal.Decimal) ([]models.Supplier, bool) {
	i := indexOf(suppliers, id, supplierID)
	if i < 0 {
		return suppliers, false
	}
	out := slices.Clone(suppliers)
	out[i].TotalDebt = out[i].TotalDebt.Add(delta)
	return out, true
}

// prepend returns a new slice with v in front of s.
func prepend[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

func indexOf[T any](s []T, id string, key func(T) string) int {
	return slices.IndexFunc(s, func(v T) bool { return key(v) == id })
}
