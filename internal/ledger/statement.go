package ledger

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Period bounds a statement by ISO dates (YYYY-MM-DD), both inclusive.
// An empty bound leaves that side open.
type Period struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Contains reports whether date falls inside the period. Only the calendar
// part of a timestamp is compared.
func (p Period) Contains(date string) bool {
	d := dateKey(date)
	if p.From != "" && d < p.From {
		return false
	}
	if p.To != "" && d > p.To {
		return false
	}
	return true
}

func dateKey(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// EntryType classifies a statement line.
type EntryType string

const (
	EntryInvoice         EntryType = "invoice"
	EntryPayment         EntryType = "payment"
	EntryReturn          EntryType = "return"
	EntryPurchase        EntryType = "purchase"
	EntrySupplierPayment EntryType = "supplier_payment"
)

// Entry is one line of an account statement. Debit raises the balance,
// Credit lowers it.
type Entry struct {
	Type      EntryType       `json:"type"`
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Reference string          `json:"reference,omitempty"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// ClientStatement is a read-only view of a client's account over a period.
// Its figures are recomputed from history and never written back.
type ClientStatement struct {
	Client    models.Client   `json:"client"`
	Period    Period          `json:"period"`
	Entries   []Entry         `json:"entries"`
	Purchased decimal.Decimal `json:"purchased"`
	Paid      decimal.Decimal `json:"paid"`
	Returned  decimal.Decimal `json:"returned"`
	Balance   decimal.Decimal `json:"balance"`
}

// SupplierStatement is a read-only view of a supplier's account over a period.
type SupplierStatement struct {
	Supplier  models.Supplier `json:"supplier"`
	Period    Period          `json:"period"`
	Entries   []Entry         `json:"entries"`
	Purchased decimal.Decimal `json:"purchased"`
	Paid      decimal.Decimal `json:"paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// BuildClientStatement gathers the invoices, payments and returns of a
// client inside period, newest first. Paid counts both amounts settled on
// invoices and separate payments.
func BuildClientStatement(data models.AppData, id string, period Period) (ClientStatement, error) {
	const op = "BuildClientStatement"

	i := indexOf(data.Clients, id, clientID)
	if i < 0 {
		return ClientStatement{}, NewLedgerError(op, id, ErrNotFound)
	}

	st := ClientStatement{
		Client:    data.Clients[i],
		Period:    period,
		Entries:   []Entry{},
		Purchased: decimal.Zero,
		Paid:      decimal.Zero,
		Returned:  decimal.Zero,
	}

	for _, inv := range data.Invoices {
		if inv.ClientID != id || !period.Contains(inv.Date) {
			continue
		}
		st.Purchased = st.Purchased.Add(inv.TotalAmount)
		st.Paid = st.Paid.Add(inv.PaidAmount)
		st.Entries = append(st.Entries, Entry{
			Type: EntryInvoice, ID: inv.ID, Date: inv.Date, Reference: inv.Number,
			Debit: inv.TotalAmount, Credit: inv.PaidAmount,
		})
	}
	for _, pay := range data.Payments {
		if pay.ClientID != id || !period.Contains(pay.Date) {
			continue
		}
		st.Paid = st.Paid.Add(pay.Amount)
		st.Entries = append(st.Entries, Entry{
			Type: EntryPayment, ID: pay.ID, Date: pay.Date, Reference: pay.Note,
			Debit: decimal.Zero, Credit: pay.Amount,
		})
	}
	for _, ret := range data.Returns {
		if ret.ClientID != id || !period.Contains(ret.Date) {
			continue
		}
		st.Returned = st.Returned.Add(ret.TotalRefund)
		st.Entries = append(st.Entries, Entry{
			Type: EntryReturn, ID: ret.ID, Date: ret.Date, Reference: ret.ProductName,
			Debit: decimal.Zero, Credit: ret.TotalRefund,
		})
	}

	st.Balance = st.Purchased.Sub(st.Paid).Sub(st.Returned)
	sortNewestFirst(st.Entries)
	return st, nil
}

// BuildSupplierStatement gathers the purchases and payments of a supplier
// inside period, newest first.
func BuildSupplierStatement(data models.AppData, id string, period Period) (SupplierStatement, error) {
	const op = "BuildSupplierStatement"

	i := indexOf(data.Suppliers, id, supplierID)
	if i < 0 {
		return SupplierStatement{}, NewLedgerError(op, id, ErrNotFound)
	}

	st := SupplierStatement{
		Supplier:  data.Suppliers[i],
		Period:    period,
		Entries:   []Entry{},
		Purchased: decimal.Zero,
		Paid:      decimal.Zero,
	}

	for _, pur := range data.Purchases {
		if pur.SupplierID != id || !period.Contains(pur.Date) {
			continue
		}
		st.Purchased = st.Purchased.Add(pur.TotalAmount)
		st.Entries = append(st.Entries, Entry{
			Type: EntryPurchase, ID: pur.ID, Date: pur.Date,
			Debit: pur.TotalAmount, Credit: decimal.Zero,
		})
	}
	for _, pay := range data.SupplierPayments {
		if pay.SupplierID != id || !period.Contains(pay.Date) {
			continue
		}
		st.Paid = st.Paid.Add(pay.Amount)
		st.Entries = append(st.Entries, Entry{
			Type: EntrySupplierPayment, ID: pay.ID, Date: pay.Date, Reference: pay.Note,
			Debit: decimal.Zero, Credit: pay.Amount,
		})
	}

	st.Balance = st.Purchased.Sub(st.Paid)
	sortNewestFirst(st.Entries)
	return st, nil
}

func sortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return strings.Compare(dateKey(b.Date), dateKey(a.Date))
	})
}
