package models

import "slices"

// CompanyInfo is the business letterhead printed on documents.
type CompanyInfo struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	NIF     string `json:"nif,omitempty"`
	NIS     string `json:"nis,omitempty"`
	RC      string `json:"rc,omitempty"`   // trade register number
	Logo    string `json:"logo,omitempty"` // data URL of the logo image
}

// AppData is the whole ledger: every collection the business keeps. Its JSON
// form is both the stored snapshot and the backup file format.
type AppData struct {
	Products         []Product         `json:"products"`
	Clients          []Client          `json:"clients"`
	Suppliers        []Supplier        `json:"suppliers"`
	Invoices         []Invoice         `json:"invoices"`
	Returns          []ProductReturn   `json:"returns"`
	Purchases        []PurchaseOrder   `json:"purchases"`
	Payments         []Payment         `json:"payments"`
	SupplierPayments []SupplierPayment `json:"supplierPayments"`
	CompanyInfo      CompanyInfo       `json:"companyInfo"`
}

// Clone returns a deep copy of d. Item lists embedded in invoices and
// purchases are copied as well.
func (d AppData) Clone() AppData {
	out := AppData{
		Products:         cloneSlice(d.Products),
		Clients:          cloneSlice(d.Clients),
		Suppliers:        cloneSlice(d.Suppliers),
		Invoices:         cloneSlice(d.Invoices),
		Returns:          cloneSlice(d.Returns),
		Purchases:        cloneSlice(d.Purchases),
		Payments:         cloneSlice(d.Payments),
		SupplierPayments: cloneSlice(d.SupplierPayments),
		CompanyInfo:      d.CompanyInfo,
	}
	for i := range out.Invoices {
		out.Invoices[i].Items = cloneSlice(out.Invoices[i].Items)
	}
	for i := range out.Purchases {
		out.Purchases[i].Items = cloneSlice(out.Purchases[i].Items)
	}
	return out
}

// cloneSlice copies s, keeping nil as nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
