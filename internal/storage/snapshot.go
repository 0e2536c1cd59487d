package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"agroledger/pkg/models"
)

// Key is the blob key the snapshot is stored under.
const Key = "agro_gestion_data_v2"

// wireData mirrors models.AppData with every field optional, so that a
// payload written by an older version can be told apart from an empty one.
type wireData struct {
	Products         []models.Product         `json:"products"`
	Clients          []models.Client          `json:"clients"`
	Suppliers        []models.Supplier        `json:"suppliers"`
	Invoices         []models.Invoice         `json:"invoices"`
	Returns          []models.ProductReturn   `json:"returns"`
	Purchases        []models.PurchaseOrder   `json:"purchases"`
	Payments         []models.Payment         `json:"payments"`
	SupplierPayments []models.SupplierPayment `json:"supplierPayments"`
	CompanyInfo      *models.CompanyInfo      `json:"companyInfo"`
}

// withDefaults fills whatever the payload left out. Missing products and
// clients fall back to the seed catalogue; other collections start empty.
func (w wireData) withDefaults() models.AppData {
	data := models.AppData{
		Products:         orDefault(w.Products, defaultProducts),
		Clients:          orDefault(w.Clients, defaultClients),
		Suppliers:        orEmpty(w.Suppliers),
		Invoices:         orEmpty(w.Invoices),
		Returns:          orEmpty(w.Returns),
		Purchases:        orEmpty(w.Purchases),
		Payments:         orEmpty(w.Payments),
		SupplierPayments: orEmpty(w.SupplierPayments),
		CompanyInfo:      defaultCompanyInfo(),
	}
	if w.CompanyInfo != nil {
		data.CompanyInfo = *w.CompanyInfo
	}
	return data
}

func orDefault[T any](s []T, seed func() []T) []T {
	if s == nil {
		return seed()
	}
	return s
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Decode parses a snapshot payload and merges it over the defaults.
func Decode(raw []byte) (models.AppData, error) {
	const op = "Decode"

	if len(bytes.TrimSpace(raw)) == 0 {
		return models.AppData{}, WrapStorageError(op, "", ErrEmptySnapshot, "")
	}

	var w wireData
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.AppData{}, WrapStorageError(op, "", fmt.Errorf("%w: %v", ErrMalformedSnapshot, err), "")
	}
	return w.withDefaults(), nil
}

// Export writes data as two-space indented JSON, the backup file format.
func Export(w io.Writer, data models.AppData) error {
	const op = "Export"

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("%s: failed to encode snapshot: %w", op, err)
	}
	return nil
}

// ExportFileName is the suggested name of a backup taken at t.
func ExportFileName(t time.Time) string {
	return "agro_pro_backup_" + t.Format(time.DateOnly) + ".json"
}

// Import reads a backup produced by Export (or by an older version) and
// returns it merged over the defaults. The caller's state is not touched
// on error.
func Import(r io.Reader) (models.AppData, error) {
	const op = "Import"

	raw, err := io.ReadAll(r)
	if err != nil {
		return models.AppData{}, WrapStorageError(op, "", err, "failed to read backup")
	}
	data, err := Decode(raw)
	if err != nil {
		return models.AppData{}, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}
