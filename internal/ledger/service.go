// Package ledger maintains the stock levels and running client and supplier
// balances of the business.
//
// Every business event (sale, payment, return, purchase, supplier payment)
// is a pure function from one AppData snapshot to the next. Balances are
// accumulated incrementally by those functions and are not recomputed from
// history on read, so applying the same events in another order, or
// skipping one, leaves a permanent drift; Reconcile exposes such drift by
// comparing each balance with the figure rebuilt from documents.
//
// Side effects that reference an unknown product, client or supplier are
// skipped rather than failing the operation: the document is still
// recorded, and the skipped lookups are returned in a Report.
//
// Service wraps a snapshot with a single mutex so that one ledger can be
// shared between goroutines. It performs no I/O; callers persist
// Service.Snapshot after each mutation.
package ledger

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"agroledger/internal/logger"
	"agroledger/pkg/models"
)

// Service owns the in-memory ledger. All methods are safe for concurrent use.
type Service struct {
	mu   sync.Mutex
	data models.AppData
	log  zerolog.Logger
}

// New creates a Service holding a private copy of data.
func New(data models.AppData) *Service {
	return &Service{
		data: data.Clone(),
		log:  logger.WithComponent("ledger"),
	}
}

// Snapshot returns a deep copy of the current state, ready to be saved.
func (s *Service) Snapshot() models.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Replace adopts data as the current state, e.g. after a backup import.
func (s *Service) Replace(data models.AppData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
	s.log.Info().
		Int("products", len(data.Products)).
		Int("clients", len(data.Clients)).
		Int("invoices", len(data.Invoices)).
		Msg("Ledger state replaced")
}

// apply runs one operation inside the critical section. The new state is
// adopted only when fn succeeds.
func (s *Service) apply(op string, fn func(models.AppData) (models.AppData, Report, error)) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, report, err := fn(s.data)
	if err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("Ledger operation rejected")
		return report, err
	}
	s.data = next

	if !report.OK() {
		log := logger.WithOperation("ledger", op)
		for _, m := range report.Misses {
			log.Warn().
				Str("kind", string(m.Kind)).
				Str("id", m.ID).
				Msg("Referenced entity not found, side effect skipped")
		}
	}
	return report, nil
}

// CreateInvoice records a sale. An invoice without a number is given the
// next FAC-NNNNNN number. The stored invoice is returned.
func (s *Service) CreateInvoice(invoice models.Invoice) (models.Invoice, Report) {
	report, _ := s.apply("CreateInvoice", func(d models.AppData) (models.AppData, Report, error) {
		if invoice.Number == "" {
			invoice.Number = NextInvoiceNumber(d)
		}
		next, r := CreateInvoice(d, invoice)
		return next, r, nil
	})
	return invoice, report
}

// UpdateInvoicePayment sets the amount paid on an invoice.
func (s *Service) UpdateInvoicePayment(invoiceID string, newPaid decimal.Decimal) Report {
	report, _ := s.apply("UpdateInvoicePayment", func(d models.AppData) (models.AppData, Report, error) {
		next, r := UpdateInvoicePayment(d, invoiceID, newPaid)
		return next, r, nil
	})
	return report
}

// SetInvoiceDeliveryStatus changes the delivery flag of an invoice.
func (s *Service) SetInvoiceDeliveryStatus(invoiceID string, status models.DeliveryStatus) (Report, error) {
	return s.apply("SetInvoiceDeliveryStatus", func(d models.AppData) (models.AppData, Report, error) {
		return SetInvoiceDeliveryStatus(d, invoiceID, status)
	})
}

// AddPayment records cash received from a client.
func (s *Service) AddPayment(payment models.Payment) Report {
	report, _ := s.apply("AddPayment", func(d models.AppData) (models.AppData, Report, error) {
		next, r := AddPayment(d, payment)
		return next, r, nil
	})
	return report
}

// AddSupplierPayment records cash paid to a supplier.
func (s *Service) AddSupplierPayment(payment models.SupplierPayment) Report {
	report, _ := s.apply("AddSupplierPayment", func(d models.AppData) (models.AppData, Report, error) {
		next, r := AddSupplierPayment(d, payment)
		return next, r, nil
	})
	return report
}

// AddReturn records goods returned by a client.
func (s *Service) AddReturn(ret models.ProductReturn) Report {
	report, _ := s.apply("AddReturn", func(d models.AppData) (models.AppData, Report, error) {
		next, r := AddReturn(d, ret)
		return next, r, nil
	})
	return report
}

// AddPurchase records goods bought from a supplier.
func (s *Service) AddPurchase(purchase models.PurchaseOrder) Report {
	report, _ := s.apply("AddPurchase", func(d models.AppData) (models.AppData, Report, error) {
		next, r := AddPurchase(d, purchase)
		return next, r, nil
	})
	return report
}

// AddProduct adds a product to the catalogue. A duplicate id is rejected.
func (s *Service) AddProduct(product models.Product) error {
	_, err := s.apply("AddProduct", func(d models.AppData) (models.AppData, Report, error) {
		next, err := AddProduct(d, product)
		return next, Report{}, err
	})
	return err
}

// UpdateProduct replaces the product with the same id.
func (s *Service) UpdateProduct(product models.Product) Report {
	report, _ := s.apply("UpdateProduct", func(d models.AppData) (models.AppData, Report, error) {
		next, r := UpdateProduct(d, product)
		return next, r, nil
	})
	return report
}

// DeleteProduct removes a product. Documents referencing it are kept.
func (s *Service) DeleteProduct(id string) Report {
	report, _ := s.apply("DeleteProduct", func(d models.AppData) (models.AppData, Report, error) {
		next, r := DeleteProduct(d, id)
		return next, r, nil
	})
	return report
}

// AddClient adds a client. A duplicate id is rejected.
func (s *Service) AddClient(client models.Client) error {
	_, err := s.apply("AddClient", func(d models.AppData) (models.AppData, Report, error) {
		next, err := AddClient(d, client)
		return next, Report{}, err
	})
	return err
}

// UpdateClient replaces the client with the same id, balance included.
func (s *Service) UpdateClient(client models.Client) Report {
	report, _ := s.apply("UpdateClient", func(d models.AppData) (models.AppData, Report, error) {
		next, r := UpdateClient(d, client)
		return next, r, nil
	})
	return report
}

// DeleteClient removes a client. Its documents are kept and the walk-in
// client cannot be deleted.
func (s *Service) DeleteClient(id string) (Report, error) {
	return s.apply("DeleteClient", func(d models.AppData) (models.AppData, Report, error) {
		return DeleteClient(d, id)
	})
}

// AddSupplier adds a supplier. A duplicate id is rejected.
func (s *Service) AddSupplier(supplier models.Supplier) error {
	_, err := s.apply("AddSupplier", func(d models.AppData) (models.AppData, Report, error) {
		next, err := AddSupplier(d, supplier)
		return next, Report{}, err
	})
	return err
}

// UpdateSupplier replaces the supplier with the same id, balance included.
func (s *Service) UpdateSupplier(supplier models.Supplier) Report {
	report, _ := s.apply("UpdateSupplier", func(d models.AppData) (models.AppData, Report, error) {
		next, r := UpdateSupplier(d, supplier)
		return next, r, nil
	})
	return report
}

// DeleteSupplier removes a supplier. Its purchases and payments are kept.
func (s *Service) DeleteSupplier(id string) Report {
	report, _ := s.apply("DeleteSupplier", func(d models.AppData) (models.AppData, Report, error) {
		next, r := DeleteSupplier(d, id)
		return next, r, nil
	})
	return report
}

// UpdateCompanyInfo replaces the letterhead.
func (s *Service) UpdateCompanyInfo(info models.CompanyInfo) {
	_, _ = s.apply("UpdateCompanyInfo", func(d models.AppData) (models.AppData, Report, error) {
		return UpdateCompanyInfo(d, info), Report{}, nil
	})
}

// Product returns the live product with the given id.
func (s *Service) Product(id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.data.Products, id, productID, "Product")
}

// Client returns the live client with the given id.
func (s *Service) Client(id string) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.data.Clients, id, clientID, "Client")
}

// Supplier returns the live supplier with the given id.
func (s *Service) Supplier(id string) (models.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.data.Suppliers, id, supplierID, "Supplier")
}

// Invoice returns a copy of the invoice with the given id.
func (s *Service) Invoice(id string) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, err := find(s.data.Invoices, id, invoiceID, "Invoice")
	if err != nil {
		return inv, err
	}
	inv.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return inv, nil
}

// NextInvoiceNumber previews the number the next invoice would receive.
func (s *Service) NextInvoiceNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NextInvoiceNumber(s.data)
}

// ClientStatement builds a client's statement over period.
func (s *Service) ClientStatement(id string, period Period) (ClientStatement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildClientStatement(s.data, id, period)
}

// SupplierStatement builds a supplier's statement over period.
func (s *Service) SupplierStatement(id string, period Period) (SupplierStatement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildSupplierStatement(s.data, id, period)
}

// Reconcile lists parties whose running balance has drifted.
func (s *Service) Reconcile() []Discrepancy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Reconcile(s.data)
}

// Summary computes the dashboard figures.
func (s *Service) Summary(lowStock decimal.Decimal) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.data.Clone(), lowStock)
}

func find[T any](s []T, id string, key func(T) string, op string) (T, error) {
	i := indexOf(s, id, key)
	if i < 0 {
		var zero T
		return zero, NewLedgerError(op, id, ErrNotFound)
	}
	return s[i], nil
}
