// Package scan turns a supplier's PDF invoice into a draft purchase order
// using Google Cloud Document AI's invoice parser.
//
// The draft is never recorded on its own: callers match its lines to the
// product catalogue (MatchProducts), let the user review it, and commit it
// through the ledger like a hand-entered purchase.
//
// Credentials come from the environment:
//   - GOOGLE_CREDENTIALS: inline service account JSON, or
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file
//
// Document AI API limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Processing time: typically 5-15 seconds per document
package scan

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Processor extracts a purchase draft from a supplier invoice.
type Processor interface {
	ScanPurchase(ctx context.Context, pdf io.Reader) (*Result, error)
}

// Config holds the Document AI processor coordinates.
type Config struct {
	// ProjectID is the Google Cloud project where Document AI is enabled.
	ProjectID string

	// Location is the processor region ("us" or "eu").
	Location string

	// ProcessorID is the invoice parser processor id.
	ProcessorID string

	// ProcessorVersion pins a processor version. Empty uses the default.
	ProcessorVersion string

	// Timeout bounds a single processing call.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the us region and a 60 second timeout.
func DefaultConfig() Config {
	return Config{
		Location: "us",
		Timeout:  60 * time.Second,
	}
}

// Result is what a scan produced.
type Result struct {
	// Draft has one line per detected line item. SupplierID and line
	// ProductIDs are empty until matched.
	Draft models.PurchaseOrder `json:"draft"`

	// InvoiceNumber is the supplier's own document number.
	InvoiceNumber string `json:"invoiceNumber,omitempty"`

	// DocumentTotal is the total printed on the document. It may differ
	// from Draft.TotalAmount, which is recomputed from the lines.
	DocumentTotal decimal.Decimal `json:"documentTotal"`

	// Confidence maps Document AI entity types to scores in [0, 1].
	Confidence map[string]float32 `json:"confidence"`
}

// TotalMismatch reports whether the printed total disagrees with the sum of
// the lines.
func (r *Result) TotalMismatch() bool {
	return !r.DocumentTotal.IsZero() && !r.DocumentTotal.Equal(r.Draft.TotalAmount)
}
