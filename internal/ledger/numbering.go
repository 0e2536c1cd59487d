package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"agroledger/pkg/models"
)

// InvoiceNumberPrefix starts every generated invoice number.
const InvoiceNumberPrefix = "FAC-"

// NextInvoiceNumber returns FAC-NNNNNN one above the largest numeric suffix
// among existing invoice numbers. Suffixes that are not plain digits, or
// that leave no room for a successor, are ignored.
func NextInvoiceNumber(data models.AppData) string {
	var highest int64
	for _, inv := range data.Invoices {
		suffix, ok := strings.CutPrefix(inv.Number, InvoiceNumberPrefix)
		if !ok {
			continue
		}
		if suffix == "" || strings.ContainsFunc(suffix, func(r rune) bool { return r < '0' || r > '9' }) {
			continue
		}
		n, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil || n == math.MaxInt64 {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s%06d", InvoiceNumberPrefix, highest+1)
}
