package ledger

import (
	"github.com/shopspring/decimal"

	"agroledger/pkg/models"
)

// Discrepancy is a party whose running balance no longer matches the
// balance recomputed from its documents.
type Discrepancy struct {
	Kind    EntityKind      `json:"kind"`
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Running decimal.Decimal `json:"running"`
	Derived decimal.Decimal `json:"derived"`
	Drift   decimal.Decimal `json:"drift"` // Running − Derived
}

// Reconcile recomputes every client and supplier balance from the full
// history and returns the parties whose TotalDebt has drifted. Debts are
// maintained incrementally, so a skipped or replayed operation shows up
// here and nowhere else.
func Reconcile(data models.AppData) []Discrepancy {
	var out []Discrepancy

	for _, c := range data.Clients {
		st, err := BuildClientStatement(data, c.ID, Period{})
		if err != nil {
			continue
		}
		if !st.Balance.Equal(c.TotalDebt) {
			out = append(out, Discrepancy{
				Kind:    KindClient,
				ID:      c.ID,
				Name:    c.Name,
				Running: c.TotalDebt,
				Derived: st.Balance,
				Drift:   c.TotalDebt.Sub(st.Balance),
			})
		}
	}

	for _, s := range data.Suppliers {
		st, err := BuildSupplierStatement(data, s.ID, Period{})
		if err != nil {
			continue
		}
		if !st.Balance.Equal(s.TotalDebt) {
			out = append(out, Discrepancy{
				Kind:    KindSupplier,
				ID:      s.ID,
				Name:    s.Name,
				Running: s.TotalDebt,
				Derived: st.Balance,
				Drift:   s.TotalDebt.Sub(st.Balance),
			})
		}
	}

	return out
}
