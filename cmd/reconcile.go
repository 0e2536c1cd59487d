package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/internal/logger"
)

// ReconcileOutput lists balance drifts found by "reconcile".
type ReconcileOutput struct {
	Discrepancies []ledger.Discrepancy `json:"discrepancies"`
	Fixed         bool                 `json:"fixed"`
}

func (a *app) newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare running balances with the balances rebuilt from documents",
		Long: `Client and supplier balances are maintained incrementally by each sale,
payment, return and purchase. This command rebuilds every balance from the
full document history and lists the accounts where the two disagree.

With --fix, each drifted balance is overwritten with the rebuilt figure.`,
		Example: `  # Report only
  agroledger reconcile

  # Reset drifted balances
  agroledger reconcile --fix`,
		Args: cobra.NoArgs,
		RunE: a.runReconcile,
	}
	cmd.Flags().Bool("fix", false, "Overwrite drifted balances with the rebuilt figures")
	return cmd
}

func (a *app) runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")
	fix, _ := cmd.Flags().GetBool("fix")

	if !fix {
		return a.view(cmd, func(svc *ledger.Service) (any, error) {
			found := svc.Reconcile()
			log.Info().Int("discrepancies", len(found)).Msg("Reconciliation completed")
			return ReconcileOutput{Discrepancies: nonNil(found)}, nil
		})
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		found := svc.Reconcile()
		for _, d := range found {
			switch d.Kind {
			case ledger.KindClient:
				c, err := svc.Client(d.ID)
				if err != nil {
					return nil, err
				}
				c.TotalDebt = d.Derived
				svc.UpdateClient(c)
			case ledger.KindSupplier:
				s, err := svc.Supplier(d.ID)
				if err != nil {
					return nil, err
				}
				s.TotalDebt = d.Derived
				svc.UpdateSupplier(s)
			}
			log.Warn().
				Str("kind", string(d.Kind)).
				Str("id", d.ID).
				Str("drift", d.Drift.String()).
				Msg("Balance reset to rebuilt figure")
		}
		return ReconcileOutput{Discrepancies: nonNil(found), Fixed: len(found) > 0}, nil
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
