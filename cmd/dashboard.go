package cmd

import (
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
)

func (a *app) newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Sales, balances, pending deliveries and low stock at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold := a.cfg.LowStockThreshold
			if cmd.Flags().Changed("low-stock") {
				t, err := decimalFlag(cmd, "low-stock")
				if err != nil {
					return err
				}
				threshold = t
			}
			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				return svc.Summary(threshold), nil
			})
		},
	}
	cmd.Flags().String("low-stock", "", "Flag products with less stock than this (default: LOW_STOCK_THRESHOLD)")
	return cmd
}
