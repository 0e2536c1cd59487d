package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/internal/sheets"
)

func (a *app) newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Publish the ledger to Google Sheets",
	}

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Rewrite the Clients, Invoices and Stock tabs of the spreadsheet",
		Long: `Rewrite the Clients, Invoices and Stock tabs of a Google Sheets
spreadsheet from the current ledger. Missing tabs are created.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Spreadsheet URL (or --sheet-url)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetURL, _ := cmd.Flags().GetString("sheet-url")
			if sheetURL == "" {
				sheetURL = a.cfg.GoogleSheetURL
			}
			if sheetURL == "" {
				return fmt.Errorf("GOOGLE_SHEET_URL environment variable or --sheet-url is required")
			}

			return a.view(cmd, func(svc *ledger.Service) (any, error) {
				service, err := sheets.NewSheetsService(cmd.Context(), sheetURL)
				if err != nil {
					return nil, fmt.Errorf("failed to create sheets service: %w", err)
				}
				return service.Sync(cmd.Context(), svc.Snapshot())
			})
		},
	}
	sync.Flags().String("sheet-url", "", "Spreadsheet URL (default: GOOGLE_SHEET_URL)")

	cmd.AddCommand(sync)
	return cmd
}
