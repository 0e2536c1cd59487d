package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agroledger/internal/config"
	"agroledger/internal/logger"
	"agroledger/internal/scan"
)

var version = "1.0.0"

// app carries what every command needs besides its own flags.
type app struct {
	cfg *config.Config

	// newProcessor opens the supplier invoice scanner.
	newProcessor func(ctx context.Context, cfg scan.Config) (scan.Processor, error)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	return (&app{cfg: cfg, newProcessor: newDocumentAIProcessor}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agroledger",
		Short: "Stock, sales and receivables ledger for an agricultural supply shop",
		Long: `agroledger keeps the product catalogue, clients, suppliers, invoices,
returns, purchases and payments of a small agricultural supply business.

Every sale, payment, return and purchase adjusts stock levels and the
running balances of clients and suppliers. The whole ledger is stored as
one JSON snapshot in a local directory or any gocloud.dev bucket.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("store", "", "Snapshot bucket URL, e.g. file:///var/lib/agro or mem:// (default: STORE_URL, then DATA_DIR)")
	root.PersistentFlags().StringP("output", "o", "", "Output file path (default: stdout)")

	root.AddCommand(
		a.newProductCmd(),
		a.newClientCmd(),
		a.newSupplierCmd(),
		a.newInvoiceCmd(),
		a.newPaymentCmd(),
		a.newReturnCmd(),
		a.newPurchaseCmd(),
		a.newCompanyCmd(),
		a.newDashboardCmd(),
		a.newReconcileCmd(),
		a.newBackupCmd(),
		a.newSheetsCmd(),
	)
	return root
}

// Execute runs the command line and exits with status 1 on failure.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	if cfg == nil {
		cfg = config.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
