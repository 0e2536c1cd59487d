package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/internal/logger"
	"agroledger/internal/storage"
)

func (a *app) newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the whole ledger as a JSON file",
	}

	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup file (default: agro_pro_backup_YYYY-MM-DD.json, \"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runBackupExport,
	}

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with a backup file (\"-\" for stdin)",
		Long: `Replace the whole ledger with the content of a backup file. Collections
missing from the file are filled with defaults. An empty or malformed file
is rejected and the current ledger is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runBackupImport,
	}

	cmd.AddCommand(export, imp)
	return cmd
}

func (a *app) runBackupExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("backup")

	path := storage.ExportFileName(time.Now())
	if len(args) == 1 {
		path = args[0]
	}

	repo, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(repo, log)
	data := repo.Load(cmd.Context())

	if path == "-" {
		return storage.Export(cmd.OutOrStdout(), data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if err := storage.Export(f, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	log.Info().Str("file", path).Int("invoices", len(data.Invoices)).Msg("Backup written")
	return writeJSON(cmd, map[string]string{"file": path})
}

func (a *app) runBackupImport(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer in.Close()

	data, err := storage.Import(in)
	if err != nil {
		return err
	}

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		svc.Replace(data)
		return map[string]int{
			"products":         len(data.Products),
			"clients":          len(data.Clients),
			"suppliers":        len(data.Suppliers),
			"invoices":         len(data.Invoices),
			"returns":          len(data.Returns),
			"purchases":        len(data.Purchases),
			"payments":         len(data.Payments),
			"supplierPayments": len(data.SupplierPayments),
		}, nil
	})
}
