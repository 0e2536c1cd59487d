package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/internal/logger"
	"agroledger/internal/storage"
	"agroledger/internal/validation"
)

// outcome is the JSON printed by mutating commands.
type outcome struct {
	Record any                 `json:"record,omitempty"`
	Misses []ledger.LookupMiss `json:"misses,omitempty"`
}

func withReport(record any, report ledger.Report) outcome {
	return outcome{Record: record, Misses: report.Misses}
}

// openStore opens the snapshot repository selected by --store or the
// configuration.
func (a *app) openStore(cmd *cobra.Command) (*storage.Repository, error) {
	storeURL, _ := cmd.Flags().GetString("store")
	if storeURL == "" {
		storeURL = a.cfg.StoreURL
	}
	return storage.Open(cmd.Context(), storeURL, a.cfg.DataDir)
}

// view loads the ledger and prints what fn returns.
func (a *app) view(cmd *cobra.Command, fn func(*ledger.Service) (any, error)) error {
	repo, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(repo, componentLog(cmd))

	result, err := fn(ledger.New(repo.Load(cmd.Context())))
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}

// mutate loads the ledger, applies fn, saves the new snapshot and prints
// what fn returns. Nothing is saved when fn fails.
func (a *app) mutate(cmd *cobra.Command, fn func(*ledger.Service) (any, error)) error {
	log := componentLog(cmd)

	repo, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(repo, log)

	svc := ledger.New(repo.Load(cmd.Context()))
	result, err := fn(svc)
	if err != nil {
		return err
	}

	if err := repo.Save(cmd.Context(), svc.Snapshot()); err != nil {
		log.Error().Err(err).Msg("Failed to save snapshot")
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	log.Info().Str("command", cmd.CommandPath()).Msg("Ledger updated")
	return writeJSON(cmd, result)
}

func closeStore(repo *storage.Repository, log zerolog.Logger) {
	if err := repo.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close snapshot store")
	}
}

func componentLog(cmd *cobra.Command) zerolog.Logger {
	name := cmd.Name()
	if cmd.HasParent() && cmd.Parent().HasParent() {
		name = cmd.Parent().Name()
	}
	return logger.WithComponent(name)
}

// writeJSON prints v as indented JSON to --output or the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	jsonData = append(jsonData, '\n')

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(jsonData)
		return err
	}

	if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log := componentLog(cmd)
	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(jsonData)).
		Msg("Output written to file")
	return nil
}

func validate(v any) error {
	return validation.Struct(v)
}

func newID() string {
	return uuid.NewString()
}

// dateFlag returns --date, defaulting to today.
func dateFlag(cmd *cobra.Command) string {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		return time.Now().Format(time.DateOnly)
	}
	return date
}

func addDateFlag(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "Document date YYYY-MM-DD (default: today)")
}

// decimalFlag parses a flag holding an amount or quantity. Unset flags
// yield zero.
func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: not a number", name, raw)
	}
	return d, nil
}

// lineSpec is one --item flag: product id, quantity and optional unit price.
type lineSpec struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// parseLineSpec reads "PRODUCT:QTY" or "PRODUCT:QTY:PRICE".
func parseLineSpec(spec string) (lineSpec, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return lineSpec{}, fmt.Errorf("invalid item %q: want PRODUCT:QTY[:PRICE]", spec)
	}

	qty, err := decimal.NewFromString(parts[1])
	if err != nil {
		return lineSpec{}, fmt.Errorf("invalid item %q: bad quantity: %w", spec, err)
	}
	line := lineSpec{ProductID: parts[0], Quantity: qty}

	if len(parts) == 3 {
		price, err := decimal.NewFromString(parts[2])
		if err != nil {
			return lineSpec{}, fmt.Errorf("invalid item %q: bad price: %w", spec, err)
		}
		line.UnitPrice = &price
	}
	return line, nil
}

// openInput opens a file argument, "-" meaning stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
