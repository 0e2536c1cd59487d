package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agroledger/internal/ledger"
	"agroledger/internal/logger"
	"agroledger/internal/scan"
	"agroledger/pkg/models"
)

func (a *app) newPurchaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record goods bought from suppliers",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Receive supplier goods into stock on credit",
		Long: `Receive supplier goods. Every --item adds its quantity to stock and the
order total is added to what is owed to the supplier. The unit price
defaults to the product's catalogue price.`,
		Example: `  agroledger purchase add --supplier s1 --item 1:10:80 --item p2:40:2900`,
		Args:    cobra.NoArgs,
		RunE:    a.runPurchaseAdd,
	}
	add.Flags().String("supplier", "", "Supplier id")
	add.Flags().StringArray("item", nil, "Line as PRODUCT:QTY[:PRICE] (repeatable)")
	add.Flags().String("status", string(models.PurchaseReceived), "Order status: pending or received")
	addDateFlag(add)
	_ = add.MarkFlagRequired("supplier")
	_ = add.MarkFlagRequired("item")

	scanCmd := &cobra.Command{
		Use:   "scan <pdf-file>",
		Short: "Draft a purchase from a supplier's PDF invoice using Google Document AI",
		Long: `Send a supplier's PDF invoice to Google Document AI's invoice parser and
print a draft purchase: supplier name, date and one line per detected item,
each matched to the catalogue by reference code or product name.

With --commit and --supplier, a draft whose lines all matched a product is
recorded like "purchase add".

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  GOOGLE_CLOUD_LOCATION - Processing location (us, eu)
  DOCUMENT_AI_PROCESSOR_ID - Your Document AI invoice processor ID`,
		Example: `  # Review the draft
  agroledger purchase scan facture-onab.pdf

  # Record it against supplier s1
  agroledger purchase scan facture-onab.pdf --supplier s1 --commit`,
		Args: cobra.ExactArgs(1),
		RunE: a.runPurchaseScan,
	}
	scanCmd.Flags().String("supplier", "", "Supplier id to bind the draft to")
	scanCmd.Flags().Bool("commit", false, "Record the purchase when every line matched")
	scanCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")

	cmd.AddCommand(add, scanCmd)
	return cmd
}

func (a *app) runPurchaseAdd(cmd *cobra.Command, args []string) error {
	supplierID, _ := cmd.Flags().GetString("supplier")
	specs, _ := cmd.Flags().GetStringArray("item")
	status, _ := cmd.Flags().GetString("status")

	return a.mutate(cmd, func(svc *ledger.Service) (any, error) {
		supplier, err := svc.Supplier(supplierID)
		if err != nil {
			return nil, fmt.Errorf("unknown supplier: %w", err)
		}
		items, err := buildLines(svc, specs)
		if err != nil {
			return nil, err
		}

		po := models.NewPurchaseOrder(newID(), dateFlag(cmd), supplier, items, models.PurchaseStatus(status))
		if err := validate(po); err != nil {
			return nil, err
		}
		return withReport(po, svc.AddPurchase(po)), nil
	})
}

// ScanOutput is printed by "purchase scan".
type ScanOutput struct {
	Result    *scan.Result        `json:"result"`
	Unmatched []string            `json:"unmatched,omitempty"`
	Committed bool                `json:"committed"`
	Misses    []ledger.LookupMiss `json:"misses,omitempty"`
	Metadata  ScanMetadata        `json:"metadata"`
}

// ScanMetadata describes the processed file.
type ScanMetadata struct {
	FileName           string        `json:"file_name"`
	FileSize           int64         `json:"file_size_bytes"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

func (a *app) runPurchaseScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("purchase")

	supplierID, _ := cmd.Flags().GetString("supplier")
	commit, _ := cmd.Flags().GetBool("commit")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	pdfPath := args[0]

	if commit && supplierID == "" {
		return fmt.Errorf("--commit requires --supplier")
	}

	fileInfo, err := validatePDF(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	processor, err := a.newProcessor(ctx, scan.Config{
		ProjectID:   a.cfg.GoogleCloudProject,
		Location:    a.cfg.GoogleCloudLocation,
		ProcessorID: a.cfg.DocumentAIProcessorID,
		Timeout:     time.Duration(timeoutSecs) * time.Second,
	})
	if err != nil {
		return describeScanError(err, log)
	}
	if closer, ok := processor.(io.Closer); ok {
		defer closer.Close()
	}

	pdfFile, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer pdfFile.Close()

	log.Info().
		Str("file", pdfPath).
		Int64("size", fileInfo.Size()).
		Msg("Scanning supplier invoice with Document AI")

	started := time.Now()
	result, err := processor.ScanPurchase(ctx, pdfFile)
	if err != nil {
		return describeScanError(err, log)
	}

	out := ScanOutput{
		Result: result,
		Metadata: ScanMetadata{
			FileName:           fileInfo.Name(),
			FileSize:           fileInfo.Size(),
			ProcessedAt:        time.Now(),
			ProcessingDuration: time.Since(started),
		},
	}

	run := a.view
	if commit {
		run = a.mutate
	}
	return run(cmd, func(svc *ledger.Service) (any, error) {
		draft, unmatched := scan.MatchProducts(result.Draft, svc.Snapshot().Products)
		out.Unmatched = unmatched

		if supplierID != "" {
			supplier, err := svc.Supplier(supplierID)
			if err != nil {
				return nil, fmt.Errorf("unknown supplier: %w", err)
			}
			draft.SupplierID = supplier.ID
			draft.SupplierName = supplier.Name
		}
		draft.ID = newID()
		if draft.Date == "" {
			draft.Date = dateFlag(cmd)
		}
		out.Result.Draft = draft

		if !commit {
			return out, nil
		}
		if len(unmatched) > 0 {
			return nil, fmt.Errorf("cannot commit: %d line(s) match no product: %s",
				len(unmatched), strings.Join(unmatched, ", "))
		}
		if err := validate(draft); err != nil {
			return nil, err
		}
		out.Misses = svc.AddPurchase(draft).Misses
		out.Committed = true
		return out, nil
	})
}

func newDocumentAIProcessor(ctx context.Context, cfg scan.Config) (scan.Processor, error) {
	return scan.NewDocumentAIProcessor(ctx, cfg)
}

// validatePDF checks the file before it is uploaded.
func validatePDF(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}
	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}
	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}
	if fileInfo.Size() > scan.MaxDocumentSizeBytes {
		return nil, fmt.Errorf("PDF file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), scan.MaxDocumentSizeBytes)
	}

	return fileInfo, nil
}

// describeScanError turns scan failures into actionable messages.
func describeScanError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Supplier invoice scan failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("scan timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, scan.ErrContextCanceled), errors.Is(err, context.Canceled):
		return fmt.Errorf("scan was canceled")
	case errors.Is(err, scan.ErrMissingCredentials):
		return fmt.Errorf("missing Google Cloud credentials. Please set one of:\n"+
			"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n"+
			"  GOOGLE_CREDENTIALS='<json-credentials>'\n"+
			"Original error: %w", err)
	case errors.Is(err, scan.ErrInvalidConfiguration):
		return fmt.Errorf("invalid Document AI configuration. Please check your .env file:\n"+
			"  GOOGLE_CLOUD_PROJECT - your Google Cloud project ID\n"+
			"  GOOGLE_CLOUD_LOCATION - processing location (us, eu)\n"+
			"  DOCUMENT_AI_PROCESSOR_ID - your Document AI processor ID\n"+
			"Original error: %w", err)
	case errors.Is(err, scan.ErrInvalidCredentials):
		return fmt.Errorf("permission denied. Please ensure your service account has 'Document AI API User' role")
	case errors.Is(err, scan.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, scan.ErrDocumentTooLarge):
		return fmt.Errorf("PDF file is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, scan.ErrProcessorNotFound):
		return fmt.Errorf("Document AI processor not found. Please check DOCUMENT_AI_PROCESSOR_ID")
	case errors.Is(err, scan.ErrQuotaExceeded):
		return fmt.Errorf("Document AI API quota exceeded. Check your project quotas in Google Cloud Console")
	case errors.Is(err, scan.ErrNoLineItems):
		return fmt.Errorf("no purchase lines could be read from this document: %w", err)
	default:
		return fmt.Errorf("scan failed: %w", err)
	}
}
