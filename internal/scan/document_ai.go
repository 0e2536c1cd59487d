package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agroledger/internal/logger"
)

// MaxDocumentSizeBytes is the synchronous processing limit (20MB).
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// DocumentAIProcessor implements Processor with a Document AI invoice parser.
type DocumentAIProcessor struct {
	client *documentai.DocumentProcessorClient
	config Config
	log    zerolog.Logger
}

// NewDocumentAIProcessor connects to the regional Document AI endpoint with
// credentials from the environment.
func NewDocumentAIProcessor(ctx context.Context, config Config) (*DocumentAIProcessor, error) {
	const op = "NewDocumentAIProcessor"

	if config.ProjectID == "" {
		return nil, WrapScanError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapScanError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = DefaultConfig().Location
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	var opts []option.ClientOption
	if config.Location != "us" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)))
	}

	var hasCredentials bool
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		hasCredentials = true
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
		hasCredentials = true
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapScanError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapScanError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIProcessorWithClient(config, client), nil
}

// NewDocumentAIProcessorWithClient builds a processor around an existing client.
func NewDocumentAIProcessorWithClient(config Config, client *documentai.DocumentProcessorClient) *DocumentAIProcessor {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &DocumentAIProcessor{
		client: client,
		config: config,
		log:    logger.WithComponent("scan"),
	}
}

// ScanPurchase sends the PDF to Document AI and extracts a purchase draft.
func (p *DocumentAIProcessor) ScanPurchase(ctx context.Context, pdf io.Reader) (*Result, error) {
	const op = "ScanPurchase"

	content, err := io.ReadAll(io.LimitReader(pdf, MaxDocumentSizeBytes+1))
	if err != nil {
		return nil, WrapScanError(op, err, "failed to read PDF data")
	}
	if len(content) > MaxDocumentSizeBytes {
		return nil, WrapScanError(op, ErrDocumentTooLarge, fmt.Sprintf("limit: %d bytes", MaxDocumentSizeBytes))
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		return nil, WrapScanError(op, ErrInvalidPDF, "missing PDF header")
	}
	if p.client == nil {
		return nil, WrapScanError(op, ErrInvalidConfiguration, "no Document AI client")
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: p.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "application/pdf",
			},
		},
	}

	p.log.Debug().Int("bytes", len(content)).Str("processor", req.Name).Msg("Sending document to Document AI")

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, p.classify(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, WrapScanError(op, ErrProcessingFailed, "no document in response")
	}

	result, err := Extract(resp.GetDocument())
	if err != nil {
		return nil, WrapScanError(op, err, "failed to extract purchase lines")
	}

	p.log.Info().
		Str("supplier", result.Draft.SupplierName).
		Str("invoice_number", result.InvoiceNumber).
		Int("lines", len(result.Draft.Items)).
		Str("total", result.Draft.TotalAmount.String()).
		Msg("Supplier invoice scanned")
	if result.TotalMismatch() {
		p.log.Warn().
			Str("document_total", result.DocumentTotal.String()).
			Str("lines_total", result.Draft.TotalAmount.String()).
			Msg("Printed total differs from the sum of the lines")
	}

	return result, nil
}

// Close closes the underlying Document AI client.
func (p *DocumentAIProcessor) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *DocumentAIProcessor) processorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
	if p.config.ProcessorVersion != "" {
		name += "/processorVersions/" + p.config.ProcessorVersion
	}
	return name
}

// classify maps Document AI failures to the package's sentinel errors.
func (p *DocumentAIProcessor) classify(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return WrapScanError(op, context.DeadlineExceeded, "processing timeout")
	case errors.Is(err, context.Canceled):
		return WrapScanError(op, ErrContextCanceled, "processing was canceled")
	}

	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return WrapScanError(op, ErrInvalidCredentials, "insufficient permissions for Document AI")
	case codes.ResourceExhausted:
		return WrapScanError(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case codes.NotFound:
		return &ScanError{Op: op, Err: ErrProcessorNotFound, ProcessorID: p.config.ProcessorID}
	case codes.InvalidArgument:
		return WrapScanError(op, ErrInvalidPDF, "document format not supported or corrupted")
	case codes.DeadlineExceeded:
		return WrapScanError(op, context.DeadlineExceeded, "processing timeout")
	case codes.Canceled:
		return WrapScanError(op, ErrContextCanceled, "processing was canceled")
	default:
		return WrapScanError(op, ErrProcessingFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}
