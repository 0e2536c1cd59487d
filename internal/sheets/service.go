// Package sheets publishes read-only views of the ledger (clients, invoices
// and stock) to a Google Sheets spreadsheet for the accountant.
package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"agroledger/internal/logger"
	"agroledger/pkg/models"
)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService creates a new Google Sheets service
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// SyncResult counts the rows written per tab.
type SyncResult struct {
	SpreadsheetID string         `json:"spreadsheetId"`
	Rows          map[string]int `json:"rows"`
}

// Sync rewrites every exported tab from data. Missing tabs are created
// first; the tabs are then cleared and written concurrently.
func (s *Service) Sync(ctx context.Context, data models.AppData) (*SyncResult, error) {
	const op = "Sync"

	tabs := Tabs(data)
	if err := s.ensureTabs(ctx, tabs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tab := range tabs {
		g.Go(func() error {
			return s.writeTab(gctx, tab)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &SyncResult{SpreadsheetID: s.spreadsheetID, Rows: make(map[string]int, len(tabs))}
	for _, tab := range tabs {
		result.Rows[tab.Title] = len(tab.Rows)
	}

	s.log.Info().
		Int("clients", result.Rows["Clients"]).
		Int("invoices", result.Rows["Invoices"]).
		Int("products", result.Rows["Stock"]).
		Msg("Ledger exported to Google Sheet")
	return result, nil
}

// writeTab clears a tab and writes its header and rows.
func (s *Service) writeTab(ctx context.Context, tab Tab) error {
	const op = "writeTab"

	lastColumn := columnName(len(tab.Header))
	if _, err := s.sheetsService.Spreadsheets.Values.Clear(
		s.spreadsheetID,
		fmt.Sprintf("%s!A:%s", tab.Title, lastColumn),
		&sheets.ClearValuesRequest{},
	).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to clear %s: %w", op, tab.Title, err)
	}

	values := make([][]any, 0, len(tab.Rows)+1)
	values = append(values, tab.Header)
	values = append(values, tab.Rows...)

	if _, err := s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		fmt.Sprintf("%s!A1:%s%d", tab.Title, lastColumn, len(values)),
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to write %s: %w", op, tab.Title, err)
	}

	s.log.Debug().Str("sheet", tab.Title).Int("rows", len(tab.Rows)).Msg("Tab written")
	return nil
}

// ensureTabs creates the missing tabs in one batch and formats their header rows.
func (s *Service) ensureTabs(ctx context.Context, tabs []Tab) error {
	const op = "ensureTabs"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		existing[sheet.Properties.Title] = true
	}

	var (
		requests []*sheets.Request
		created  []Tab
	)
	for _, tab := range tabs {
		if existing[tab.Title] {
			continue
		}
		s.log.Info().Str("sheet", tab.Title).Msg("Creating new sheet")
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab.Title}},
		})
		created = append(created, tab)
	}
	if len(requests) == 0 {
		return nil
	}

	resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to create sheets: %w", op, err)
	}

	var format []*sheets.Request
	for i, reply := range resp.Replies {
		if reply.AddSheet == nil || i >= len(created) {
			continue
		}
		format = append(format, headerFormat(reply.AddSheet.Properties.SheetId, len(created[i].Header))...)
	}
	if len(format) > 0 {
		if _, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID,
			&sheets.BatchUpdateSpreadsheetRequest{Requests: format}).Context(ctx).Do(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
		}
	}

	return nil
}

// headerFormat makes the first row bold and grey and sizes the columns.
func headerFormat(sheetID int64, columns int) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
	}
}
