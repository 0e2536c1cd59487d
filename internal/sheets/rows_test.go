package sheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroledger/pkg/models"
)

func TestTabs(t *testing.T) {
	client := models.Client{ID: "c1", Name: "Ferme Ait Ali", Phone: "0550", Address: "Amizour", TotalDebt: decimal.RequireFromString("1250.75")}
	feed := models.Product{ID: "1", Reference: "AL-DEM", Name: "Aliment Démarrage", Unit: "Qt", Price: decimal.NewFromInt(8500), Stock: decimal.RequireFromString("-2.5")}
	inv := models.NewInvoice("i1", "FAC-000004", "2024-06-01", client,
		[]models.InvoiceItem{models.NewInvoiceItem(feed, decimal.NewFromInt(2), feed.Price)},
		decimal.NewFromInt(15000), models.DeliveryDelivered)

	tabs := Tabs(models.AppData{
		Clients:  []models.Client{client},
		Products: []models.Product{feed},
		Invoices: []models.Invoice{inv},
	})
	require.Len(t, tabs, 3)

	assert.Equal(t, "Clients", tabs[0].Title)
	assert.Equal(t, [][]any{{"c1", "Ferme Ait Ali", "0550", "Amizour", 1250.75}}, tabs[0].Rows)

	assert.Equal(t, "Invoices", tabs[1].Title)
	assert.Equal(t, [][]any{{"FAC-000004", "2024-06-01", "Ferme Ait Ali", 17000.0, 15000.0, 2000.0, "Livrée"}}, tabs[1].Rows)

	assert.Equal(t, "Stock", tabs[2].Title)
	assert.Equal(t, [][]any{{"AL-DEM", "Aliment Démarrage", "Qt", 8500.0, -2.5}}, tabs[2].Rows)

	for _, tab := range tabs {
		for _, row := range tab.Rows {
			assert.Len(t, row, len(tab.Header), tab.Title)
		}
	}
}

func TestEmptyTabsHaveNoRows(t *testing.T) {
	for _, tab := range Tabs(models.AppData{}) {
		assert.NotNil(t, tab.Rows)
		assert.Empty(t, tab.Rows)
	}
}

func TestColumnName(t *testing.T) {
	for n, want := range map[int]string{1: "A", 5: "E", 7: "G", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"} {
		assert.Equal(t, want, columnName(n), n)
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9xYz/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9xYz", id)

	_, err = extractSpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}

func TestHeaderFormat(t *testing.T) {
	reqs := headerFormat(42, 7)
	require.Len(t, reqs, 2)
	assert.Equal(t, int64(42), reqs[0].RepeatCell.Range.SheetId)
	assert.Equal(t, int64(7), reqs[0].RepeatCell.Range.EndColumnIndex)
	assert.True(t, reqs[0].RepeatCell.Cell.UserEnteredFormat.TextFormat.Bold)
	assert.Equal(t, int64(7), reqs[1].AutoResizeDimensions.Dimensions.EndIndex)
}
