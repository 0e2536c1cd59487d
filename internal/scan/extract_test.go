package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/type/date"
	"google.golang.org/genproto/googleapis/type/money"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agroledger/pkg/models"
)

func prop(kind, text string) *documentaipb.Document_Entity {
	return &documentaipb.Document_Entity{Type: kind, MentionText: text}
}

func lineItem(props ...*documentaipb.Document_Entity) *documentaipb.Document_Entity {
	return &documentaipb.Document_Entity{Type: "line_item", Properties: props}
}

func supplierInvoice() *documentaipb.Document {
	amount := prop("line_item/amount", "3.600,00")
	amount.NormalizedValue = &documentaipb.Document_Entity_NormalizedValue{
		StructuredValue: &documentaipb.Document_Entity_NormalizedValue_MoneyValue{
			MoneyValue: &money.Money{CurrencyCode: "DZD", Units: 3600},
		},
	}
	invoiceDate := prop("invoice_date", "15 mars 2024")
	invoiceDate.NormalizedValue = &documentaipb.Document_Entity_NormalizedValue{
		StructuredValue: &documentaipb.Document_Entity_NormalizedValue_DateValue{
			DateValue: &date.Date{Year: 2024, Month: 3, Day: 15},
		},
	}

	return &documentaipb.Document{
		Entities: []*documentaipb.Document_Entity{
			{Type: "supplier_name", MentionText: " ONAB Bejaia ", Confidence: 0.97},
			{Type: "invoice_id", MentionText: "F-2024-118", Confidence: 0.91},
			invoiceDate,
			{Type: "total_amount", MentionText: "58 000,00 DA", Confidence: 0.88},
			lineItem(
				prop("line_item/description", "AL-DEM Aliment démarrage"),
				prop("line_item/quantity", "20"),
				prop("line_item/unit_price", "2 900,00"),
			),
			lineItem(
				prop("line_item/description", "son de blé"),
				prop("line_item/quantity", "4"),
				amount,
			),
			lineItem(prop("line_item/quantity", "2")),
			lineItem(prop("line_item/description", "Transport")),
		},
	}
}

func TestExtract(t *testing.T) {
	result, err := Extract(supplierInvoice())
	require.NoError(t, err)

	draft := result.Draft
	assert.Equal(t, "ONAB Bejaia", draft.SupplierName)
	assert.Equal(t, "2024-03-15", draft.Date)
	assert.Equal(t, models.PurchaseReceived, draft.Status)
	assert.Equal(t, "F-2024-118", result.InvoiceNumber)
	assert.InDelta(t, 0.97, result.Confidence["supplier_name"], 0.001)

	require.Len(t, draft.Items, 2)
	assert.Equal(t, "AL-DEM Aliment démarrage", draft.Items[0].ProductName)
	assert.True(t, draft.Items[0].Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, draft.Items[0].UnitPrice.Equal(decimal.NewFromInt(2900)))
	assert.True(t, draft.Items[1].UnitPrice.Equal(decimal.NewFromInt(900)), "unit price derived from amount")
	assert.True(t, draft.Items[1].Total.Equal(decimal.NewFromInt(3600)))

	assert.True(t, draft.TotalAmount.Equal(decimal.NewFromInt(61600)))
	assert.True(t, result.DocumentTotal.Equal(decimal.NewFromInt(58000)))
	assert.True(t, result.TotalMismatch())
}

func TestExtractWithoutLines(t *testing.T) {
	doc := &documentaipb.Document{Entities: []*documentaipb.Document_Entity{
		{Type: "supplier_name", MentionText: "ONAB"},
	}}
	_, err := Extract(doc)
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8 500,00 DA", "8500"},
		{"8 500 DZD", "8500"},
		{"7.303,08", "7303.08"},
		{"1,234.50", "1234.5"},
		{"1234,5", "1234.5"},
		{"12,500", "12500"},
		{"1.234.567", "1234567"},
		{"€ 19.99", "19.99"},
		{"-250,00", "-250"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := parseAmount("gratuit")
	assert.Error(t, err)
}

func TestExtractDateFromText(t *testing.T) {
	for _, text := range []string{"2024-03-05", "05/03/2024", "05.03.2024", "5 March 2024"} {
		got, err := extractDate(prop("invoice_date", text))
		require.NoError(t, err, text)
		assert.Equal(t, "2024-03-05", got, text)
	}
	_, err := extractDate(prop("invoice_date", ""))
	assert.Error(t, err)
}

func TestMatchProducts(t *testing.T) {
	result, err := Extract(supplierInvoice())
	require.NoError(t, err)

	products := []models.Product{
		{ID: "1", Reference: "AL-DEM", Name: "Aliment Démarrage", Unit: "Qt"},
		{ID: "2", Name: "Son de blé", Unit: "Sac"},
	}
	matched, unmatched := MatchProducts(result.Draft, products)
	assert.Empty(t, unmatched)
	assert.Equal(t, "1", matched.Items[0].ProductID)
	assert.Equal(t, "Aliment Démarrage", matched.Items[0].ProductName)
	assert.Equal(t, "Qt", matched.Items[0].Unit)
	assert.Equal(t, "2", matched.Items[1].ProductID)
	assert.Equal(t, "Sac", matched.Items[1].Unit)

	assert.Empty(t, result.Draft.Items[0].ProductID, "input draft is not modified")

	matched, unmatched = MatchProducts(result.Draft, products[:1])
	assert.Equal(t, []string{"son de blé"}, unmatched)
	assert.Empty(t, matched.Items[1].ProductID)
}

func TestScanPurchaseRejectsBadInput(t *testing.T) {
	p := NewDocumentAIProcessorWithClient(Config{ProjectID: "p", Location: "us", ProcessorID: "x"}, nil)

	_, err := p.ScanPurchase(context.Background(), strings.NewReader("not a pdf"))
	assert.ErrorIs(t, err, ErrInvalidPDF)

	big := strings.NewReader("%PDF" + strings.Repeat("x", MaxDocumentSizeBytes))
	_, err = p.ScanPurchase(context.Background(), big)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	_, err = p.ScanPurchase(context.Background(), strings.NewReader("%PDF-1.7"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestClassify(t *testing.T) {
	p := NewDocumentAIProcessorWithClient(Config{ProcessorID: "proc-1"}, nil)

	tests := []struct {
		err  error
		want error
	}{
		{status.Error(codes.PermissionDenied, "denied"), ErrInvalidCredentials},
		{status.Error(codes.ResourceExhausted, "quota"), ErrQuotaExceeded},
		{status.Error(codes.NotFound, "missing"), ErrProcessorNotFound},
		{status.Error(codes.InvalidArgument, "bad"), ErrInvalidPDF},
		{status.Error(codes.DeadlineExceeded, "slow"), context.DeadlineExceeded},
		{context.Canceled, ErrContextCanceled},
		{errors.New("boom"), ErrProcessingFailed},
	}
	for _, tt := range tests {
		err := p.classify("ScanPurchase", tt.err)
		assert.ErrorIs(t, err, tt.want, tt.err.Error())
	}

	var se *ScanError
	require.ErrorAs(t, p.classify("ScanPurchase", status.Error(codes.NotFound, "")), &se)
	assert.Equal(t, "proc-1", se.ProcessorID)
}

func TestNewDocumentAIProcessorRequiresConfig(t *testing.T) {
	_, err := NewDocumentAIProcessor(context.Background(), Config{ProcessorID: "x"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewDocumentAIProcessor(context.Background(), Config{ProjectID: "p"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
