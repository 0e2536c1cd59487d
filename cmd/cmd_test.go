package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroledger/internal/config"
	"agroledger/internal/ledger"
	"agroledger/internal/scan"
	"agroledger/pkg/models"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return &app{cfg: cfg, newProcessor: newDocumentAIProcessor}
}

func execute(a *app, args ...string) (string, error) {
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func run(t *testing.T, a *app, args ...string) string {
	t.Helper()
	out, err := execute(a, args...)
	require.NoError(t, err, "agroledger %v", args)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type recordOut[T any] struct {
	Record T                   `json:"record"`
	Misses []ledger.LookupMiss `json:"misses"`
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func TestSaleReturnPaymentFlow(t *testing.T) {
	a := testApp(t)

	run(t, a, "client", "add", "--id", "c1", "--name", "Ferme Ait Ali", "--address", "Amizour")

	inv := decode[recordOut[models.Invoice]](t, run(t, a,
		"invoice", "create", "--client", "c1", "--item", "1:3", "--paid", "10000", "--date", "2024-03-01"))
	assert.Equal(t, "FAC-000001", inv.Record.Number)
	assertDec(t, "25500", inv.Record.TotalAmount)
	assertDec(t, "15500", inv.Record.RemainingAmount)
	assert.Empty(t, inv.Misses)

	run(t, a, "return", "add", "--client", "c1", "--product", "1", "--quantity", "1", "--date", "2024-03-02")
	run(t, a, "payment", "add", "--client", "c1", "--amount", "2000", "--date", "2024-03-03")

	c := decode[models.Client](t, run(t, a, "client", "show", "c1"))
	assertDec(t, "5000", c.TotalDebt)

	p := listedProduct(t, a, "1")
	assertDec(t, "48", p.Stock)

	summary := decode[ledger.Summary](t, run(t, a, "dashboard"))
	assertDec(t, "25500", summary.TotalSales)
	assertDec(t, "5000", summary.TotalClientDebt)
	assert.Equal(t, 1, summary.InvoiceCount)
	assert.Equal(t, 1, summary.PendingDeliveries)

	next := decode[map[string]string](t, run(t, a, "invoice", "next-number"))
	assert.Equal(t, "FAC-000002", next["number"])
}

func listedProduct(t *testing.T, a *app, id string) models.Product {
	t.Helper()
	for _, p := range decode[[]models.Product](t, run(t, a, "product", "list")) {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("product %s not listed", id)
	return models.Product{}
}

func TestInvoiceCreateRejectsUnknownReferences(t *testing.T) {
	a := testApp(t)

	_, err := execute(a, "invoice", "create", "--client", "nobody", "--item", "1:1")
	assert.ErrorContains(t, err, "unknown client")

	_, err = execute(a, "invoice", "create", "--item", "ghost:1")
	assert.ErrorContains(t, err, "ghost")

	_, err = execute(a, "invoice", "create", "--item", "1")
	assert.ErrorContains(t, err, "PRODUCT:QTY")

	// Nothing was saved.
	summary := decode[ledger.Summary](t, run(t, a, "dashboard"))
	assert.Equal(t, 0, summary.InvoiceCount)
}

func TestPurchaseAndSupplierPayment(t *testing.T) {
	a := testApp(t)

	run(t, a, "supplier", "add", "--id", "s1", "--name", "ONAB Bejaia")
	run(t, a, "purchase", "add", "--supplier", "s1", "--item", "1:10:8000", "--date", "2024-03-01")
	run(t, a, "supplier", "pay", "s1", "--amount", "30000", "--date", "2024-03-05")

	s := decode[models.Supplier](t, run(t, a, "supplier", "show", "s1"))
	assertDec(t, "50000", s.TotalDebt)

	p := listedProduct(t, a, "1")
	assertDec(t, "60", p.Stock)
}

func TestReconcileFix(t *testing.T) {
	a := testApp(t)

	run(t, a, "client", "add", "--id", "c1", "--name", "Ferme Ait Ali")
	run(t, a, "invoice", "create", "--client", "c1", "--item", "1:1", "--date", "2024-03-01")

	clean := decode[ReconcileOutput](t, run(t, a, "reconcile"))
	assert.Empty(t, clean.Discrepancies)

	run(t, a, "client", "update", "c1", "--debt", "9000")

	drift := decode[ReconcileOutput](t, run(t, a, "reconcile"))
	require.Len(t, drift.Discrepancies, 1)
	assert.Equal(t, "c1", drift.Discrepancies[0].ID)
	assertDec(t, "500", drift.Discrepancies[0].Drift)
	assert.False(t, drift.Fixed)

	fixed := decode[ReconcileOutput](t, run(t, a, "reconcile", "--fix"))
	assert.True(t, fixed.Fixed)

	c := decode[models.Client](t, run(t, a, "client", "show", "c1"))
	assertDec(t, "8500", c.TotalDebt)
	assert.Empty(t, decode[ReconcileOutput](t, run(t, a, "reconcile")).Discrepancies)
}

func TestBackupExportImport(t *testing.T) {
	src := testApp(t)
	run(t, src, "client", "add", "--id", "c1", "--name", "Ferme Ait Ali")
	run(t, src, "invoice", "create", "--client", "c1", "--item", "1:2", "--date", "2024-03-01")

	file := filepath.Join(t.TempDir(), "backup.json")
	run(t, src, "backup", "export", file)

	dst := testApp(t)
	counts := decode[map[string]int](t, run(t, dst, "backup", "import", file))
	assert.Equal(t, 1, counts["invoices"])
	assert.Equal(t, 2, counts["clients"])

	c := decode[models.Client](t, run(t, dst, "client", "show", "c1"))
	assertDec(t, "17000", c.TotalDebt)

	var stdout bytes.Buffer
	root := dst.rootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"backup", "export", "-"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	exported, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, string(exported), stdout.String())
}

func TestBackupImportRejectsBadFile(t *testing.T) {
	a := testApp(t)
	run(t, a, "client", "add", "--id", "c1", "--name", "Ferme Ait Ali")

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	require.NoError(t, os.WriteFile(broken, []byte(`{"clients": [`), 0o644))

	for _, file := range []string{empty, broken} {
		_, err := execute(a, "backup", "import", file)
		assert.Error(t, err, file)
	}

	_, err := execute(a, "client", "show", "c1")
	assert.NoError(t, err, "ledger must survive a rejected import")
}

type fakeProcessor struct {
	result *scan.Result
	err    error
}

func (f fakeProcessor) ScanPurchase(ctx context.Context, r io.Reader) (*scan.Result, error) {
	return f.result, f.err
}

func scanApp(t *testing.T, p fakeProcessor) *app {
	a := testApp(t)
	a.newProcessor = func(ctx context.Context, cfg scan.Config) (scan.Processor, error) {
		return p, nil
	}
	return a
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facture.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func scannedDraft(descriptions ...string) *scan.Result {
	items := make([]models.InvoiceItem, len(descriptions))
	for i, d := range descriptions {
		items[i] = models.InvoiceItem{
			ProductName: d,
			Quantity:    decimal.NewFromInt(4),
			UnitPrice:   decimal.NewFromInt(7000),
			Total:       decimal.NewFromInt(28000),
		}
	}
	return &scan.Result{
		Draft: models.PurchaseOrder{
			Date:         "2024-02-10",
			SupplierName: "ONAB BEJAIA SPA",
			Items:        items,
			TotalAmount:  models.ItemsTotal(items),
			Status:       models.PurchaseReceived,
		},
		InvoiceNumber: "F-2024-118",
		DocumentTotal: models.ItemsTotal(items),
	}
}

func TestPurchaseScanCommit(t *testing.T) {
	a := scanApp(t, fakeProcessor{result: scannedDraft("AL-DEM sac 50kg")})
	run(t, a, "supplier", "add", "--id", "s1", "--name", "ONAB Bejaia")

	out := decode[ScanOutput](t, run(t, a, "purchase", "scan", writePDF(t), "--supplier", "s1", "--commit"))
	assert.True(t, out.Committed)
	assert.Empty(t, out.Unmatched)
	assert.Equal(t, "s1", out.Result.Draft.SupplierID)
	assert.Equal(t, "1", out.Result.Draft.Items[0].ProductID)

	s := decode[models.Supplier](t, run(t, a, "supplier", "show", "s1"))
	assertDec(t, "28000", s.TotalDebt)
	p := listedProduct(t, a, "1")
	assertDec(t, "54", p.Stock)
}

func TestPurchaseScanUnmatchedLinesBlockCommit(t *testing.T) {
	a := scanApp(t, fakeProcessor{result: scannedDraft("AL-DEM", "Engrais NPK 15-15-15")})
	run(t, a, "supplier", "add", "--id", "s1", "--name", "ONAB Bejaia")
	pdf := writePDF(t)

	out := decode[ScanOutput](t, run(t, a, "purchase", "scan", pdf))
	assert.False(t, out.Committed)
	assert.Equal(t, []string{"Engrais NPK 15-15-15"}, out.Unmatched)

	_, err := execute(a, "purchase", "scan", pdf, "--supplier", "s1", "--commit")
	assert.ErrorContains(t, err, "match no product")

	s := decode[models.Supplier](t, run(t, a, "supplier", "show", "s1"))
	assert.True(t, s.TotalDebt.IsZero())
}

func TestPurchaseScanErrors(t *testing.T) {
	_, err := execute(testApp(t), "purchase", "scan", writePDF(t), "--commit")
	assert.ErrorContains(t, err, "--commit requires --supplier")

	_, err = execute(testApp(t), "purchase", "scan", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "PDF file not found")

	a := scanApp(t, fakeProcessor{err: scan.WrapScanError("ScanPurchase", scan.ErrNoLineItems, "")})
	_, err = execute(a, "purchase", "scan", writePDF(t))
	assert.ErrorIs(t, err, scan.ErrNoLineItems)
}

func TestParseLineSpec(t *testing.T) {
	tests := []struct {
		spec      string
		wantID    string
		wantQty   string
		wantPrice string
		wantErr   bool
	}{
		{spec: "1:5", wantID: "1", wantQty: "5"},
		{spec: "p2:2.5:3100", wantID: "p2", wantQty: "2.5", wantPrice: "3100"},
		{spec: "p2", wantErr: true},
		{spec: ":3", wantErr: true},
		{spec: "p2:x", wantErr: true},
		{spec: "p2:1:y", wantErr: true},
		{spec: "p2:1:2:3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			line, err := parseLineSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, line.ProductID)
			assertDec(t, tt.wantQty, line.Quantity)
			if tt.wantPrice == "" {
				assert.Nil(t, line.UnitPrice)
			} else {
				require.NotNil(t, line.UnitPrice)
				assertDec(t, tt.wantPrice, *line.UnitPrice)
			}
		})
	}
}

func TestDecimalFlagAcceptsCommaDecimals(t *testing.T) {
	cmd := testApp(t).newPaymentCmd().Commands()[0]
	require.NoError(t, cmd.Flags().Set("amount", "1500,75"))

	amount, err := decimalFlag(cmd, "amount")
	require.NoError(t, err)
	assertDec(t, "1500.75", amount)

	require.NoError(t, cmd.Flags().Set("amount", "mille"))
	_, err = decimalFlag(cmd, "amount")
	assert.ErrorContains(t, err, "--amount")

	zero, err := decimalFlag(cmd, "note")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestOutputFlagWritesFile(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "clients.json")

	out := run(t, a, "client", "add", "--id", "c1", "--name", "Ferme Ait Ali", "--output", path)
	assert.Empty(t, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	added := decode[recordOut[models.Client]](t, string(raw))
	assert.Equal(t, "c1", added.Record.ID)
}

func TestInvoiceStatus(t *testing.T) {
	a := testApp(t)

	inv := decode[recordOut[models.Invoice]](t, run(t, a, "invoice", "create", "--item", "1:1", "--date", "2024-03-01"))
	updated := decode[recordOut[models.Invoice]](t, run(t, a, "invoice", "status", inv.Record.ID, "delivered"))
	assert.Equal(t, inv.Record.ID, updated.Record.ID)
	assert.Equal(t, models.DeliveryDelivered, updated.Record.DeliveryStatus)

	out, err := execute(a, "invoice", "status", "missing", "delivered")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Empty(t, out)

	_, err = execute(a, "invoice", "status", inv.Record.ID, "shipped")
	assert.ErrorIs(t, err, ledger.ErrInvalidStatus)
}
