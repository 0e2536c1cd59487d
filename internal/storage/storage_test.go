package storage_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"agroledger/internal/storage"
	"agroledger/pkg/models"
)

func newRepo(t *testing.T) (*storage.Repository, func(string)) {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	repo := storage.NewRepository(bucket)
	t.Cleanup(func() { _ = repo.Close() })

	put := func(raw string) {
		require.NoError(t, bucket.WriteAll(context.Background(), storage.Key, []byte(raw), nil))
	}
	return repo, put
}

func export(t *testing.T, data models.AppData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, storage.Export(&buf, data))
	return buf.String()
}

func sampleData() models.AppData {
	d := storage.DefaultData()
	d.Clients = append(d.Clients, models.Client{
		ID: "c1", Name: "Ferme Ait Ali", Phone: "0550 00 00 00", Address: "Amizour",
		TotalDebt: decimal.RequireFromString("12500.50"), CarteFellah: "CF-0042",
	})
	d.Suppliers = []models.Supplier{{ID: "s1", Name: "ONAB", TotalDebt: decimal.NewFromInt(80000)}}
	item := models.NewInvoiceItem(d.Products[0], decimal.RequireFromString("2.5"), decimal.NewFromInt(8500))
	d.Invoices = []models.Invoice{models.NewInvoice("i1", "FAC-000001", "2024-05-02", d.Clients[1],
		[]models.InvoiceItem{item}, decimal.NewFromInt(8750), models.DeliveryDelivered)}
	d.Purchases = []models.PurchaseOrder{models.NewPurchaseOrder("po1", "2024-05-01", d.Suppliers[0],
		[]models.InvoiceItem{item}, models.PurchaseReceived)}
	d.Payments = []models.Payment{{ID: "pay1", Date: "2024-05-03", ClientID: "c1", ClientName: "Ferme Ait Ali", Amount: decimal.NewFromInt(1000), Note: "versement"}}
	d.CompanyInfo.NIF = "000123456789"
	return d
}

func TestLoadWithoutSnapshotReturnsDefaults(t *testing.T) {
	repo, _ := newRepo(t)

	got := repo.Load(context.Background())
	assert.Equal(t, storage.DefaultData(), got)

	require.Len(t, got.Products, 1)
	assert.Equal(t, "AL-DEM", got.Products[0].Reference)
	assert.True(t, got.Products[0].Price.Equal(decimal.NewFromInt(8500)))
	require.Len(t, got.Clients, 1)
	assert.True(t, got.Clients[0].IsWalkIn())
	assert.Equal(t, "ETS MERABET & FILS", got.CompanyInfo.Name)
	assert.NotNil(t, got.SupplierPayments)
}

func TestSaveThenLoad(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	data := sampleData()

	require.NoError(t, repo.Save(ctx, data))
	got := repo.Load(ctx)

	assert.Equal(t, export(t, data), export(t, got))
	assert.True(t, got.Clients[1].TotalDebt.Equal(decimal.RequireFromString("12500.50")))
	assert.Equal(t, "CF-0042", got.Clients[1].CarteFellah)
}

func TestLoadIsIdempotentOnCompleteSnapshot(t *testing.T) {
	repo, put := newRepo(t)
	ctx := context.Background()

	full := export(t, sampleData())
	put(full)

	first := repo.Load(ctx)
	assert.Equal(t, full, export(t, first))

	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, full, export(t, repo.Load(ctx)))
}

func TestLoadMergesMissingCollections(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		products int
		clients  int
		company  string
	}{
		{
			name:     "older version without suppliers",
			payload:  `{"products":[{"id":"9","name":"Son","unit":"Sac","price":900,"stock":3}],"clients":[{"id":"1","name":"Client Passager","phone":"","address":"","totalDebt":0}]}`,
			products: 1, clients: 1, company: "ETS MERABET & FILS",
		},
		{
			name:     "null products fall back to the seed",
			payload:  `{"products":null,"companyInfo":{"name":"Autre","address":"","phone":"","nif":"","nis":"","logo":""}}`,
			products: 1, clients: 1, company: "Autre",
		},
		{
			name:     "empty products stay empty",
			payload:  `{"products":[],"clients":[]}`,
			products: 0, clients: 0, company: "ETS MERABET & FILS",
		},
		{
			name:     "empty object",
			payload:  `{}`,
			products: 1, clients: 1, company: "ETS MERABET & FILS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, put := newRepo(t)
			put(tt.payload)

			got := repo.Load(context.Background())
			assert.Len(t, got.Products, tt.products)
			assert.Len(t, got.Clients, tt.clients)
			assert.Equal(t, tt.company, got.CompanyInfo.Name)
			assert.NotNil(t, got.Suppliers)
			assert.NotNil(t, got.Invoices)
			assert.NotNil(t, got.Returns)
			assert.NotNil(t, got.Purchases)
			assert.NotNil(t, got.Payments)
			assert.NotNil(t, got.SupplierPayments)
		})
	}
}

func TestLoadFallsBackOnCorruptSnapshot(t *testing.T) {
	repo, put := newRepo(t)
	put(`{"products": [`)

	assert.Equal(t, storage.DefaultData(), repo.Load(context.Background()))
}

func TestExportImportRoundTrip(t *testing.T) {
	data := sampleData()
	raw := export(t, data)

	assert.True(t, strings.HasPrefix(raw, "{\n  \"products\": [\n    {\n"), "two-space indentation")
	assert.Contains(t, raw, `"totalDebt": 12500.5`)

	got, err := storage.Import(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, export(t, got))
	assertSameValues(t, data, got)
}

// assertSameValues compares two snapshots field by field. Decimals are
// compared by value because a JSON round trip may change their exponent
// (12500.50 comes back as 12500.5).
func assertSameValues(t *testing.T, want, got models.AppData) {
	t.Helper()
	eq := func(name string, a, b decimal.Decimal) {
		t.Helper()
		assert.True(t, a.Equal(b), "%s: want %s, got %s", name, a, b)
	}
	items := func(name string, a, b []models.InvoiceItem) {
		t.Helper()
		require.Len(t, b, len(a), name)
		for i := range a {
			eq(name+".quantity", a[i].Quantity, b[i].Quantity)
			eq(name+".unitPrice", a[i].UnitPrice, b[i].UnitPrice)
			eq(name+".total", a[i].Total, b[i].Total)
			a[i].Quantity, a[i].UnitPrice, a[i].Total = b[i].Quantity, b[i].UnitPrice, b[i].Total
			assert.Equal(t, a[i], b[i], name)
		}
	}
	want = want.Clone()

	require.Len(t, got.Products, len(want.Products))
	for i, p := range want.Products {
		eq("product.price", p.Price, got.Products[i].Price)
		eq("product.stock", p.Stock, got.Products[i].Stock)
		p.Price, p.Stock = got.Products[i].Price, got.Products[i].Stock
		assert.Equal(t, p, got.Products[i])
	}
	require.Len(t, got.Clients, len(want.Clients))
	for i, c := range want.Clients {
		eq("client.totalDebt", c.TotalDebt, got.Clients[i].TotalDebt)
		c.TotalDebt = got.Clients[i].TotalDebt
		assert.Equal(t, c, got.Clients[i])
	}
	require.Len(t, got.Suppliers, len(want.Suppliers))
	for i, sup := range want.Suppliers {
		eq("supplier.totalDebt", sup.TotalDebt, got.Suppliers[i].TotalDebt)
		sup.TotalDebt = got.Suppliers[i].TotalDebt
		assert.Equal(t, sup, got.Suppliers[i])
	}
	require.Len(t, got.Invoices, len(want.Invoices))
	for i, inv := range want.Invoices {
		g := got.Invoices[i]
		items("invoice.items", inv.Items, g.Items)
		eq("invoice.totalAmount", inv.TotalAmount, g.TotalAmount)
		eq("invoice.paidAmount", inv.PaidAmount, g.PaidAmount)
		eq("invoice.remainingAmount", inv.RemainingAmount, g.RemainingAmount)
		inv.Items, inv.TotalAmount, inv.PaidAmount, inv.RemainingAmount = g.Items, g.TotalAmount, g.PaidAmount, g.RemainingAmount
		assert.Equal(t, inv, g)
	}
	require.Len(t, got.Purchases, len(want.Purchases))
	for i, po := range want.Purchases {
		g := got.Purchases[i]
		items("purchase.items", po.Items, g.Items)
		eq("purchase.totalAmount", po.TotalAmount, g.TotalAmount)
		po.Items, po.TotalAmount = g.Items, g.TotalAmount
		assert.Equal(t, po, g)
	}
	require.Len(t, got.Payments, len(want.Payments))
	for i, pay := range want.Payments {
		eq("payment.amount", pay.Amount, got.Payments[i].Amount)
		pay.Amount = got.Payments[i].Amount
		assert.Equal(t, pay, got.Payments[i])
	}
	assert.Len(t, got.Returns, len(want.Returns))
	assert.Len(t, got.SupplierPayments, len(want.SupplierPayments))
	assert.Equal(t, want.CompanyInfo, got.CompanyInfo)
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", storage.ErrEmptySnapshot},
		{"whitespace only", "  \n", storage.ErrEmptySnapshot},
		{"truncated json", `{"clients": [`, storage.ErrMalformedSnapshot},
		{"not an object", `[1, 2, 3]`, storage.ErrMalformedSnapshot},
		{"wrong field type", `{"products": "none"}`, storage.ErrMalformedSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.Import(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var se *storage.StorageError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestImportMergesDefaults(t *testing.T) {
	got, err := storage.Import(strings.NewReader(`{"suppliers":[{"id":"s1","name":"ONAB","phone":"","address":"","totalDebt":0}]}`))
	require.NoError(t, err)

	assert.Len(t, got.Suppliers, 1)
	assert.Equal(t, storage.DefaultData().Products, got.Products)
	assert.Equal(t, "ETS MERABET & FILS", got.CompanyInfo.Name)
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "agro_pro_backup_2024-03-07.json", storage.ExportFileName(at))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("directory bucket", func(t *testing.T) {
		dir := t.TempDir() + "/data"
		repo, err := storage.Open(ctx, "", dir)
		require.NoError(t, err)
		defer repo.Close()

		require.NoError(t, repo.Save(ctx, sampleData()))
		assert.Len(t, repo.Load(ctx).Invoices, 1)
	})

	t.Run("url", func(t *testing.T) {
		repo, err := storage.Open(ctx, "mem://", "")
		require.NoError(t, err)
		defer repo.Close()
		assert.Len(t, repo.Load(ctx).Products, 1)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := storage.Open(ctx, "nope://bucket", "")
		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}
