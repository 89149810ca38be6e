package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
)

func newTestRepo(t *testing.T) InvoiceRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func testInvoice(filename string, paymentType *string, amount string) *entity.Invoice {
	d := extract.Details{Currency: string(constants.CurrencyUSD)}
	if amount != "" {
		d.Amount = strPtr(amount)
	}
	return entity.NewInvoice(filename, "/tmp/"+filename, "extracted text", paymentType, d, 1)
}

func TestInsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv := entity.NewInvoice("alpha.pdf", "/tmp/alpha.pdf", "some text", strPtr("VB"), extract.Details{
		Amount:        strPtr("1,234.56"),
		Currency:      "USD",
		InvoiceNumber: strPtr("INV-1"),
		Date:          strPtr("01/15/2024"),
		Vendor:        strPtr("Acme Corp"),
		BillTo:        strPtr("John Smith"),
	}, 2)

	saved, err := repo.Insert(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, saved.ID)

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha.pdf", got.Filename)
	assert.Equal(t, "/tmp/alpha.pdf", got.FilePath)
	assert.Equal(t, "some text", got.Text)
	require.NotNil(t, got.PaymentType)
	assert.Equal(t, "VB", *got.PaymentType)
	assert.Equal(t, constants.StatusOpen, got.Status)
	assert.Nil(t, got.PaidAt)
	assert.Equal(t, 2, got.Pages)
	require.NotNil(t, got.Details.Amount)
	assert.Equal(t, "1,234.56", *got.Details.Amount)
	assert.Equal(t, "USD", got.Details.Currency)
	require.NotNil(t, got.Details.Vendor)
	assert.Equal(t, "Acme Corp", *got.Details.Vendor)
	assert.WithinDuration(t, inv.CreatedAt, got.CreatedAt, 2*time.Second)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.Insert(ctx, testInvoice("alpha.pdf", strPtr("VB"), "100.00"))
	require.NoError(t, err)
	b, err := repo.Insert(ctx, testInvoice("beta.pdf", strPtr("IL"), "50.00"))
	require.NoError(t, err)
	c, err := repo.Insert(ctx, testInvoice("gamma.pdf", nil, "25.50"))
	require.NoError(t, err)
	_, err = repo.MarkPaid(ctx, b.ID, time.Now().UTC())
	require.NoError(t, err)

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	vb, err := repo.List(ctx, ListFilter{PaymentType: "VB"})
	require.NoError(t, err)
	require.Len(t, vb, 1)
	assert.Equal(t, a.ID, vb[0].ID)

	unmarked, err := repo.List(ctx, ListFilter{PaymentType: "unmarked"})
	require.NoError(t, err)
	require.Len(t, unmarked, 1)
	assert.Equal(t, c.ID, unmarked[0].ID)

	open, err := repo.List(ctx, ListFilter{Status: "open"})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	paid, err := repo.List(ctx, ListFilter{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, b.ID, paid[0].ID)

	search, err := repo.List(ctx, ListFilter{Search: "alpha"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, a.ID, search[0].ID)

	today := time.Now().UTC().Format("2006-01-02")
	from, err := repo.List(ctx, ListFilter{FromDate: today})
	require.NoError(t, err)
	assert.Len(t, from, 3)

	none, err := repo.List(ctx, ListFilter{ToDate: "2000-01-01"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv, err := repo.Insert(ctx, entity.NewInvoice("doc.pdf", "", "text", strPtr("VB"), extract.Details{
		Amount:   strPtr("10.00"),
		Currency: "USD",
		Vendor:   strPtr("Old Vendor"),
	}, 1))
	require.NoError(t, err)

	got, err := repo.Update(ctx, inv.ID, UpdateInvoiceRequest{
		Amount: strPtr("77.00"),
		Vendor: strPtr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Details.Amount)
	assert.Equal(t, "77.00", *got.Details.Amount)
	assert.Nil(t, got.Details.Vendor)
	require.NotNil(t, got.PaymentType)
	assert.Equal(t, "VB", *got.PaymentType)

	// No fields set returns the row unchanged.
	same, err := repo.Update(ctx, inv.ID, UpdateInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, got.Details.Amount, same.Details.Amount)
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv, err := repo.Insert(ctx, testInvoice("doc.pdf", nil, "10.00"))
	require.NoError(t, err)

	now := time.Now().UTC()
	paid, err := repo.MarkPaid(ctx, inv.ID, now)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.WithinDuration(t, now, *paid.PaidAt, 2*time.Second)

	open, err := repo.MarkUnpaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusOpen, open.Status)
	assert.Nil(t, open.PaidAt)
}

func TestDeleteReturnsFilePath(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv, err := repo.Insert(ctx, testInvoice("doc.pdf", nil, "10.00"))
	require.NoError(t, err)

	path, err := repo.Delete(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/doc.pdf", path)

	_, err = repo.GetByID(ctx, inv.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.Delete(ctx, inv.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetOpenTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, testInvoice("alpha.pdf", strPtr("VB"), "100.00"))
	require.NoError(t, err)
	b, err := repo.Insert(ctx, testInvoice("beta.pdf", strPtr("IL"), "1,050.00"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, testInvoice("gamma.pdf", nil, "25.50"))
	require.NoError(t, err)

	totals, err := repo.GetOpenTotals(ctx, "")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, totals.VB, 0.001)
	assert.InDelta(t, 1050.0, totals.IL, 0.001)
	assert.InDelta(t, 25.5, totals.Unmarked, 0.001)
	assert.InDelta(t, 1175.5, totals.Total, 0.001)

	// Paid rows drop out of the aggregation.
	_, err = repo.MarkPaid(ctx, b.ID, time.Now().UTC())
	require.NoError(t, err)

	totals, err = repo.GetOpenTotals(ctx, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, totals.IL, 0.001)
	assert.InDelta(t, 125.5, totals.Total, 0.001)

	vbOnly, err := repo.GetOpenTotals(ctx, "VB")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, vbOnly.VB, 0.001)
	assert.InDelta(t, 100.0, vbOnly.Total, 0.001)

	unmarked, err := repo.GetOpenTotals(ctx, "unmarked")
	require.NoError(t, err)
	assert.InDelta(t, 25.5, unmarked.Total, 0.001)
}

func TestAccumulateTotals(t *testing.T) {
	totals := &OpenTotals{}
	accumulateTotals(totals, "VB", "100.00")
	accumulateTotals(totals, "IL", "1,000.50")
	accumulateTotals(totals, "", "10.00")
	accumulateTotals(totals, "OTHER", "5.00")
	accumulateTotals(totals, "VB", "not a number")

	assert.InDelta(t, 100.0, totals.VB, 0.001)
	assert.InDelta(t, 1000.5, totals.IL, 0.001)
	assert.InDelta(t, 15.0, totals.Unmarked, 0.001)
	assert.InDelta(t, 1115.5, totals.Total, 0.001)
}
