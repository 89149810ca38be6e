package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/rules"
)

func newTestProcessor(t *testing.T) (*Processor, repository.InvoiceRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := repository.OpenSQLite(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewProcessor(logger, repo, rules.Default()), repo
}

func TestClassify(t *testing.T) {
	proc, _ := newTestProcessor(t)
	usd := extract.Details{Currency: "USD"}

	got := proc.classify("please pay via vb this month", "doc.pdf", usd)
	require.NotNil(t, got)
	assert.Equal(t, "VB", *got)

	// Filename markers back up the document text.
	got = proc.classify("no markers in the body", "scanmarker-2024.pdf", usd)
	require.NotNil(t, got)
	assert.Equal(t, "VB", *got)

	// A shekel amount forces the configured channel over any marker.
	got = proc.classify("please pay via vb", "doc.pdf", extract.Details{Currency: "₪"})
	require.NotNil(t, got)
	assert.Equal(t, "IL", *got)

	assert.Nil(t, proc.classify("nothing to see", "doc.pdf", usd))
}

func TestProcessFileRejectsUnsupported(t *testing.T) {
	proc, _ := newTestProcessor(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))

	_, err := proc.ProcessFile(context.Background(), path)
	require.Error(t, err)
}

func TestProcessFileStoresImageWithPlaceholder(t *testing.T) {
	proc, repo := newTestProcessor(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "topscan-receipt.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image"), 0o644))

	inv, err := proc.ProcessFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "topscan-receipt.png", inv.Filename)
	assert.Equal(t, ImagePlaceholderText, inv.Text)
	assert.Equal(t, 0, inv.Pages)
	require.NotNil(t, inv.PaymentType)
	assert.Equal(t, "IL", *inv.PaymentType)

	list, err := repo.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
