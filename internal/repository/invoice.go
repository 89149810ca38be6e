// Package repository persists invoices. Two implementations exist: an
// embedded sqlite store for single-binary deployments and a pgx-backed
// postgres store for shared ones. Both speak the same interface; callers
// never know which is wired.
package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

// ListFilter narrows ListInvoices and the open-totals aggregation.
// PaymentType accepts a channel label or the special value "unmarked", which
// selects rows with no channel at all. Dates compare against the created_at
// date, inclusive on both ends.
type ListFilter struct {
	PaymentType string
	Search      string
	FromDate    string // YYYY-MM-DD
	ToDate      string // YYYY-MM-DD
	Status      string // "open", "paid", or "" for all
}

// OpenTotals aggregates unpaid amounts per payment channel. Amounts are
// summed as parsed numbers; rows whose amount fails to parse count as zero.
type OpenTotals struct {
	VB       float64 `json:"vb"`
	IL       float64 `json:"il"`
	Unmarked float64 `json:"unmarked"`
	Total    float64 `json:"total"`
}

// UpdateInvoiceRequest carries the editable fields of an invoice. Nil means
// "leave unchanged"; a pointer to the empty string clears the column.
type UpdateInvoiceRequest struct {
	PaymentType   *string
	Filename      *string
	Amount        *string
	Currency      *string
	InvoiceNumber *string
	Date          *string
	Vendor        *string
	BillTo        *string
	Status        *string
}

type InvoiceRepository interface {
	Insert(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*entity.Invoice, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (*entity.Invoice, error)
	MarkUnpaid(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// Delete removes the row and returns the stored file path so the caller
	// can remove the file as well. Empty when no file was stored.
	Delete(ctx context.Context, id uuid.UUID) (string, error)
	GetOpenTotals(ctx context.Context, paymentType string) (*OpenTotals, error)
	Close() error
}

// amountValue parses a stored amount string for aggregation. Mirrors the
// display format: thousands separators allowed, anything unparseable is zero.
func amountValue(s string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0
	}
	return n
}

// accumulateTotals folds one open row into the totals. Channel labels other
// than VB/IL land in Unmarked together with rows that have no channel.
func accumulateTotals(t *OpenTotals, paymentType, amount string) {
	n := amountValue(amount)
	switch paymentType {
	case "VB":
		t.VB += n
	case "IL":
		t.IL += n
	default:
		t.Unmarked += n
	}
	t.Total += n
}
