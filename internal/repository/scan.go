package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
)

const invoiceColumns = `id, filename, file_path, text, payment_type, amount, currency, invoice_number, date, vendor, bill_to, status, paid_at, pages, created_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanInvoice reads one invoices row in invoiceColumns order. Timestamps are
// stored as text in the sqlite layout.
func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		id, filename, text, status string
		pages                      sql.NullInt64

		filePath, paymentType, amount, currency, invoiceNumber,
		date, vendor, billTo, paidAt, createdAt sql.NullString
	)
	err := row.Scan(&id, &filename, &filePath, &text, &paymentType,
		&amount, &currency, &invoiceNumber, &date, &vendor, &billTo,
		&status, &paidAt, &pages, &createdAt)
	if err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	inv := &entity.Invoice{
		ID:       parsedID,
		Filename: filename,
		FilePath: filePath.String,
		Text:     text,
		Status:   constants.NormalizeStatus(status),
		Pages:    int(pages.Int64),
		Details: extract.Details{
			Amount:        nullStr(amount),
			Currency:      currency.String,
			InvoiceNumber: nullStr(invoiceNumber),
			Date:          nullStr(date),
			Vendor:        nullStr(vendor),
			BillTo:        nullStr(billTo),
		},
	}
	inv.PaymentType = nullStr(paymentType)
	if paidAt.Valid && paidAt.String != "" {
		if t, err := parseStoredTime(paidAt.String); err == nil {
			inv.PaidAt = &t
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		if t, err := parseStoredTime(createdAt.String); err == nil {
			inv.CreatedAt = t
		}
	}
	return inv, nil
}

func parseStoredTime(s string) (time.Time, error) {
	if t, err := time.Parse(sqliteTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// nullable converts an optional string to a driver argument, mapping nil to
// SQL NULL.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// strPtrOrNil treats the empty string as absent.
func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func placeholderQuestion(int) string { return "?" }

// buildUpdateSets assembles SET clauses for the editable columns. A field
// left nil is untouched; a field set to the empty string clears the column.
func buildUpdateSets(req UpdateInvoiceRequest, placeholder func(n int) string) ([]string, []any) {
	var sets []string
	var args []any

	add := func(col string, val *string) {
		if val == nil {
			return
		}
		args = append(args, nullable(strPtrOrNil(*val)))
		sets = append(sets, col+" = "+placeholder(len(args)))
	}

	add("payment_type", req.PaymentType)
	add("filename", req.Filename)
	add("amount", req.Amount)
	add("currency", req.Currency)
	add("invoice_number", req.InvoiceNumber)
	add("date", req.Date)
	add("vendor", req.Vendor)
	add("bill_to", req.BillTo)
	add("status", req.Status)

	return sets, args
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}
