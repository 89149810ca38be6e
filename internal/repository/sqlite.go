package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	file_path TEXT,
	text TEXT,
	payment_type TEXT,
	amount TEXT,
	currency TEXT,
	invoice_number TEXT,
	date TEXT,
	vendor TEXT,
	bill_to TEXT,
	status TEXT DEFAULT 'open',
	paid_at TEXT,
	pages INTEGER DEFAULT 0,
	created_at TEXT NOT NULL
)`

type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the sqlite invoice store at dsn.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (InvoiceRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "dsn", dsn, "error", err)
		return nil, common.NewAppError("DB_OPEN", "open sqlite database", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent workers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		logger.Error("failed to create invoices table", "error", err)
		return nil, common.NewAppError("DB_MIGRATE", "create invoices table", err)
	}
	logger.Info("sqlite store ready", "dsn", dsn)
	return &sqliteRepository{db: db, logger: logger}, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	const q = `
INSERT INTO invoices (id, filename, file_path, text, payment_type, amount, currency, invoice_number, date, vendor, bill_to, status, pages, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	if inv.Status == "" {
		inv.Status = constants.StatusOpen
	}
	_, err := r.db.ExecContext(ctx, q,
		inv.ID.String(),
		inv.Filename,
		nullable(strPtrOrNil(inv.FilePath)),
		inv.Text,
		nullable(inv.PaymentType),
		nullable(inv.Details.Amount),
		nullable(strPtrOrNil(inv.Details.Currency)),
		nullable(inv.Details.InvoiceNumber),
		nullable(inv.Details.Date),
		nullable(inv.Details.Vendor),
		nullable(inv.Details.BillTo),
		string(inv.Status),
		inv.Pages,
		inv.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		r.logger.Error("failed to insert invoice", "filename", inv.Filename, "error", err)
		return nil, common.NewAppError("DB_INSERT", "insert invoice", err)
	}
	return r.GetByID(ctx, inv.ID)
}

func (r *sqliteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id.String())
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get invoice", err)
	}
	return inv, nil
}

func (r *sqliteRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any

	if filter.PaymentType != "" {
		if filter.PaymentType == "unmarked" {
			q += ` AND (payment_type IS NULL OR payment_type = '')`
		} else {
			q += ` AND payment_type = ?`
			args = append(args, filter.PaymentType)
		}
	}
	if filter.Search != "" {
		q += ` AND (filename LIKE ? OR text LIKE ? OR vendor LIKE ? OR invoice_number LIKE ? OR amount LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term, term, term)
	}
	if filter.FromDate != "" {
		q += ` AND date(created_at) >= date(?)`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		q += ` AND date(created_at) <= date(?)`
		args = append(args, filter.ToDate)
	}
	switch filter.Status {
	case "open":
		q += ` AND (status IS NULL OR status = '' OR status = 'open')`
	case "paid":
		q += ` AND status = 'paid'`
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list invoices", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan invoice", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *sqliteRepository) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*entity.Invoice, error) {
	sets, args := buildUpdateSets(req, placeholderQuestion)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	q := `UPDATE invoices SET ` + joinSets(sets) + ` WHERE id = ?`
	args = append(args, id.String())
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		r.logger.Error("failed to update invoice", "id", id, "error", err)
		return nil, common.NewAppError("DB_UPDATE", "update invoice", err)
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (*entity.Invoice, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = ? WHERE id = ?`,
		paidAt.UTC().Format(sqliteTimeLayout), id.String())
	if err != nil {
		return nil, common.NewAppError("DB_UPDATE", "mark invoice paid", err)
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) MarkUnpaid(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'open', paid_at = NULL WHERE id = ?`, id.String())
	if err != nil {
		return nil, common.NewAppError("DB_UPDATE", "mark invoice unpaid", err)
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	var filePath sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT file_path FROM invoices WHERE id = ?`, id.String()).Scan(&filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", common.NewAppError("DB_QUERY", "load invoice file path", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id.String()); err != nil {
		return "", common.NewAppError("DB_DELETE", "delete invoice", err)
	}
	return filePath.String, nil
}

func (r *sqliteRepository) GetOpenTotals(ctx context.Context, paymentType string) (*OpenTotals, error) {
	q := `SELECT payment_type, amount FROM invoices
WHERE (status IS NULL OR status = '' OR status = 'open') AND amount IS NOT NULL AND amount != ''`
	var args []any
	if paymentType != "" {
		if paymentType == "unmarked" {
			q += ` AND (payment_type IS NULL OR payment_type = '')`
		} else {
			q += ` AND payment_type = ?`
			args = append(args, paymentType)
		}
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "open totals", err)
	}
	defer rows.Close()

	totals := &OpenTotals{}
	for rows.Next() {
		var pt, amount sql.NullString
		if err := rows.Scan(&pt, &amount); err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan open totals", err)
		}
		accumulateTotals(totals, pt.String, amount.String)
	}
	return totals, rows.Err()
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
