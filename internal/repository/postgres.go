package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS invoices (
	id UUID PRIMARY KEY,
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
	paid_at TIMESTAMPTZ,
	pages INTEGER DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
)`

type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool against cfg and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (InvoiceRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, common.NewAppError("DB_CONFIG", "parse postgres dsn", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoices-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.NewAppError("DB_OPEN", "connect to postgres", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Error("failed to create invoices table", "error", err)
		return nil, common.NewAppError("DB_MIGRATE", "create invoices table", err)
	}
	logger.Info("successfully connected to database")
	return &postgresRepository{pool: pool, logger: logger}, nil
}

func (r *postgresRepository) Insert(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	const q = `
INSERT INTO invoices (id, filename, file_path, text, payment_type, amount, currency, invoice_number, date, vendor, bill_to, status, pages, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	if inv.Status == "" {
		inv.Status = constants.StatusOpen
	}
	_, err := r.pool.Exec(ctx, q,
		inv.ID,
		inv.Filename,
		strPtrOrNil(inv.FilePath),
		inv.Text,
		inv.PaymentType,
		inv.Details.Amount,
		strPtrOrNil(inv.Details.Currency),
		inv.Details.InvoiceNumber,
		inv.Details.Date,
		inv.Details.Vendor,
		inv.Details.BillTo,
		string(inv.Status),
		inv.Pages,
		inv.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert invoice", "filename", inv.Filename, "error", err)
		return nil, common.NewAppError("DB_INSERT", "insert invoice", err)
	}
	return r.GetByID(ctx, inv.ID)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanPGInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "get invoice", err)
	}
	return inv, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any
	next := func() string {
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.PaymentType != "" {
		if filter.PaymentType == "unmarked" {
			q += ` AND (payment_type IS NULL OR payment_type = '')`
		} else {
			args = append(args, filter.PaymentType)
			q += ` AND payment_type = ` + next()
		}
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		args = append(args, term)
		p := next()
		q += ` AND (filename ILIKE ` + p + ` OR text ILIKE ` + p + ` OR vendor ILIKE ` + p +
			` OR invoice_number ILIKE ` + p + ` OR amount ILIKE ` + p + `)`
	}
	if filter.FromDate != "" {
		args = append(args, filter.FromDate)
		q += ` AND created_at::date >= ` + next() + `::date`
	}
	if filter.ToDate != "" {
		args = append(args, filter.ToDate)
		q += ` AND created_at::date <= ` + next() + `::date`
	}
	switch filter.Status {
	case "open":
		q += ` AND (status IS NULL OR status = '' OR status = 'open')`
	case "paid":
		q += ` AND status = 'paid'`
	}
	q += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, common.NewAppError("DB_QUERY", "list invoices", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanPGInvoice(rows)
		if err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan invoice", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*entity.Invoice, error) {
	sets, args := buildUpdateSets(req, func(n int) string { return fmt.Sprintf("$%d", n) })
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	q := `UPDATE invoices SET ` + joinSets(sets) + fmt.Sprintf(` WHERE id = $%d`, len(args))
	if _, err := r.pool.Exec(ctx, q, args...); err != nil {
		r.logger.Error("failed to update invoice", "id", id, "error", err)
		return nil, common.NewAppError("DB_UPDATE", "update invoice", err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (*entity.Invoice, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = $1 WHERE id = $2`, paidAt.UTC(), id)
	if err != nil {
		return nil, common.NewAppError("DB_UPDATE", "mark invoice paid", err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepository) MarkUnpaid(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = 'open', paid_at = NULL WHERE id = $1`, id)
	if err != nil {
		return nil, common.NewAppError("DB_UPDATE", "mark invoice unpaid", err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	var filePath *string
	err := r.pool.QueryRow(ctx,
		`SELECT file_path FROM invoices WHERE id = $1`, id).Scan(&filePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", common.NewAppError("DB_QUERY", "load invoice file path", err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return "", common.NewAppError("DB_DELETE", "delete invoice", err)
	}
	if filePath == nil {
		return "", nil
	}
	return *filePath, nil
}

func (r *postgresRepository) GetOpenTotals(ctx context.Context, paymentType string) (*OpenTotals, error) {
	q := `SELECT payment_type, amount FROM invoices
WHERE (status IS NULL OR status = '' OR status = 'open') AND amount IS NOT NULL AND amount != ''`
	var args []any
	if paymentType != "" {
		if paymentType == "unmarked" {
			q += ` AND (payment_type IS NULL OR payment_type = '')`
		} else {
			args = append(args, paymentType)
			q += ` AND payment_type = $1`
		}
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "open totals", err)
	}
	defer rows.Close()

	totals := &OpenTotals{}
	for rows.Next() {
		var pt, amount *string
		if err := rows.Scan(&pt, &amount); err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan open totals", err)
		}
		accumulateTotals(totals, deref(pt), deref(amount))
	}
	return totals, rows.Err()
}

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// scanPGInvoice reads one row in invoiceColumns order using pgx native types.
func scanPGInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv      entity.Invoice
		filePath *string
		currency *string
		status   *string
		pages    *int32
	)
	err := row.Scan(&inv.ID, &inv.Filename, &filePath, &inv.Text, &inv.PaymentType,
		&inv.Details.Amount, &currency, &inv.Details.InvoiceNumber, &inv.Details.Date,
		&inv.Details.Vendor, &inv.Details.BillTo, &status, &inv.PaidAt, &pages, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.FilePath = deref(filePath)
	inv.Details.Currency = deref(currency)
	inv.Status = constants.NormalizeStatus(deref(status))
	if pages != nil {
		inv.Pages = int(*pages)
	}
	return &inv, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
