// Package export produces XLSX workbooks from stored invoices.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

// Service is a tiny façade over the invoice repository that produces XLSX
// bytes for exports.
type Service struct {
	repo   repository.InvoiceRepository
	logger *slog.Logger
}

func NewService(repo repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Filename returns the attachment name for an export generated now.
func Filename(now time.Time) string {
	return "invoices_export_" + now.UTC().Format("2006-01-02") + ".xlsx"
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) for the invoices
// matching filter. Column set mirrors the list view so a spreadsheet export
// round-trips what the operator sees.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	invoices, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook opens on Invoices.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Invoice #",
		"Client name",
		"Amount",
		"Currency",
		"Payment method (VB/IL)",
		"Status",
		"Issue date",
		"Due date",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		clientName := strOr(inv.Details.Vendor, inv.Filename)
		status := "Unpaid"
		if inv.Status == constants.StatusPaid {
			status = "Paid"
		}
		paymentMethod := ""
		if inv.PaymentType != nil {
			paymentMethod = *inv.PaymentType
		}

		write(1, strOr(inv.Details.InvoiceNumber, ""))
		write(2, clientName)
		write(3, strOr(inv.Details.Amount, ""))
		write(4, inv.Details.Currency)
		write(5, paymentMethod)
		write(6, status)
		write(7, strOr(inv.Details.Date, ""))
		write(8, strOr(inv.Details.Date, ""))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "D", 12)
	_ = f.SetColWidth(sheet, "E", "F", 18)
	_ = f.SetColWidth(sheet, "G", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(invoices), "duration", time.Since(start))
	return buf.Bytes(), nil
}

func strOr(p *string, fallback string) string {
	if p != nil && *p != "" {
		return *p
	}
	return fallback
}
