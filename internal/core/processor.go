// Package core coordinates document processing: decode positioned text from
// the file, reconstruct layout, run field extraction and payment
// classification, and persist the resulting invoice.
package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
	"github.com/joseph-ayodele/invoices-tracker/internal/pdftext"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/rules"
)

// ImagePlaceholderText is stored for image uploads, which carry no
// extractable text.
const ImagePlaceholderText = "(Image invoice - upload a PDF for text extraction)"

// shortTextThreshold flags extractions that likely came from a scanned
// (image-only) PDF.
const shortTextThreshold = 50

// Processor turns one uploaded or ingested file into a stored invoice.
type Processor struct {
	logger *slog.Logger
	repo   repository.InvoiceRepository
	rules  *rules.Rules
}

func NewProcessor(logger *slog.Logger, repo repository.InvoiceRepository, r *rules.Rules) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = rules.Default()
	}
	return &Processor{logger: logger, repo: repo, rules: r}
}

// Rules returns the active classification rules.
func (p *Processor) Rules() *rules.Rules {
	return p.rules
}

// ProcessFile processes the file at path, dispatching on extension.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*entity.Invoice, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	name := filepath.Base(abs)
	if !constants.IsAllowed(name) {
		return nil, fmt.Errorf("unsupported format: %q", constants.NormalizeExt(name))
	}
	if !constants.IsPDF(name) {
		return p.processImage(ctx, name, abs)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return p.ProcessPDF(ctx, name, abs, f)
}

// ProcessPDF decodes rs as a PDF and stores the extracted invoice. savedPath
// is recorded so the stored document can be served back later.
func (p *Processor) ProcessPDF(ctx context.Context, filename, savedPath string, rs io.ReadSeeker) (*entity.Invoice, error) {
	doc, err := pdftext.ExtractDocument(rs)
	if err != nil {
		invoicesProcessed.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	textToUse := doc.Text
	if strings.TrimSpace(textToUse) == "" {
		textToUse = doc.RawText
	}
	if len([]rune(strings.TrimSpace(textToUse))) < shortTextThreshold {
		p.logger.Warn("processor.text.short", "filename", filename, "chars", len(textToUse))
	}

	details := extract.BestDetails(textToUse, doc.RawText)
	paymentType := p.classify(textToUse, filename, details)

	inv := entity.NewInvoice(filename, savedPath, textToUse, paymentType, details, doc.NumPages)
	saved, err := p.repo.Insert(ctx, inv)
	if err != nil {
		invoicesProcessed.WithLabelValues("db_error").Inc()
		return nil, err
	}
	invoicesProcessed.WithLabelValues("ok").Inc()
	p.logger.Info("processor.invoice.ok",
		"filename", filename,
		"pages", doc.NumPages,
		"amount", strDeref(details.Amount),
		"currency", details.Currency,
		"payment_type", strDeref(paymentType),
	)
	return saved, nil
}

// processImage stores an image upload with placeholder text; classification
// still runs against the filename.
func (p *Processor) processImage(ctx context.Context, filename, savedPath string) (*entity.Invoice, error) {
	details := extract.DetailsFromText(ImagePlaceholderText)
	paymentType := p.classify(ImagePlaceholderText, filename, details)

	inv := entity.NewInvoice(filename, savedPath, ImagePlaceholderText, paymentType, details, 0)
	saved, err := p.repo.Insert(ctx, inv)
	if err != nil {
		invoicesProcessed.WithLabelValues("db_error").Inc()
		return nil, err
	}
	invoicesProcessed.WithLabelValues("ok").Inc()
	return saved, nil
}

// ProcessImageUpload stores an already-saved image file as an invoice.
func (p *Processor) ProcessImageUpload(ctx context.Context, filename, savedPath string) (*entity.Invoice, error) {
	return p.processImage(ctx, filename, savedPath)
}

// classify resolves the payment channel: document text first, filename as a
// fallback, and a shekel-denominated amount forces the configured shekel
// channel regardless of markers.
func (p *Processor) classify(text, filename string, details extract.Details) *string {
	markers := p.rules.Markers()
	pt := extract.PaymentType(text, markers)
	if pt == "" {
		pt = extract.PaymentType(filename, markers)
	}
	if details.Currency == string(constants.CurrencyShekel) && p.rules.ShekelChannel != "" {
		pt = p.rules.ShekelChannel
	}
	if pt == "" {
		return nil
	}
	return &pt
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
