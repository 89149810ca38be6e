package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoices-tracker/constants"
	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
)

// Invoice represents a stored invoice for data transfer between layers.
// Details carries the extracted fields; the flat columns of the storage
// schema are folded into it on read.
type Invoice struct {
	ID          uuid.UUID               `json:"id"`
	Filename    string                  `json:"filename"`
	FilePath    string                  `json:"filePath,omitempty"`
	Text        string                  `json:"text"`
	PaymentType *string                 `json:"paymentType"`
	Status      constants.InvoiceStatus `json:"status"`
	PaidAt      *time.Time              `json:"paidAt,omitempty"`
	Details     extract.Details         `json:"details"`
	Pages       int                     `json:"pages,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewInvoice assembles an invoice record from one processed document.
func NewInvoice(filename, filePath, text string, paymentType *string, details extract.Details, pages int) *Invoice {
	return &Invoice{
		ID:          uuid.New(),
		Filename:    filename,
		FilePath:    filePath,
		Text:        text,
		PaymentType: paymentType,
		Status:      constants.StatusOpen,
		Details:     details,
		Pages:       pages,
		CreatedAt:   time.Now().UTC(),
	}
}
