package constants

// InvoiceStatus tracks whether an invoice is still awaiting payment.
type InvoiceStatus string

const (
	StatusOpen InvoiceStatus = "open"
	StatusPaid InvoiceStatus = "paid"
)

// NormalizeStatus maps legacy empty/null status values to open.
func NormalizeStatus(s string) InvoiceStatus {
	if s == string(StatusPaid) {
		return StatusPaid
	}
	return StatusOpen
}
