package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

func filterFromQuery(r *http.Request) repository.ListFilter {
	q := r.URL.Query()
	return repository.ListFilter{
		PaymentType: q.Get("paymentType"),
		Search:      q.Get("search"),
		FromDate:    q.Get("fromDate"),
		ToDate:      q.Get("toDate"),
		Status:      q.Get("status"),
	}
}

func invoiceID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context(), filterFromQuery(r))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if list == nil {
		list = []*entity.Invoice{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	inv, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleOpenTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.repo.GetOpenTotals(r.Context(), r.URL.Query().Get("paymentType"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	inv, err := s.repo.MarkPaid(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleMarkUnpaid(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	inv, err := s.repo.MarkUnpaid(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// updateInvoiceBody accepts both the flat and the details-nested shapes; the
// nested form wins where both are present.
type updateInvoiceBody struct {
	PaymentType   *string            `json:"paymentType"`
	Filename      *string            `json:"filename"`
	Amount        *string            `json:"amount"`
	Currency      *string            `json:"currency"`
	InvoiceNumber *string            `json:"invoiceNumber"`
	Date          *string            `json:"date"`
	Vendor        *string            `json:"vendor"`
	BillTo        *string            `json:"billTo"`
	Status        *string            `json:"status"`
	Details       *updateInvoiceBody `json:"details"`
}

func coalesce(nested, flat *string) *string {
	if nested != nil {
		return nested
	}
	return flat
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	var body updateInvoiceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := repository.UpdateInvoiceRequest{
		PaymentType: body.PaymentType,
		Filename:    body.Filename,
		Status:      body.Status,
	}
	if d := body.Details; d != nil {
		req.Filename = coalesce(d.Filename, body.Filename)
		req.Amount = coalesce(d.Amount, body.Amount)
		req.Currency = coalesce(d.Currency, body.Currency)
		req.InvoiceNumber = coalesce(d.InvoiceNumber, body.InvoiceNumber)
		req.Date = coalesce(d.Date, body.Date)
		req.Vendor = coalesce(d.Vendor, body.Vendor)
		req.BillTo = coalesce(d.BillTo, body.BillTo)
	} else {
		req.Amount = body.Amount
		req.Currency = body.Currency
		req.InvoiceNumber = body.InvoiceNumber
		req.Date = body.Date
		req.Vendor = body.Vendor
		req.BillTo = body.BillTo
	}

	inv, err := s.repo.Update(r.Context(), id, req)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	filePath, err := s.repo.Delete(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if filePath != "" {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove stored file", "path", filePath, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleInvoiceFile(w http.ResponseWriter, r *http.Request) {
	id, ok := invoiceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}
	inv, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if inv.FilePath == "" {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if _, err := os.Stat(inv.FilePath); err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	name := inv.Filename
	if name == "" {
		name = "invoice.pdf"
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	http.ServeFile(w, r, inv.FilePath)
}
