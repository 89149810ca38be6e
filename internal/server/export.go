package server

import (
	"net/http"
	"time"

	"github.com/joseph-ayodele/invoices-tracker/internal/export"
)

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := s.exporter.ExportInvoicesXLSX(r.Context(), filterFromQuery(r))
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
