// Package server exposes the invoice store over HTTP: upload-and-parse,
// listing with filters, payment status transitions, open totals, rules
// inspection, and XLSX export.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/core"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
)

type Server struct {
	repo     repository.InvoiceRepository
	proc     *core.Processor
	exporter *export.Service
	cfg      common.ServerConfig
	logger   *slog.Logger
}

func New(repo repository.InvoiceRepository, proc *core.Processor, exporter *export.Service, cfg common.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		repo:     repo,
		proc:     proc,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Router assembles the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse-invoice", s.handleParseInvoice)
		r.Get("/rules", s.handleGetRules)

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.handleListInvoices)
			r.Get("/totals/open", s.handleOpenTotals)
			r.Get("/export/xlsx", s.handleExportXLSX)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetInvoice)
				r.Put("/", s.handleUpdateInvoice)
				r.Delete("/", s.handleDeleteInvoice)
				r.Get("/file", s.handleInvoiceFile)
				r.Patch("/paid", s.handleMarkPaid)
				r.Patch("/unpaid", s.handleMarkUnpaid)
			})
		})
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.proc.Rules())
}
