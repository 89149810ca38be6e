package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
	"github.com/joseph-ayodele/invoices-tracker/internal/core"
	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
	"github.com/joseph-ayodele/invoices-tracker/internal/export"
	"github.com/joseph-ayodele/invoices-tracker/internal/extract"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/rules"
)

func newTestServer(t *testing.T) (*httptest.Server, repository.InvoiceRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := repository.OpenSQLite(context.Background(), ":memory:", logger)
	require.NoError(t, err)

	proc := core.NewProcessor(logger, repo, rules.Default())
	exporter := export.NewService(repo, logger)
	srv := New(repo, proc, exporter, common.ServerConfig{
		HTTPAddr:       ":0",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
	}, logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = repo.Close()
	})
	return ts, repo
}

func strPtr(s string) *string { return &s }

func seedInvoice(t *testing.T, repo repository.InvoiceRepository, filename string, paymentType *string, amount string) *entity.Invoice {
	t.Helper()
	inv, err := repo.Insert(context.Background(), entity.NewInvoice(filename, "", "seed text", paymentType, extract.Details{
		Amount:   strPtr(amount),
		Currency: "USD",
	}, 1))
	require.NoError(t, err)
	return inv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestListInvoicesEmptyReturnsArray(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/invoices")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestGetInvoiceNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/invoices/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Invoice not found", body["error"])
}

func TestGetInvoiceRejectsBadID(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestInvoiceLifecycle(t *testing.T) {
	ts, repo := newTestServer(t)
	inv := seedInvoice(t, repo, "alpha.pdf", strPtr("VB"), "100.00")
	base := ts.URL + "/api/invoices/" + inv.ID.String()

	resp, body := doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alpha.pdf", body["filename"])

	resp, body = doJSON(t, http.MethodPatch, base+"/paid", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", body["status"])
	assert.NotEmpty(t, body["paidAt"])

	resp, body = doJSON(t, http.MethodPatch, base+"/unpaid", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "open", body["status"])

	// Nested details win over the flat shape.
	resp, body = doJSON(t, http.MethodPut, base, map[string]any{
		"amount":  "111.00",
		"details": map[string]any{"amount": "222.00"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "222.00", details["amount"])

	resp, body = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, _ = doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenTotalsEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seedInvoice(t, repo, "alpha.pdf", strPtr("VB"), "100.00")
	seedInvoice(t, repo, "beta.pdf", strPtr("IL"), "50.00")
	seedInvoice(t, repo, "gamma.pdf", nil, "25.50")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/invoices/totals/open", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 100.0, body["vb"], 0.001)
	assert.InDelta(t, 50.0, body["il"], 0.001)
	assert.InDelta(t, 25.5, body["unmarked"], 0.001)
	assert.InDelta(t, 175.5, body["total"], 0.001)
}

func TestRulesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/rules", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	markers, ok := body["payment_markers"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, markers, "VB")
	assert.Equal(t, "IL", body["shekel_channel"])
}

func TestParseInvoiceRejectsUnsupportedFormat(t *testing.T) {
	ts, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/parse-invoice", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unsupported format. Please upload a PDF file.", body["error"])
}

func TestParseInvoiceRequiresFile(t *testing.T) {
	ts, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/parse-invoice", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No file selected", body["error"])
}

func TestParseInvoiceStoresImageWithPlaceholder(t *testing.T) {
	ts, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/parse-invoice", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "receipt.png", body["filename"])
	assert.Equal(t, core.ImagePlaceholderText, body["text"])
	assert.Equal(t, "open", body["status"])
}

func TestExportEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seedInvoice(t, repo, "alpha.pdf", strPtr("VB"), "100.00")

	resp, err := http.Get(ts.URL + "/api/invoices/export/xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoices_export_")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "my-invoice.pdf", safeFilename("my invoice.pdf"))
	assert.Equal(t, "a_b.pdf", safeFilename("a&&b.pdf"))
	assert.Equal(t, "invoice", safeFilename(""))
	assert.Len(t, safeFilename(strings.Repeat("x", 300)+".pdf"), 100)
}
