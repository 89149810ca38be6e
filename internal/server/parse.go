package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

var (
	reUnsafeChars  = regexp.MustCompile(`[^\w\-.]`)
	reUnderscores  = regexp.MustCompile(`_+`)
	reFilenameWS   = regexp.MustCompile(`\s+`)
	maxSafeNameLen = 100
)

// safeFilename produces a storage-safe variant of an uploaded file name.
func safeFilename(name string) string {
	if name == "" {
		name = "invoice"
	}
	s := reFilenameWS.ReplaceAllString(name, "-")
	s = reUnsafeChars.ReplaceAllString(s, "_")
	s = reUnderscores.ReplaceAllString(s, "_")
	if len(s) > maxSafeNameLen {
		s = s[:maxSafeNameLen]
	}
	if s == "" {
		s = "invoice.pdf"
	}
	return s
}

// handleParseInvoice accepts a multipart upload, stores the file under the
// upload directory, and runs extraction. Unsupported formats are rejected
// and nothing is kept on disk.
func (s *Server) handleParseInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer file.Close()

	origName := header.Filename
	if !constants.IsAllowed(origName) {
		writeError(w, http.StatusBadRequest, "Unsupported format. Please upload a PDF file.")
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot create upload directory")
		return
	}
	savedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), safeFilename(origName))
	savedPath, err := filepath.Abs(filepath.Join(s.cfg.UploadDir, savedName))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dst, err := os.Create(savedPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(savedPath)
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(savedPath)
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}

	if constants.IsPDF(origName) {
		f, err := os.Open(savedPath)
		if err != nil {
			_ = os.Remove(savedPath)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer f.Close()
		inv, err := s.proc.ProcessPDF(r.Context(), origName, savedPath, f)
		if err != nil {
			_ = os.Remove(savedPath)
			writeError(w, http.StatusInternalServerError, "Error parsing invoice: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, inv)
		return
	}

	inv, err := s.proc.ProcessImageUpload(r.Context(), origName, savedPath)
	if err != nil {
		_ = os.Remove(savedPath)
		writeError(w, http.StatusInternalServerError, "Error parsing invoice: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
