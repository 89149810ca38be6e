package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoices-tracker/constants"
)

// AllowedExt checks if a file extension is in the accepted upload set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[strings.TrimPrefix(strings.ToLower(ext), ".")]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
