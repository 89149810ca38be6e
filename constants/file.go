package constants

import (
	"path/filepath"
	"strings"
)

// PDFExtension is the only format that supports text extraction; image
// formats are accepted for storage but yield a placeholder text.
const PDFExtension = "pdf"

// AllowedExtensions is the upload allow-list, lowercase without the dot.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
	"bmp":  {},
}

// NormalizeExt returns the lowercase extension of name without the leading
// dot.
func NormalizeExt(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// IsAllowed reports whether the file name has an accepted upload extension.
func IsAllowed(name string) bool {
	_, ok := AllowedExtensions[NormalizeExt(name)]
	return ok
}

// IsPDF reports whether the file name is a PDF.
func IsPDF(name string) bool {
	return NormalizeExt(name) == PDFExtension
}
