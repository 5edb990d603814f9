package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/constants"
)

// IsEmail reports whether path carries the .eml extension, in any case.
func IsEmail(path string) bool {
	return constants.NormalizeExt(filepath.Ext(path)) == constants.EmailExtension
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}
