package constants

import "strings"

// ImageExtensions holds the file extensions eligible for OCR, whether they
// arrive as attachments or as downloaded images.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
	"pdf":  {},
}

// EmailExtension is the only input format the scanner discovers.
const EmailExtension = "eml"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext (with or without the dot) is OCR-eligible.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[NormalizeExt(ext)]
	return ok
}

// IsPDFExt reports whether ext names a PDF, which is rasterized before OCR.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}

// ExtFromContentType maps an image Content-Type to an eligible extension.
// Returns "" when the type is not eligible.
func ExtFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "jpg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "gif"):
		return "gif"
	case strings.Contains(ct, "bmp"):
		return "bmp"
	case strings.Contains(ct, "tiff"):
		return "tiff"
	case strings.Contains(ct, "pdf"):
		return "pdf"
	}
	return ""
}
