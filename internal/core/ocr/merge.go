package ocr

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// DefaultMergeMinConfidence is the confidence a result must exceed to be merged.
const DefaultMergeMinConfidence = 20.0

// Merge appends usable OCR text to document using the default floor.
func Merge(document string, results []entity.OCRResult) string {
	return MergeAbove(document, results, DefaultMergeMinConfidence)
}

// MergeAbove appends one labeled section per result with non-empty text and a
// present confidence above floor. Labels use the result's 1-based position in
// results, so skipped results leave gaps in the numbering.
func MergeAbove(document string, results []entity.OCRResult, floor float64) string {
	var b strings.Builder
	b.WriteString(document)
	b.WriteString("\n\n")
	for i, r := range results {
		conf, ok := r.Confidence.Get()
		if !ok || conf <= floor || strings.TrimSpace(r.Text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n--- OCR Text from Image %d ---\n%s\n", i+1, r.Text)
	}
	return strings.TrimSpace(b.String())
}
