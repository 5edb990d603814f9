package ocr

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

const (
	// MinDocumentLength is the trimmed character count below which a
	// document is considered too thin to stand on its own.
	MinDocumentLength = 500
	// CriticalFillRatio is the share of OCR-critical fields that must be
	// filled to skip OCR.
	CriticalFillRatio = 0.4
)

// Reasons reported in a Decision.
const (
	ReasonCriticalFieldsLow = "critical_fields_low"
	ReasonShortDocument     = "short_document"
	ReasonImageAndClick     = "image_click_phrases"
	ReasonViewWithImages    = "view_with_images"
)

// Decision is the outcome of the OCR trigger policy.
type Decision struct {
	Trigger        bool
	FilledCritical int
	TotalCritical  int
	TextLength     int
	Reasons        []string
}

// ShouldOCR decides whether image OCR is warranted for a document given its
// first-pass fields. It fires when any of the checks below does.
func ShouldOCR(document string, fields entity.DealFields) Decision {
	d := Decision{
		FilledCritical: fields.CountPresent(constants.OCRCriticalFields),
		TotalCritical:  len(constants.OCRCriticalFields),
		TextLength:     utf8.RuneCountInString(strings.TrimSpace(document)),
	}

	if float64(d.FilledCritical) < float64(d.TotalCritical)*CriticalFillRatio {
		d.Reasons = append(d.Reasons, ReasonCriticalFieldsLow)
	}
	if d.TextLength < MinDocumentLength {
		d.Reasons = append(d.Reasons, ReasonShortDocument)
	}
	lower := strings.ToLower(document)
	if strings.Contains(lower, "image") && strings.Contains(lower, "click") {
		d.Reasons = append(d.Reasons, ReasonImageAndClick)
	}
	if strings.Contains(lower, "view with images") {
		d.Reasons = append(d.Reasons, ReasonViewWithImages)
	}

	d.Trigger = len(d.Reasons) > 0
	return d
}
