package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

func TestMerge_NoResults(t *testing.T) {
	assert.Equal(t, "Body text", Merge("Body text", nil))
	assert.Equal(t, "Body text", Merge("Body text  \n", []entity.OCRResult{
		{Text: "ignored", Confidence: entity.Some(20.0)},
		{Text: "", Confidence: entity.Some(95.0)},
		{Text: "failed", Error: "File not found"},
	}))
}

func TestMerge_LabelsKeepOriginalIndex(t *testing.T) {
	results := []entity.OCRResult{
		{Text: "low", Confidence: entity.Some(10.0)},
		{Text: "NOI $1.2M", Confidence: entity.Some(85.0)},
		{Error: "OCR not available"},
		{Text: "Cap 6%", Confidence: entity.Some(20.5)},
	}
	got := Merge("SUBJECT: Deal\n\nBody", results)
	want := "SUBJECT: Deal\n\nBody\n\n" +
		"\n--- OCR Text from Image 2 ---\nNOI $1.2M\n" +
		"\n--- OCR Text from Image 4 ---\nCap 6%"
	assert.Equal(t, want, got)
}

func TestMergeAbove_CustomFloor(t *testing.T) {
	results := []entity.OCRResult{{Text: "t", Confidence: entity.Some(50.0)}}
	assert.Equal(t, "doc", MergeAbove("doc", results, 50))
	assert.Equal(t, "doc\n\n\n--- OCR Text from Image 1 ---\nt", MergeAbove("doc", results, 49.9))
}
