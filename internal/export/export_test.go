package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

var fixedNow = time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)

func newTestService() *Service {
	s := NewService(nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func col(t *testing.T, header string) int {
	t.Helper()
	for i, h := range PipelineHeaders {
		if h == header {
			return i
		}
	}
	t.Fatalf("no column %q", header)
	return -1
}

func sampleFields() entity.DealFields {
	var d entity.DealFields
	d.SetString(constants.DealName, entity.Some("Neptune Logistics Center"))
	d.SetString(constants.City, entity.Some("Kent"))
	d.SetString(constants.ZipCode, entity.Some("98032"))
	d.SetNumber(constants.PricingGuidance, entity.Some(31_000_000.0))
	d.SetNumber(constants.CapRate, entity.Some(5.0))
	d.SetNumber(constants.CurrentOccupancy, entity.Some(97.5))
	d.SetNumber(constants.SquareFootage, entity.Some(245_310.0))
	d.SetNumber(constants.ClearHeight, entity.Some(32.0))
	return d
}

func TestPipelineHeaders(t *testing.T) {
	assert.Len(t, PipelineHeaders, 61)
	assert.Equal(t, "Deal", PipelineHeaders[0])
	assert.Equal(t, "Deal Type", PipelineHeaders[60])
	assert.NotContains(t, PipelineHeaders, "Zip Code")
	for h := range columns {
		assert.Contains(t, PipelineHeaders, h)
	}
}

func TestBuildRow(t *testing.T) {
	row := BuildRow(sampleFields(), "/mail/in/neptune.eml", fixedNow)
	require.Len(t, row, len(PipelineHeaders))

	assert.Equal(t, "Neptune Logistics Center", row[col(t, "Deal")])
	assert.Equal(t, "03/07/25", row[col(t, "Entry Date")])
	assert.Equal(t, "$31,000,000", row[col(t, "Pricing Guidance")])
	assert.Equal(t, "5.0%", row[col(t, "Cap Rate")])
	assert.Equal(t, "97.5%", row[col(t, "Current Occupancy")])
	assert.Equal(t, "245,310", row[col(t, "Square Footage")])
	assert.Equal(t, "32.0", row[col(t, "Clear Height")])
	assert.Equal(t, "Kent", row[col(t, "City")])
	assert.Equal(t, "", row[col(t, "State")])
	assert.Equal(t, "", row[col(t, "Book #")])
	assert.Equal(t, "Extracted from email: neptune.eml", row[col(t, "Comments")])

	row = BuildRow(entity.DealFields{}, "", fixedNow)
	assert.Equal(t, "Extracted from marketing email", row[col(t, "Comments")])
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5))
	assert.Equal(t, "$950", FormatCurrency(950))
	assert.Equal(t, "6.25%", FormatPercent(6.25))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "1,234,567", FormatGrouped(1234567))
	assert.Equal(t, "12,345.68", FormatGrouped(12345.678))
	assert.Equal(t, "-1,234", FormatGrouped(-1234))
	assert.Equal(t, "-123,456", FormatGrouped(-123456))
	assert.Equal(t, "3", FormatGrouped(3))
}

func results() []entity.EmailProcessingResult {
	return []entity.EmailProcessingResult{
		{SourceRef: "a.eml", Success: true, OCRUsed: true, Fields: sampleFields(), Quality: entity.QualityAssessment{QualityScore: 30, CriticalScore: 80}},
		{SourceRef: "b.eml", Success: false, Error: "parse email: unexpected EOF"},
		{SourceRef: "c.eml", Success: true, Quality: entity.QualityAssessment{QualityScore: 10, CriticalScore: 20}},
	}
}

func TestService_Rows(t *testing.T) {
	rows := newTestService().Rows(results())
	require.Len(t, rows, 2)
	assert.Equal(t, "Extracted from email: a.eml", rows[0][col(t, "Comments")])
	assert.Equal(t, "Extracted from email: c.eml", rows[1][col(t, "Comments")])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestService_WriteCSV_Append(t *testing.T) {
	s := newTestService()
	path := filepath.Join(t.TempDir(), "pipeline.csv")
	rows := s.Rows(results())

	require.NoError(t, s.WriteCSV(path, rows[:1], true))
	require.NoError(t, s.WriteCSV(path, rows[1:], true))

	recs := readCSV(t, path)
	require.Len(t, recs, 3)
	assert.Equal(t, PipelineHeaders, recs[0])
	assert.Equal(t, "Neptune Logistics Center", recs[1][0])

	require.NoError(t, s.WriteCSV(path, rows[:1], false))
	assert.Len(t, readCSV(t, path), 2)
}

func TestService_WriteXLSX(t *testing.T) {
	s := newTestService()
	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	require.NoError(t, s.WriteXLSX(path, s.Rows(results())))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows(pipelineSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, PipelineHeaders, got[0])
	assert.Equal(t, "$31,000,000", got[1][col(t, "Pricing Guidance")])
}

func TestSummarize(t *testing.T) {
	sum := Summarize(results(), fixedNow)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Successful)
	assert.Equal(t, 1, sum.OCRUsed)
	assert.InDelta(t, 66.67, sum.SuccessRate, 0.01)
	assert.InDelta(t, 20, sum.AvgQualityScore, 1e-9)
	assert.InDelta(t, 50, sum.AvgCriticalScore, 1e-9)

	assert.Zero(t, Summarize(nil, fixedNow).SuccessRate)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, Summarize(results(), fixedNow), results()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "COMMERCIAL REAL ESTATE EMAIL PROCESSING SUMMARY\n"))
	assert.Contains(t, out, "Processing Date: 2025-03-07T09:30:00Z\n")
	assert.Contains(t, out, "Success Rate: 66.7%\n")
	assert.Contains(t, out, "OCR Usage: 1 emails (33.3%)\n")
	assert.Contains(t, out, "Average Quality Score: 20.0%\n")
	assert.Contains(t, out, "2. b.eml\n   Success: false\n   Quality: 0.0%\n   OCR Used: false\n   Error: parse email: unexpected EOF\n")
	assert.NotContains(t, out, "3. c.eml\n   Success: true\n   Quality: 10.0%\n   OCR Used: false\n   Error")
}

func TestService_WriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, newTestService().WriteSummary(path, results()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Total Emails Processed: 3")
}
