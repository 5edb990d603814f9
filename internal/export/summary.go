package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// Summary aggregates a run for the textual report.
type Summary struct {
	ProcessedAt      time.Time
	Total            int
	Successful       int
	SuccessRate      float64
	OCRUsed          int
	OCRRate          float64
	AvgQualityScore  float64
	AvgCriticalScore float64
}

// Summarize averages scores over successful results only.
func Summarize(results []entity.EmailProcessingResult, now time.Time) Summary {
	var stats entity.RunStats
	var quality, critical float64
	for _, r := range results {
		stats.Record(r)
		if r.Success {
			quality += r.Quality.QualityScore
			critical += r.Quality.CriticalScore
		}
	}
	s := Summary{
		ProcessedAt: now,
		Total:       stats.TotalProcessed,
		Successful:  stats.Successful,
		SuccessRate: stats.SuccessRate(),
		OCRUsed:     stats.OCRUsed,
		OCRRate:     stats.OCRRate(),
	}
	if stats.Successful > 0 {
		s.AvgQualityScore = quality / float64(stats.Successful)
		s.AvgCriticalScore = critical / float64(stats.Successful)
	}
	return s
}

// RenderSummary writes the report: run totals first, then one block per email.
func RenderSummary(w io.Writer, s Summary, results []entity.EmailProcessingResult) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(bw, format, args...) }

	p("COMMERCIAL REAL ESTATE EMAIL PROCESSING SUMMARY\n")
	p("%s\n\n", strings.Repeat("=", 50))
	p("Processing Date: %s\n", s.ProcessedAt.Format(time.RFC3339))
	p("Total Emails Processed: %d\n", s.Total)
	p("Successful Extractions: %d\n", s.Successful)
	p("Success Rate: %.1f%%\n", s.SuccessRate)
	p("OCR Usage: %d emails (%.1f%%)\n", s.OCRUsed, s.OCRRate)
	p("Average Quality Score: %.1f%%\n", s.AvgQualityScore)
	p("Average Critical Fields Score: %.1f%%\n\n", s.AvgCriticalScore)

	p("INDIVIDUAL EMAIL RESULTS:\n")
	p("%s\n", strings.Repeat("-", 30))
	for i, r := range results {
		p("%d. %s\n", i+1, r.SourceRef)
		p("   Success: %t\n", r.Success)
		p("   Quality: %.1f%%\n", r.Quality.QualityScore)
		p("   OCR Used: %t\n", r.OCRUsed)
		if r.Error != "" {
			p("   Error: %s\n", r.Error)
		}
		p("\n")
	}
	return bw.Flush()
}

// WriteSummary renders the report for results into path.
func (s *Service) WriteSummary(path string, results []entity.EmailProcessingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	sum := Summarize(results, s.now())
	if err := RenderSummary(f, sum, results); err != nil {
		_ = f.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	s.logger.Info("export.summary.ok", "path", path, "emails", sum.Total, "successful", sum.Successful)
	return nil
}
