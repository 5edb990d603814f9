package entity

import (
	"time"

	"github.com/joseph-ayodele/deal-scanner/constants"
)

// QualityAssessment is the completeness score of one DealFields value.
type QualityAssessment struct {
	QualityScore   float64 `json:"quality_score"`
	CriticalScore  float64 `json:"critical_fields_score"`
	FilledCount    int     `json:"filled_count"`
	TotalCount     int     `json:"total_count"`
	FilledCritical int     `json:"filled_critical"`
	TotalCritical  int     `json:"total_critical"`
	Sufficient     bool    `json:"is_sufficient"`
}

// EmailProcessingResult is the per-email outcome appended to a run.
type EmailProcessingResult struct {
	SourceRef   string            `json:"source_ref"`
	Success     bool              `json:"success"`
	OCRUsed     bool              `json:"ocr_used"`
	Fields      DealFields        `json:"extracted_data"`
	Quality     QualityAssessment `json:"quality"`
	Stage       constants.Stage   `json:"stage"`
	Error       string            `json:"error,omitempty"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// RunStats are the run-level counters. Record is called once per email.
type RunStats struct {
	TotalProcessed int `json:"total_processed"`
	Successful     int `json:"successful"`
	OCRUsed        int `json:"ocr_used"`
	Errors         int `json:"errors"`
}

// Record folds one finalized result into the counters.
func (s *RunStats) Record(r EmailProcessingResult) {
	s.TotalProcessed++
	if r.Success {
		s.Successful++
	} else {
		s.Errors++
	}
	if r.OCRUsed {
		s.OCRUsed++
	}
}

// SuccessRate is the share of successful emails, in percent.
func (s RunStats) SuccessRate() float64 {
	if s.TotalProcessed == 0 {
		return 0
	}
	return 100 * float64(s.Successful) / float64(s.TotalProcessed)
}

// OCRRate is the share of emails that used OCR, in percent.
func (s RunStats) OCRRate() float64 {
	if s.TotalProcessed == 0 {
		return 0
	}
	return 100 * float64(s.OCRUsed) / float64(s.TotalProcessed)
}
