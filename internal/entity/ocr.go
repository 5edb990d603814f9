package entity

// OCRResult is the recognition outcome for one image or PDF. An absent
// Confidence means recognition failed; a present 0 means it ran but kept
// nothing.
type OCRResult struct {
	SourceRef  string            `json:"source_ref"`
	Text       string            `json:"text"`
	Confidence Optional[float64] `json:"confidence"`
	WordCount  int               `json:"word_count"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether recognition did not complete.
func (r OCRResult) Failed() bool {
	return !r.Confidence.Valid()
}
