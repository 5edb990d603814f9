package llm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended when the document exceeds the input limit.
const TruncationMarker = "\n...[truncated]"

var (
	reURL         = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	rePctEncoded  = regexp.MustCompile(`(?:%[0-9A-Fa-f]{2}){2,}`)
	reSpaceRun    = regexp.MustCompile(`[ \t]{2,}`)
	reBlankedLine = regexp.MustCompile(`\n[ \t]+\n`)
)

// PrepareInput is the input-safety pass run before a document is sent out:
// URLs and runs of percent-encoded bytes are removed, and the result is cut
// to maxChars runes with TruncationMarker appended. maxChars <= 0 disables
// truncation.
func PrepareInput(document string, maxChars int) string {
	s := reURL.ReplaceAllString(document, "")
	s = rePctEncoded.ReplaceAllString(s, "")
	s = reSpaceRun.ReplaceAllString(s, " ")
	s = reBlankedLine.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if maxChars > 0 && utf8.RuneCountInString(s) > maxChars {
		runes := []rune(s)
		s = string(runes[:maxChars]) + TruncationMarker
	}
	return s
}
