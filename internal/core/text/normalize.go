package text

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reWhitespace = regexp.MustCompile(`\s+`)
	// transport/technical header lines: "Received: ...", "X-Mailer: ..."
	reHeaderLine = regexp.MustCompile(`^(Received|X-[A-Za-z0-9-]+):`)
	reCapLine    = regexp.MustCompile(`^[A-Z]`)
)

// boilerplate openers, matched anywhere in a line. The block runs from the
// opener through the next blank line.
var reBoilerplate = regexp.MustCompile(`(?i)unsubscribe|the\s+information\s+contained\s+herein`)

// Normalize turns one parsed email into the analysis document. It also returns
// the image references harvested from the HTML body when that body was used.
// The same input always yields the same output.
func Normalize(raw *entity.RawEmailContent) (string, []entity.ImageRef) {
	if raw == nil {
		return "", nil
	}

	var (
		body   string
		images []entity.ImageRef
	)
	if strings.TrimSpace(raw.TextBody) != "" {
		body = raw.TextBody
	} else if strings.TrimSpace(raw.HTMLBody) != "" {
		body, images = FromHTML(raw.HTMLBody)
	}

	doc := Clean(body)
	if subject := strings.TrimSpace(raw.Subject); subject != "" {
		doc = "SUBJECT: " + subject + "\n\n" + doc
	}
	return doc, images
}

// Clean removes header, unsubscribe and disclaimer blocks, then collapses
// every whitespace run to a single space.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = stripBlocks(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type blockKind int

const (
	blockNone blockKind = iota
	blockHeader
	blockBoilerplate
)

// stripBlocks walks the lines once. Header blocks end at a blank line or at
// the next line starting with a capital letter; boilerplate blocks end at a
// blank line only.
func stripBlocks(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	state := blockNone

	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		switch state {
		case blockHeader:
			if blank {
				state = blockNone
			} else if reCapLine.MatchString(line) && !reHeaderLine.MatchString(line) {
				state = blockNone
			} else {
				continue
			}
		case blockBoilerplate:
			if !blank {
				continue
			}
			state = blockNone
		}

		if reHeaderLine.MatchString(line) {
			state = blockHeader
			continue
		}
		if idx := boilerplateIndex(line); idx >= 0 {
			if prefix := line[:idx]; strings.TrimSpace(prefix) != "" {
				out = append(out, prefix)
			}
			state = blockBoilerplate
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func boilerplateIndex(line string) int {
	if loc := reBoilerplate.FindStringIndex(line); loc != nil {
		return loc[0]
	}
	return -1
}
