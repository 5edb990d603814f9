package email

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// Parser reads a saved message. Errors wrap common.ErrParse.
type Parser interface {
	Parse(path string) (*entity.RawEmailContent, error)
}

// MIMEParser parses .eml files with enmime.
type MIMEParser struct {
	logger *slog.Logger
}

func NewMIMEParser(logger *slog.Logger) *MIMEParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &MIMEParser{logger: logger}
}

var _ Parser = (*MIMEParser)(nil)

// Parse keeps only what the message itself carries: text/plain parts as
// written (never text derived from HTML), HTML parts, and attachments or
// inline parts whose filename has an OCR-eligible extension.
func (p *MIMEParser) Parse(path string) (*entity.RawEmailContent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.ParseError("open "+filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	env, err := enmime.ReadEnvelope(bufio.NewReader(f))
	if err != nil {
		return nil, common.ParseError("read envelope "+filepath.Base(path), err)
	}
	if len(env.Errors) > 0 {
		p.logger.Debug("email.parse.warnings", "path", path, "count", len(env.Errors), "first", env.Errors[0].Error())
	}

	raw := &entity.RawEmailContent{
		Subject:  strings.TrimSpace(env.GetHeader("Subject")),
		TextBody: joinParts(env.Root, "text/plain"),
		HTMLBody: joinParts(env.Root, "text/html"),
	}

	for _, part := range append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...) {
		name := filepath.Base(strings.TrimSpace(part.FileName))
		if name == "." || name == "" || !constants.IsImageExt(filepath.Ext(name)) {
			continue
		}
		if len(part.Content) == 0 {
			continue
		}
		raw.Attachments = append(raw.Attachments, entity.Attachment{
			Filename:    name,
			ContentType: part.ContentType,
			Content:     part.Content,
		})
	}

	p.logger.Debug("email.parse.ok",
		"path", path,
		"subject", raw.Subject,
		"text_len", len(raw.TextBody),
		"html_len", len(raw.HTMLBody),
		"attachments", len(raw.Attachments),
	)
	return raw, nil
}

// joinParts concatenates every non-attachment part of the given type, in
// breadth-first order.
func joinParts(root *enmime.Part, contentType string) string {
	if root == nil {
		return ""
	}
	parts := root.BreadthMatchAll(func(p *enmime.Part) bool {
		return strings.EqualFold(p.ContentType, contentType) &&
			!strings.EqualFold(p.Disposition, "attachment")
	})
	var b strings.Builder
	for _, part := range parts {
		b.Write(part.Content)
	}
	return b.String()
}
