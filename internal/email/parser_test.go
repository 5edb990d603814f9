package email

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
)

func writeEML(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(strings.ReplaceAll(body, "\n", "\r\n")), 0o644))
	return p
}

const multipartEML = `From: Broker <broker@example.com>
To: Analyst <analyst@example.com>
Subject: Offering: Mesa Industrial Park
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain; charset="utf-8"

Mesa Industrial Park, 120,000 SF, asking $18,500,000.

--inner
Content-Type: text/html; charset="utf-8"

<p>Mesa Industrial Park</p><img src="https://cdn.example.com/flyer.png">

--inner--

--outer
Content-Type: image/png
Content-Disposition: attachment; filename="site-plan.png"
Content-Transfer-Encoding: base64

iVBORw0KGgo=

--outer
Content-Type: application/vnd.ms-excel
Content-Disposition: attachment; filename="rent-roll.xls"
Content-Transfer-Encoding: base64

AAAA

--outer--
`

const htmlOnlyEML = `Subject: View with images
MIME-Version: 1.0
Content-Type: text/html; charset="utf-8"

<html><body><img src="http://img.example.com/a.jpg" alt="A"></body></html>
`

func TestMIMEParser_Multipart(t *testing.T) {
	raw, err := NewMIMEParser(nil).Parse(writeEML(t, "offer.eml", multipartEML))
	require.NoError(t, err)

	assert.Equal(t, "Offering: Mesa Industrial Park", raw.Subject)
	assert.Contains(t, raw.TextBody, "asking $18,500,000")
	assert.Contains(t, raw.HTMLBody, `<img src="https://cdn.example.com/flyer.png">`)
	require.Len(t, raw.Attachments, 1)
	assert.Equal(t, "site-plan.png", raw.Attachments[0].Filename)
	assert.Equal(t, "image/png", raw.Attachments[0].ContentType)
	assert.NotEmpty(t, raw.Attachments[0].Content)
	assert.Empty(t, raw.Images)
}

func TestMIMEParser_HTMLOnlyKeepsTextBlank(t *testing.T) {
	raw, err := NewMIMEParser(nil).Parse(writeEML(t, "html.eml", htmlOnlyEML))
	require.NoError(t, err)

	assert.Equal(t, "View with images", raw.Subject)
	assert.Equal(t, "", strings.TrimSpace(raw.TextBody))
	assert.Contains(t, raw.HTMLBody, "img.example.com/a.jpg")
}

func TestMIMEParser_MissingFile(t *testing.T) {
	_, err := NewMIMEParser(nil).Parse(filepath.Join(t.TempDir(), "nope.eml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParse)
}
