package text

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// block-level elements that end a line of text
var lineBreakers = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Tr: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Table: true, atom.Blockquote: true, atom.Hr: true,
}

// FromHTML strips markup from an HTML body and collects every <img> with a
// non-empty src, in document order. Script and style content is dropped.
func FromHTML(body string) (string, []entity.ImageRef) {
	z := html.NewTokenizer(strings.NewReader(body))
	var (
		sb     strings.Builder
		images []entity.ImageRef
		skip   int
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what we have
			return sb.String(), images
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					skip++
				}
			case atom.Img:
				if ref, ok := imageRef(tok); ok {
					images = append(images, ref)
				}
			}
			if lineBreakers[tok.DataAtom] {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			}
			if lineBreakers[tok.DataAtom] {
				sb.WriteByte('\n')
			}
		}
	}
}

func imageRef(tok html.Token) (entity.ImageRef, bool) {
	var ref entity.ImageRef
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "src":
			ref.URL = strings.TrimSpace(a.Val)
		case "alt":
			ref.Alt = a.Val
		case "title":
			ref.Title = a.Val
		}
	}
	return ref, ref.URL != ""
}
