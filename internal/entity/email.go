package entity

// RawEmailContent is what the parser pulls out of one .eml file. It is not
// modified after parsing.
type RawEmailContent struct {
	Subject     string       `json:"subject"`
	TextBody    string       `json:"text_body"`
	HTMLBody    string       `json:"html_body"`
	Images      []ImageRef   `json:"images"`
	Attachments []Attachment `json:"attachments"`
}

// ImageRef is an <img> element harvested from the HTML body.
type ImageRef struct {
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	Title string `json:"title,omitempty"`
}

// Attachment is an image-eligible attachment decoded from the message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// HasImages reports whether the email carries anything OCR could read.
func (r *RawEmailContent) HasImages() bool {
	return r != nil && (len(r.Images) > 0 || len(r.Attachments) > 0)
}
