package ocr

import "context"

// Token is one recognized word and its confidence on a 0..100 scale.
type Token struct {
	Text       string
	Confidence float64
}

// Recognition is the raw recognizer output for one image.
type Recognition struct {
	Tokens []Token
}

// Recognizer reads the words in a single image file. Errors wrap
// common.ErrRecognizer.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (Recognition, error)
}

// Prober is implemented by recognizers that can report whether their
// backend is installed.
type Prober interface {
	Available(ctx context.Context) error
}
