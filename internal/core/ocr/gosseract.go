//go:build gosseract

package ocr

import (
	"context"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
)

// Gosseract recognizes images in-process through libtesseract. Built only
// with -tags gosseract since it needs the C library at link time.
type Gosseract struct {
	cfg    TesseractConfig
	logger *slog.Logger
}

func NewGosseract(cfg TesseractConfig, logger *slog.Logger) *Gosseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Gosseract{cfg: cfg, logger: logger}
}

func (g *Gosseract) Available(context.Context) error {
	if gosseract.Version() == "" {
		return common.RecognizerError("libtesseract not available", nil)
	}
	return nil
}

func (g *Gosseract) Recognize(ctx context.Context, imagePath string) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, common.RecognizerError("gosseract", err)
	}
	client := gosseract.NewClient()
	defer client.Close()

	if g.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return Recognition{}, common.RecognizerError("gosseract tessdata", err)
		}
	}
	if err := client.SetLanguage(g.cfg.Lang); err != nil {
		return Recognition{}, common.RecognizerError("gosseract language", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return Recognition{}, common.RecognizerError("gosseract psm", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return Recognition{}, common.RecognizerError("gosseract image", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Recognition{}, common.RecognizerError("gosseract", err)
	}
	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, Token{Text: b.Word, Confidence: b.Confidence})
	}
	g.logger.Debug("ocr.gosseract.done", "path", imagePath, "tokens", len(tokens))
	return Recognition{Tokens: tokens}, nil
}
