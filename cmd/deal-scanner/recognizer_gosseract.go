//go:build gosseract

package main

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/deal-scanner/internal/core/ocr"
)

var engines = []string{"tesseract", "gosseract"}

func newRecognizer(engine string, cfg ocr.TesseractConfig, runner ocr.Runner, logger *slog.Logger) (ocr.Recognizer, error) {
	switch engine {
	case "", "tesseract":
		return ocr.NewTesseract(cfg, runner, logger), nil
	case "gosseract":
		return ocr.NewGosseract(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown ocr engine %q", engine)
}
