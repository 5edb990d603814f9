//go:build !gosseract

package main

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/deal-scanner/internal/core/ocr"
)

var engines = []string{"tesseract"}

func newRecognizer(engine string, cfg ocr.TesseractConfig, runner ocr.Runner, logger *slog.Logger) (ocr.Recognizer, error) {
	if engine != "" && engine != "tesseract" {
		return nil, fmt.Errorf("ocr engine %q needs a build with -tags gosseract", engine)
	}
	return ocr.NewTesseract(cfg, runner, logger), nil
}
