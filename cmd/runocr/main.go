package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/core/ocr"
)

// runocr recognizes the given image or PDF files and prints one JSON result
// per file, in the same shape the scanner merges into documents.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage", "cmd", "runocr <image-or-pdf> [more files...]")
		os.Exit(2)
	}
	paths := os.Args[1:]

	_ = godotenv.Load()
	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	runner := ocr.ExecRunner{Logger: logger}
	recognizer := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.OCR.TesseractPath,
		Lang:        cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
	}, runner, logger)
	agg := ocr.NewAggregator(ocr.Config{
		TokenMinConfidence: cfg.OCR.TokenMinConfidence,
		Pdftoppm:           cfg.OCR.PdftoppmPath,
		ScratchDir:         cfg.OCR.ArtifactDir,
		FileTimeout:        cfg.OCR.Timeout,
	}, recognizer, runner, logger)

	start := time.Now()
	results := agg.Run(ctx, paths)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			logger.Error("encode result", "source", r.SourceRef, "error", err)
		}
	}

	logger.Info("text extraction done",
		"files", len(paths),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if failed == len(paths) {
		os.Exit(1)
	}
}
