package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/core/quality"
	"github.com/joseph-ayodele/deal-scanner/internal/core/text"
	"github.com/joseph-ayodele/deal-scanner/internal/email"
	"github.com/joseph-ayodele/deal-scanner/internal/llm"
	"github.com/joseph-ayodele/deal-scanner/internal/llm/openai"
)

// llm runs field extraction several times over one email (or a plain text
// document) to eyeball how stable the model's answers are.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llm <file.eml|file.txt> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	document, err := loadDocument(path, logger)
	if err != nil {
		logger.Error("load document", "path", path, "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	extractor := llm.NewExtractor(client, llm.ExtractorConfig{MaxInputChars: cfg.LLM.MaxInputChars}, logger)

	// --- Loop N times on the same document
	base := filepath.Base(path)
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		logger.Info("extract.run.start", "iter", i, "basename", base, "doc_len", len(document))

		fields := extractor.Extract(runCtx, document)
		cancelRun()

		q := quality.Score(fields)
		logger.Info("extract.run.done",
			"iter", i,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"filled", q.FilledCount,
			"quality_score", q.QualityScore,
			"critical_score", q.CriticalScore,
			"deal_name", fields.String(constants.DealName).OrElse(""),
			"pricing_guidance", fields.Number(constants.PricingGuidance).OrElse(0),
		)

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "path", path, "times", times, "model", client.Model())
}

// loadDocument normalizes an .eml the way the scanner does and reads any
// other file as the document itself.
func loadDocument(path string, logger *slog.Logger) (string, error) {
	if constants.NormalizeExt(filepath.Ext(path)) == constants.EmailExtension {
		raw, err := email.NewMIMEParser(logger).Parse(path)
		if err != nil {
			return "", err
		}
		doc, _ := text.Normalize(raw)
		return doc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
