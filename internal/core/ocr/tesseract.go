package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
)

// TesseractConfig configures the tesseract CLI recognizer.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // default 6, a uniform block of text
	OEM         int // default 3, engine default
}

// Tesseract recognizes images by shelling out to tesseract in TSV mode.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.OEM <= 0 {
		cfg.OEM = 3
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

// Available runs `tesseract --version`.
func (t *Tesseract) Available(ctx context.Context) error {
	if _, errb, err := t.runner.Run(ctx, t.cfg.Binary, "--version"); err != nil {
		return common.RecognizerError("tesseract not available", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb))))
	}
	return nil
}

// Recognize runs `tesseract <img> stdout --oem N --psm N -l <lang> tsv`.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (Recognition, error) {
	args := []string{
		imagePath, "stdout",
		"--oem", strconv.Itoa(t.cfg.OEM),
		"--psm", strconv.Itoa(t.cfg.PSM),
		"-l", t.cfg.Lang,
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		return Recognition{}, common.RecognizerError("tesseract", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(errb))))
	}
	tokens, err := ParseTSV(string(out))
	if err != nil {
		return Recognition{}, common.RecognizerError("tesseract tsv", err)
	}
	t.logger.Debug("ocr.tesseract.done", "path", imagePath, "tokens", len(tokens))
	return Recognition{Tokens: tokens}, nil
}

// ParseTSV reads word-level rows from tesseract TSV output. Rows without a
// confidence (-1, layout rows) are skipped.
func ParseTSV(out string) ([]Token, error) {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}

	confCol, textCol := -1, -1
	for i, h := range strings.Split(lines[0], "\t") {
		switch strings.TrimSpace(h) {
		case "conf":
			confCol = i
		case "text":
			textCol = i
		}
	}
	if confCol < 0 || textCol < 0 {
		return nil, fmt.Errorf("tsv header missing conf/text columns: %q", lines[0])
	}

	var tokens []Token
	for _, ln := range lines[1:] {
		if ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) <= confCol {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[confCol]), 64)
		if err != nil || conf < 0 {
			continue
		}
		var word string
		if textCol < len(cols) {
			word = cols[textCol]
		}
		tokens = append(tokens, Token{Text: word, Confidence: conf})
	}
	return tokens, nil
}
