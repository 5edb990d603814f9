package ocr

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// Error markers carried on failed OCR results.
const (
	ErrMsgFileNotFound    = "File not found"
	ErrMsgUnsupported     = "Unsupported file type"
	ErrMsgNotAvailable    = "OCR not available"
	ErrMsgNoPagesRendered = "PDF could not be rasterized"
)

// DefaultTokenMinConfidence is the confidence a token must exceed to be kept.
const DefaultTokenMinConfidence = 30.0

type Config struct {
	TokenMinConfidence float64       // default 30
	Pdftoppm           string        // binary name or absolute path; if empty -> "pdftoppm"
	DPI                int           // rasterization DPI for PDFs, default 300
	MaxPages           int           // 0 = no limit
	SkipPreprocess     bool
	ScratchDir         string        // parent for per-file scratch dirs; "" = os.TempDir
	FileTimeout        time.Duration // 0 = no per-file deadline
}

// Aggregator runs recognition over a list of files, one at a time.
type Aggregator struct {
	cfg        Config
	recognizer Recognizer
	runner     Runner
	logger     *slog.Logger

	probed   bool
	probeErr error
}

func NewAggregator(cfg Config, recognizer Recognizer, runner Runner, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.TokenMinConfidence <= 0 {
		cfg.TokenMinConfidence = DefaultTokenMinConfidence
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Aggregator{cfg: cfg, recognizer: recognizer, runner: runner, logger: logger}
}

// Run recognizes every path in order. The result slice always has one entry
// per path; a failed file yields empty text, an absent confidence and an
// error marker.
func (a *Aggregator) Run(ctx context.Context, paths []string) []entity.OCRResult {
	results := make([]entity.OCRResult, 0, len(paths))
	for i, p := range paths {
		start := time.Now()
		res := a.processFile(ctx, p)
		if res.Failed() {
			a.logger.Warn("ocr.file.failed", "index", i+1, "path", p, "error", res.Error)
		} else {
			a.logger.Info("ocr.file.done",
				"index", i+1,
				"path", p,
				"words", res.WordCount,
				"confidence", res.Confidence.OrElse(0),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
		results = append(results, res)
	}
	return results
}

func (a *Aggregator) processFile(ctx context.Context, path string) entity.OCRResult {
	res := entity.OCRResult{SourceRef: path}
	if a.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.FileTimeout)
		defer cancel()
	}

	if _, err := os.Stat(path); err != nil {
		res.Error = ErrMsgFileNotFound
		return res
	}
	ext := filepath.Ext(path)
	if !constants.IsImageExt(ext) {
		res.Error = ErrMsgUnsupported
		return res
	}
	if a.recognizer == nil || a.available(ctx) != nil {
		res.Error = ErrMsgNotAvailable
		return res
	}

	scratch, err := os.MkdirTemp(a.cfg.ScratchDir, "ocr-*")
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Warn("ocr.scratch.cleanup_failed", "dir", dir, "error", err)
		}
	}(scratch)

	images := []string{path}
	if constants.IsPDFExt(ext) {
		pages, err := a.rasterizePDF(ctx, path, scratch)
		if err != nil {
			a.logger.Warn("ocr.pdf.rasterize_failed", "path", path, "error", err)
			res.Error = ErrMsgNoPagesRendered
			return res
		}
		images = pages
	}

	var (
		tokens   []Token
		failures []string
	)
	for _, img := range images {
		rec, err := a.recognizer.Recognize(ctx, a.prepare(img, scratch))
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		tokens = append(tokens, rec.Tokens...)
	}
	if len(failures) == len(images) {
		res.Error = failures[0]
		return res
	}

	text, conf, kept := Pool(tokens, a.cfg.TokenMinConfidence)
	res.Text = text
	res.Confidence = entity.Some(conf)
	res.WordCount = kept
	return res
}

// prepare returns the preprocessed copy of img, or img itself when
// preprocessing is off or fails.
func (a *Aggregator) prepare(img, scratch string) string {
	if a.cfg.SkipPreprocess {
		return img
	}
	out, err := Preprocess(img, scratch)
	if err != nil {
		a.logger.Debug("ocr.preprocess.fallback", "path", img, "error", err)
		return img
	}
	return out
}

func (a *Aggregator) available(ctx context.Context) error {
	if a.probed {
		return a.probeErr
	}
	a.probed = true
	if p, ok := a.recognizer.(Prober); ok {
		a.probeErr = p.Available(ctx)
	}
	if a.probeErr != nil {
		a.logger.Warn("ocr.unavailable", "error", a.probeErr)
	}
	return a.probeErr
}

// Pool keeps tokens above floor with non-blank text. It returns their
// space-joined text, the mean of their confidences (0 if none) and how many
// were kept.
func Pool(tokens []Token, floor float64) (string, float64, int) {
	var (
		words []string
		sum   float64
	)
	for _, t := range tokens {
		w := strings.TrimSpace(t.Text)
		if t.Confidence <= floor || w == "" {
			continue
		}
		words = append(words, w)
		sum += t.Confidence
	}
	if len(words) == 0 {
		return "", 0, 0
	}
	return strings.Join(words, " "), sum / float64(len(words)), len(words)
}
