package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/core/ocr"
	"github.com/joseph-ayodele/deal-scanner/internal/core/quality"
	"github.com/joseph-ayodele/deal-scanner/internal/core/text"
	"github.com/joseph-ayodele/deal-scanner/internal/email"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
	"github.com/joseph-ayodele/deal-scanner/internal/llm"
)

// OCRRunner recognizes a list of files, one result per path in order.
type OCRRunner interface {
	Run(ctx context.Context, paths []string) []entity.OCRResult
}

// AssetMaterializer writes an email's images and attachments to dir.
type AssetMaterializer interface {
	Materialize(ctx context.Context, images []entity.ImageRef, attachments []entity.Attachment, dir string) []string
}

var (
	_ OCRRunner         = (*ocr.Aggregator)(nil)
	_ AssetMaterializer = (*email.Materializer)(nil)
)

// ProcessorConfig tunes the second pass.
type ProcessorConfig struct {
	MergeMinConfidence float64 // default 20
}

// Processor runs one email through normalize, extract, score and the
// optional OCR pass.
type Processor struct {
	parser       email.Parser
	extractor    llm.FieldExtractor
	ocr          OCRRunner
	materializer AssetMaterializer
	cfg          ProcessorConfig
	logger       *slog.Logger
	now          func() time.Time
}

func NewProcessor(
	parser email.Parser,
	extractor llm.FieldExtractor,
	ocrRunner OCRRunner,
	materializer AssetMaterializer,
	cfg ProcessorConfig,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MergeMinConfidence <= 0 {
		cfg.MergeMinConfidence = ocr.DefaultMergeMinConfidence
	}
	return &Processor{
		parser:       parser,
		extractor:    extractor,
		ocr:          ocrRunner,
		materializer: materializer,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessEmail never returns an error: only a parse failure marks the result
// unsuccessful, every later failure degrades into absent fields or skipped
// images. Downloaded images land in a per-email directory under workDir.
func (p *Processor) ProcessEmail(ctx context.Context, path, workDir string) entity.EmailProcessingResult {
	ctx = common.WithSourceRef(ctx, path)
	log := common.LoggerFrom(ctx, p.logger)

	res := entity.EmailProcessingResult{SourceRef: path, Stage: constants.StageStart}
	start := p.now()
	advance := func(s constants.Stage, attrs ...any) {
		res.Stage = s
		log.Debug("processor.stage", append([]any{"stage", string(s)}, attrs...)...)
	}

	raw, err := p.parser.Parse(path)
	if err != nil {
		res.Stage = constants.StageFailed
		res.Error = err.Error()
		res.ProcessedAt = p.now()
		log.Error("processor.parse.failed", "error", err)
		return res
	}

	document, harvested := text.Normalize(raw)
	images := append(append([]entity.ImageRef{}, raw.Images...), harvested...)
	advance(constants.StageNormalized, "doc_len", len(document), "images", len(images), "attachments", len(raw.Attachments))

	res.Fields = p.extract(ctx, document)
	advance(constants.StageFirstExtracted, "filled", res.Fields.CountPresent(constants.AllFields()))

	res.Quality = quality.Score(res.Fields)
	advance(constants.StageScored,
		"quality_score", res.Quality.QualityScore,
		"critical_score", res.Quality.CriticalScore,
		"sufficient", res.Quality.Sufficient,
	)

	decision := ocr.ShouldOCR(document, res.Fields)
	hasImages := countEligible(images, raw.Attachments) > 0
	advance(constants.StageOCRDecision)
	log.Info("processor.ocr.decision",
		"trigger", decision.Trigger,
		"reasons", strings.Join(decision.Reasons, ","),
		"filled_critical", decision.FilledCritical,
		"total_critical", decision.TotalCritical,
		"text_length", decision.TextLength,
		"has_images", hasImages,
	)

	if decision.Trigger && hasImages && p.ocr != nil && p.materializer != nil {
		res.OCRUsed = true
		advance(constants.StageOCRRun)

		dir := filepath.Join(workDir, "images_"+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		files := p.materializer.Materialize(ctx, images, raw.Attachments, dir)
		if len(files) == 0 {
			log.Warn("processor.ocr.no_files", "dir", dir)
		} else {
			results := p.ocr.Run(ctx, files)
			merged := ocr.MergeAbove(document, results, p.cfg.MergeMinConfidence)
			log.Info("processor.ocr.merged",
				"files", len(files),
				"recognized", countRecognized(results),
				"doc_len", len(document),
				"merged_len", len(merged),
			)

			res.Fields = p.extract(ctx, merged)
			advance(constants.StageReExtracted, "filled", res.Fields.CountPresent(constants.AllFields()))

			res.Quality = quality.Score(res.Fields)
			advance(constants.StageRescored,
				"quality_score", res.Quality.QualityScore,
				"critical_score", res.Quality.CriticalScore,
			)
		}
	}

	res.Success = true
	res.Stage = constants.StageDone
	res.ProcessedAt = p.now()
	log.Info("processor.email.done",
		"quality_score", res.Quality.QualityScore,
		"critical_score", res.Quality.CriticalScore,
		"ocr_used", res.OCRUsed,
		"duration_ms", res.ProcessedAt.Sub(start).Milliseconds(),
	)
	return res
}

func (p *Processor) extract(ctx context.Context, document string) entity.DealFields {
	if p.extractor == nil {
		return entity.DealFields{}
	}
	return p.extractor.Extract(ctx, document)
}

// countEligible counts remote image refs and image-typed attachments, the
// only assets the materializer can turn into files.
func countEligible(images []entity.ImageRef, attachments []entity.Attachment) int {
	n := 0
	for _, img := range images {
		if email.IsFetchable(img.URL) {
			n++
		}
	}
	for _, att := range attachments {
		if constants.IsImageExt(filepath.Ext(att.Filename)) {
			n++
		}
	}
	return n
}

func countRecognized(results []entity.OCRResult) int {
	n := 0
	for _, r := range results {
		if !r.Failed() && r.Text != "" {
			n++
		}
	}
	return n
}
