package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// DefaultMaxInputChars bounds the document embedded in a prompt.
const DefaultMaxInputChars = 30000

type ExtractorConfig struct {
	MaxInputChars int // default 30000
}

// Extractor implements FieldExtractor on top of an Inferer.
type Extractor struct {
	inferer        Inferer
	cfg            ExtractorConfig
	logger         *slog.Logger
	responseSchema map[string]any
	dealSchema     map[string]any
}

// NewExtractor builds an Extractor. A nil inferer is allowed: every
// extraction then returns all-absent fields.
func NewExtractor(inferer Inferer, cfg ExtractorConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	return &Extractor{
		inferer:        inferer,
		cfg:            cfg,
		logger:         logger,
		responseSchema: BuildResponseJSONSchema(),
		dealSchema:     BuildDealJSONSchema(),
	}
}

var _ FieldExtractor = (*Extractor)(nil)

func (e *Extractor) Extract(ctx context.Context, document string) entity.DealFields {
	rid := uuid.New().String()
	start := time.Now()

	if e.inferer == nil {
		e.logger.Warn("llm.extract.no_client", "req_id", rid)
		return entity.DealFields{}
	}

	input := PrepareInput(document, e.cfg.MaxInputChars)
	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"doc_len", len(document),
		"input_len", len(input),
	)

	raw, err := e.inferer.Infer(ctx, BuildExtractionPrompt(input))
	if err != nil {
		e.logger.Error("llm.extract.infer_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.DealFields{}
	}

	obj, repaired, err := ParseResponse(raw)
	if err != nil {
		e.logger.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err, "raw", truncate(raw, 2048),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.DealFields{}
	}
	if repaired {
		e.logger.Warn("llm.extract.repaired", "req_id", rid)
	}

	if err := ValidateValue(e.responseSchema, obj); err != nil {
		e.logger.Warn("llm.extract.schema_drift", "req_id", rid, "error", err)
	}

	fields, dropped := Coerce(obj)
	if len(dropped) > 0 {
		e.logger.Warn("llm.extract.normalize_sanitize", "req_id", rid, "dropped", dropped)
	}
	if err := e.checkOutput(fields); err != nil {
		e.logger.Error("llm.extract.output_invalid", "req_id", rid, "error", err)
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"filled", fields.CountPresent(constants.AllFields()),
		"deal_name", fields.DealName.OrElse(""),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields
}

func (e *Extractor) checkOutput(fields entity.DealFields) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return ValidateJSONAgainstSchema(e.dealSchema, b)
}
