package core

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// EmailProcessor is the per-email unit the Runner drives.
type EmailProcessor interface {
	ProcessEmail(ctx context.Context, path, workDir string) entity.EmailProcessingResult
}

// Ledger persists finalized results. A nil Ledger disables persistence.
type Ledger interface {
	StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	RecordResult(ctx context.Context, runID uuid.UUID, result entity.EmailProcessingResult) error
	FinishRun(ctx context.Context, runID uuid.UUID, stats entity.RunStats, finishedAt time.Time) error
}

var _ EmailProcessor = (*Processor)(nil)

// Report is everything a run produced, in input order.
type Report struct {
	RunID      uuid.UUID
	Results    []entity.EmailProcessingResult
	Stats      entity.RunStats
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner processes a batch of emails sequentially and owns the run's
// scratch directory.
type Runner struct {
	processor EmailProcessor
	ledger    Ledger
	tempRoot  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner builds a Runner. tempRoot is the parent of the run's scratch
// directory; "" means os.TempDir.
func NewRunner(processor EmailProcessor, ledger Ledger, tempRoot string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		processor: processor,
		ledger:    ledger,
		tempRoot:  tempRoot,
		logger:    logger,
		now:       time.Now,
	}
}

// Run processes paths in order. Stats are updated once per email after its
// result is final. Ledger failures are logged and never stop the run, and
// ledger writes for finished emails outlive a cancelled ctx. The
// only error returned is failure to create the scratch directory.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{RunID: uuid.New(), StartedAt: r.now()}
	ctx = common.WithRunID(ctx, report.RunID.String())
	log := common.LoggerFrom(ctx, r.logger)

	workDir, err := os.MkdirTemp(r.tempRoot, "deal-scanner-*")
	if err != nil {
		return nil, common.NewAppError(common.CodeInput, "create run directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("run.cleanup.failed", "dir", workDir, "error", err)
		}
	}()

	log.Info("run.start", "emails", len(paths), "work_dir", workDir)
	if r.ledger != nil {
		if err := r.ledger.StartRun(ctx, report.RunID, report.StartedAt); err != nil {
			log.Error("run.ledger.start_failed", "error", err)
		}
	}

	report.Results = make([]entity.EmailProcessingResult, 0, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			log.Warn("run.cancelled", "processed", i, "remaining", len(paths)-i, "error", err)
			break
		}
		log.Info("run.email.start", "index", i+1, "of", len(paths), "path", p)

		res := r.processor.ProcessEmail(ctx, p, workDir)
		report.Results = append(report.Results, res)
		report.Stats.Record(res)

		if r.ledger != nil {
			if err := r.ledger.RecordResult(context.WithoutCancel(ctx), report.RunID, res); err != nil {
				log.Error("run.ledger.record_failed", "path", p, "error", err)
			}
		}
	}

	report.FinishedAt = r.now()
	if r.ledger != nil {
		if err := r.ledger.FinishRun(context.WithoutCancel(ctx), report.RunID, report.Stats, report.FinishedAt); err != nil {
			log.Error("run.ledger.finish_failed", "error", err)
		}
	}

	log.Info("run.stats",
		"total", report.Stats.TotalProcessed,
		"successful", report.Stats.Successful,
		"success_rate", report.Stats.SuccessRate(),
		"ocr_used", report.Stats.OCRUsed,
		"errors", report.Stats.Errors,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	return report, nil
}
