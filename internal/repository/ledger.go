package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// RunLedger records scan runs and their per-email results.
type RunLedger interface {
	StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error
	RecordResult(ctx context.Context, runID uuid.UUID, result entity.EmailProcessingResult) error
	FinishRun(ctx context.Context, runID uuid.UUID, stats entity.RunStats, finishedAt time.Time) error
	GetRun(ctx context.Context, runID uuid.UUID) (*RunRecord, error)
	ListResults(ctx context.Context, runID uuid.UUID) ([]ResultRecord, error)
}

type RunRecord struct {
	ID       uuid.UUID
	Finished bool
	Stats    entity.RunStats
}

type ResultRecord struct {
	ID            uuid.UUID
	SourceRef     string
	Success       bool
	OCRUsed       bool
	Stage         string
	QualityScore  float64
	CriticalScore float64
	Fields        entity.DealFields
	Error         string
}

type runLedger struct {
	db  *DB
	log *slog.Logger
}

func NewRunLedger(db *DB, log *slog.Logger) RunLedger {
	if log == nil {
		log = slog.Default()
	}
	return &runLedger{db: db, log: log}
}

func (r *runLedger) StartRun(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO scan_runs (id, started_at) VALUES ($1, $2)`),
		runID.String(), startedAt.UTC(),
	)
	if err != nil {
		r.log.Error("ledger.run.start_failed", "run_id", runID, "err", err)
		return common.LedgerError("start run", err)
	}
	r.log.Debug("ledger.run.started", "run_id", runID)
	return nil
}

func (r *runLedger) RecordResult(ctx context.Context, runID uuid.UUID, res entity.EmailProcessingResult) error {
	fields, err := json.Marshal(res.Fields)
	if err != nil {
		return common.NewAppError(common.CodeLedger, "encode fields", err)
	}
	processedAt := res.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	id := uuid.New()
	_, err = r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO email_results
			(id, run_id, source_ref, success, ocr_used, stage, quality_score, critical_score, fields_json, error, processed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`),
		id.String(), runID.String(), res.SourceRef, res.Success, res.OCRUsed, string(res.Stage),
		res.Quality.QualityScore, res.Quality.CriticalScore, string(fields), res.Error, processedAt.UTC(),
	)
	if err != nil {
		r.log.Error("ledger.result.insert_failed", "run_id", runID, "source", res.SourceRef, "err", err)
		return common.LedgerError("record result", err)
	}
	r.log.Debug("ledger.result.recorded", "run_id", runID, "result_id", id, "source", res.SourceRef)
	return nil
}

func (r *runLedger) FinishRun(ctx context.Context, runID uuid.UUID, stats entity.RunStats, finishedAt time.Time) error {
	out, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE scan_runs
			SET finished_at = $2, total_processed = $3, successful = $4, ocr_used = $5, errors = $6
			WHERE id = $1`),
		runID.String(), finishedAt.UTC(), stats.TotalProcessed, stats.Successful, stats.OCRUsed, stats.Errors,
	)
	if err != nil {
		r.log.Error("ledger.run.finish_failed", "run_id", runID, "err", err)
		return common.LedgerError("finish run", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError(common.CodeLedger, "finish run "+runID.String(), common.ErrNotFound)
	}
	r.log.Info("ledger.run.finished", "run_id", runID, "total", stats.TotalProcessed)
	return nil
}

func (r *runLedger) GetRun(ctx context.Context, runID uuid.UUID) (*RunRecord, error) {
	rec := &RunRecord{ID: runID}
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT finished_at IS NOT NULL, total_processed, successful, ocr_used, errors
			FROM scan_runs WHERE id = $1`),
		runID.String(),
	).Scan(&rec.Finished, &rec.Stats.TotalProcessed, &rec.Stats.Successful, &rec.Stats.OCRUsed, &rec.Stats.Errors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeLedger, "run "+runID.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.LedgerError("get run", err)
	}
	return rec, nil
}

// ListResults returns a run's results in the order they were recorded.
func (r *runLedger) ListResults(ctx context.Context, runID uuid.UUID) ([]ResultRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Rebind(`SELECT id, source_ref, success, ocr_used, stage, quality_score, critical_score, fields_json, error
			FROM email_results WHERE run_id = $1 ORDER BY processed_at, source_ref`),
		runID.String(),
	)
	if err != nil {
		return nil, common.LedgerError("list results", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ResultRecord
	for rows.Next() {
		var (
			rec    ResultRecord
			id     string
			fields string
		)
		if err := rows.Scan(&id, &rec.SourceRef, &rec.Success, &rec.OCRUsed, &rec.Stage,
			&rec.QualityScore, &rec.CriticalScore, &fields, &rec.Error); err != nil {
			return nil, common.LedgerError("scan result", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, common.NewAppError(common.CodeLedger, "result id", err)
		}
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, common.NewAppError(common.CodeLedger, "decode fields", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.LedgerError("list results", err)
	}
	return out, nil
}
