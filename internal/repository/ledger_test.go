package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: filepath.Join(t.TempDir(), "ledger.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, DialectPostgres, DialectFor("postgres://u:p@localhost:5432/deals"))
	assert.Equal(t, DialectPostgres, DialectFor("PostgreSQL://localhost/deals"))
	assert.Equal(t, DialectSQLite, DialectFor("./ledger.db"))
	assert.Equal(t, DialectSQLite, DialectFor(":memory:"))
}

func TestRebind(t *testing.T) {
	sqlite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "UPDATE t SET a = ?2 WHERE id = ?1 AND c = '$x'", sqlite.Rebind("UPDATE t SET a = $2 WHERE id = $1 AND c = '$x'"))
	assert.Equal(t, "VALUES (?10, ?11)", sqlite.Rebind("VALUES ($10, $11)"))

	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "SELECT $1", pg.Rebind("SELECT $1"))
}

func TestRunLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.HealthCheck(ctx, time.Second))
	ledger := NewRunLedger(db, nil)

	runID := uuid.New()
	start := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.StartRun(ctx, runID, start))

	var fields entity.DealFields
	fields.SetString(constants.DealName, entity.Some("Neptune Logistics Center"))
	fields.SetNumber(constants.CapRate, entity.Some(5.25))

	first := entity.EmailProcessingResult{
		SourceRef:   "a.eml",
		Success:     true,
		OCRUsed:     true,
		Fields:      fields,
		Quality:     entity.QualityAssessment{QualityScore: 7.69, CriticalScore: 14.29},
		Stage:       constants.StageDone,
		ProcessedAt: start.Add(time.Second),
	}
	second := entity.EmailProcessingResult{
		SourceRef:   "b.eml",
		Stage:       constants.StageFailed,
		Error:       "parse email: unexpected EOF",
		ProcessedAt: start.Add(2 * time.Second),
	}
	require.NoError(t, ledger.RecordResult(ctx, runID, first))
	require.NoError(t, ledger.RecordResult(ctx, runID, second))

	run, err := ledger.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.False(t, run.Finished)

	stats := entity.RunStats{TotalProcessed: 2, Successful: 1, OCRUsed: 1, Errors: 1}
	require.NoError(t, ledger.FinishRun(ctx, runID, stats, start.Add(time.Minute)))

	run, err = ledger.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.True(t, run.Finished)
	assert.Equal(t, stats, run.Stats)

	recs, err := ledger.ListResults(ctx, runID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.eml", recs[0].SourceRef)
	assert.True(t, recs[0].Success)
	assert.True(t, recs[0].OCRUsed)
	assert.Equal(t, "DONE", recs[0].Stage)
	assert.InDelta(t, 7.69, recs[0].QualityScore, 1e-9)
	name, ok := recs[0].Fields.String(constants.DealName).Get()
	require.True(t, ok)
	assert.Equal(t, "Neptune Logistics Center", name)
	assert.False(t, recs[0].Fields.Present(constants.City))

	assert.False(t, recs[1].Success)
	assert.Equal(t, "parse email: unexpected EOF", recs[1].Error)
	assert.True(t, recs[1].Fields.AllAbsent())
}

func TestRunLedger_Errors(t *testing.T) {
	ctx := context.Background()
	ledger := NewRunLedger(openTestDB(t), nil)

	_, err := ledger.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = ledger.FinishRun(ctx, uuid.New(), entity.RunStats{}, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)

	// foreign key: results need a started run
	err = ledger.RecordResult(ctx, uuid.New(), entity.EmailProcessingResult{SourceRef: "x.eml"})
	assert.ErrorIs(t, err, common.ErrDatabase)

	runID := uuid.New()
	require.NoError(t, ledger.StartRun(ctx, runID, time.Now()))
	err = ledger.StartRun(ctx, runID, time.Now())
	assert.ErrorIs(t, err, common.ErrDatabase)
}
