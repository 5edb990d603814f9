package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

func set(d *entity.DealFields, f constants.Field) {
	if f.Kind() == constants.KindNumber {
		d.SetNumber(f, entity.Some(1.0))
	} else {
		d.SetString(f, entity.Some("x"))
	}
}

func TestScore_Empty(t *testing.T) {
	a := Score(entity.DealFields{})
	assert.Equal(t, entity.QualityAssessment{TotalCount: 26, TotalCritical: 7}, a)
}

func TestScore_Full(t *testing.T) {
	var d entity.DealFields
	for _, f := range constants.AllFields() {
		set(&d, f)
	}
	a := Score(d)
	assert.Equal(t, 100.0, a.QualityScore)
	assert.Equal(t, 100.0, a.CriticalScore)
	assert.True(t, a.Sufficient)
}

func TestScore_SufficiencyBoundary(t *testing.T) {
	var d entity.DealFields
	for _, f := range constants.ScoringCriticalFields[:4] {
		set(&d, f)
	}
	a := Score(d)
	assert.InDelta(t, 57.14, a.CriticalScore, 0.01)
	assert.False(t, a.Sufficient)

	set(&d, constants.ScoringCriticalFields[4])
	a = Score(d)
	assert.InDelta(t, 71.43, a.CriticalScore, 0.01)
	assert.True(t, a.Sufficient)
	assert.InDelta(t, 100*5.0/26, a.QualityScore, 1e-9)
}

func TestScore_CapRateIsNotScoringCritical(t *testing.T) {
	var d entity.DealFields
	d.CapRate = entity.Some(5.0)
	a := Score(d)
	assert.Equal(t, 0, a.FilledCritical)
	assert.Equal(t, 1, a.FilledCount)
}

func TestScore_MonotonicInCriticalFields(t *testing.T) {
	var d entity.DealFields
	prev := Score(d).CriticalScore
	for _, f := range constants.ScoringCriticalFields {
		set(&d, f)
		next := Score(d).CriticalScore
		assert.GreaterOrEqual(t, next, prev, f)
		prev = next
	}
}
