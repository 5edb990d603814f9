package quality

import (
	"github.com/joseph-ayodele/deal-scanner/constants"
	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// SufficientCriticalScore is the critical-field score at which an extraction
// is considered usable.
const SufficientCriticalScore = 60.0

// Score measures how complete an extraction is. quality is the share of all
// fields present, critical the share of constants.ScoringCriticalFields.
func Score(fields entity.DealFields) entity.QualityAssessment {
	all := constants.AllFields()
	a := entity.QualityAssessment{
		FilledCount:    fields.CountPresent(all),
		TotalCount:     len(all),
		FilledCritical: fields.CountPresent(constants.ScoringCriticalFields),
		TotalCritical:  len(constants.ScoringCriticalFields),
	}
	a.QualityScore = percent(a.FilledCount, a.TotalCount)
	a.CriticalScore = percent(a.FilledCritical, a.TotalCritical)
	a.Sufficient = a.CriticalScore >= SufficientCriticalScore
	return a
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
