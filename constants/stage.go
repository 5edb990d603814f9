package constants

// Stage is the processing state of one email.
type Stage string

// Stable values (these exact strings are written to the ledger).
const (
	StageStart          Stage = "START"
	StageNormalized     Stage = "NORMALIZED"
	StageFirstExtracted Stage = "FIRST_EXTRACTED"
	StageScored         Stage = "SCORED"
	StageOCRDecision    Stage = "OCR_DECISION"
	StageOCRRun         Stage = "OCR_RUN"
	StageReExtracted    Stage = "RE_EXTRACTED"
	StageRescored       Stage = "RESCORED"
	StageDone           Stage = "DONE"   // terminal success
	StageFailed         Stage = "FAILED" // terminal failure (unreadable email)
)
