package llm

import (
	"context"

	"github.com/joseph-ayodele/deal-scanner/internal/entity"
)

// Inferer sends one prompt to a language model and returns its raw text
// answer. Errors wrap common.ErrInference.
type Inferer interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// FieldExtractor is the interface the processor depends on. It never fails:
// any inference or parsing problem yields all-absent fields.
type FieldExtractor interface {
	Extract(ctx context.Context, document string) entity.DealFields
}
