package classifier

import (
	"context"

	"github.com/m5cents/call-screening-backend/internal/domain/classification"
)

// Classifier turns a transcribed caller utterance into a validated
// category and summary. Implementations never return an error: any
// failure is absorbed into the safe default result, because the caller
// is on hold waiting for the next routing instruction.
type Classifier interface {
	Classify(ctx context.Context, text string) classification.Result
}
