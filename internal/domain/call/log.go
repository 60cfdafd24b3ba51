package call

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one terminal outcome record. Every completed routing
// decision appends exactly one.
type LogEntry struct {
	ID           uuid.UUID `json:"id"`
	FromNumber   string    `json:"from_number"`
	Outcome      Outcome   `json:"status"`
	Summary      string    `json:"summary,omitempty"`
	RecordingURL *string   `json:"recording_url,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`
}

// NewLogEntry builds an outcome record for a caller number.
func NewLogEntry(fromNumber string, outcome Outcome, summary string) *LogEntry {
	return &LogEntry{
		ID:         uuid.New(),
		FromNumber: fromNumber,
		Outcome:    outcome,
		Summary:    summary,
		CreatedAt:  time.Now().UTC(),
	}
}
