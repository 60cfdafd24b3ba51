package call

import (
	"time"

	"github.com/m5cents/call-screening-backend/internal/domain/errors"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// Event is one inbound webhook callback for a call. Events are ephemeral:
// the engine holds no session state between callbacks, so every event
// carries the full context the provider echoes back.
type Event struct {
	From       values.PhoneNumber
	CallSID    string
	OccurredAt time.Time
}

// NewEvent builds an Event from the raw caller number the provider posted.
func NewEvent(fromNumber, callSID string) (Event, error) {
	from, err := values.NewPhoneNumber(fromNumber)
	if err != nil {
		return Event{}, errors.NewValidationError("INVALID_CALLER_NUMBER", "caller number is not parseable").WithCause(err)
	}

	return Event{
		From:       from,
		CallSID:    callSID,
		OccurredAt: time.Now().UTC(),
	}, nil
}
