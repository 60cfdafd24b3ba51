package callrouting

import (
	"context"
	"time"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/telephony"
)

// CallLogRepository persists terminal outcome records.
type CallLogRepository interface {
	// Append stores one outcome record.
	Append(ctx context.Context, entry *call.LogEntry) error
	// AttachRecording sets the recording URL on the caller's most recent
	// Voicemail record.
	AttachRecording(ctx context.Context, fromNumber, recordingURL string) error
}

// Notifier broadcasts routing-engine transitions to observers. Delivery
// is best-effort and must never block or gate a routing decision.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// MetricsCollector records routing metrics.
type MetricsCollector interface {
	RecordOutcome(outcome call.Outcome)
	RecordRoutingLatency(entryPoint string, latency time.Duration)
}

// Result is the product of one engine entry point: the outcome label (empty
// for non-terminal follow-up documents) and the response document handed to
// the transport. A Result is always produced, even on internal failure.
type Result struct {
	Outcome  call.Outcome
	Summary  string
	Response *telephony.Response
}

// Engine is the call-routing decision engine. Each method is one webhook
// entry point; the engine is stateless between callbacks and reconstructs
// continuity from the event parameters the provider echoes back.
type Engine interface {
	// HandleIncomingCall routes a fresh inbound call: blacklist check,
	// whitelist check, or screening.
	HandleIncomingCall(ctx context.Context, ev call.Event) *Result
	// HandleSpeechResult routes an unknown caller after the screening
	// gather returns their transcribed utterance.
	HandleSpeechResult(ctx context.Context, ev call.Event, speech string) *Result
	// HandleRecordingComplete closes out a voicemail recording.
	HandleRecordingComplete(ctx context.Context, ev call.Event, recordingURL string) *Result
	// HandleDialStatus reacts to the completion status of an outbound leg.
	HandleDialStatus(ctx context.Context, ev call.Event, dialStatus string) *Result
	// HandleWhisper produces the whisper-confirmation document for the
	// recipient of a direct-forwarded call.
	HandleWhisper(ctx context.Context, ev call.Event, contactName string) *Result
	// HandleScreenedWhisper produces the whisper-confirmation document
	// carrying a classification summary.
	HandleScreenedWhisper(ctx context.Context, ev call.Event, summary string) *Result
	// HandleAcceptanceDigit resolves the whisper-confirmation gather.
	HandleAcceptanceDigit(ctx context.Context, ev call.Event, digits string) *Result
	// HandleTCPAResponse resolves the compliance gather for a blacklisted
	// caller.
	HandleTCPAResponse(ctx context.Context, ev call.Event, digits string) *Result
}
