package callrouting

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/domain/classification"
	"github.com/m5cents/call-screening-backend/internal/service/classifier"
	"github.com/m5cents/call-screening-backend/internal/service/lookup"
	"github.com/m5cents/call-screening-backend/internal/telephony"
)

// Config carries the routing targets the engine forwards calls to.
type Config struct {
	// DestinationNumber is the owner's real line, in +1XXXXXXXXXX form.
	DestinationNumber string
}

type engine struct {
	lookup   lookup.Service
	callLogs CallLogRepository
	clf      classifier.Classifier
	notifier Notifier
	metrics  MetricsCollector
	config   Config
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewEngine builds the routing engine. notifier and metrics may be nil.
func NewEngine(
	lookupSvc lookup.Service,
	callLogs CallLogRepository,
	clf classifier.Classifier,
	notifier Notifier,
	metrics MetricsCollector,
	config Config,
	logger *slog.Logger,
) Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &engine{
		lookup:   lookupSvc,
		callLogs: callLogs,
		clf:      clf,
		notifier: notifier,
		metrics:  metrics,
		config:   config,
		logger:   logger,
		tracer:   otel.Tracer("callrouting"),
	}
}

func (e *engine) HandleIncomingCall(ctx context.Context, ev call.Event) (res *Result) {
	ctx, span, done := e.begin(ctx, "HandleIncomingCall", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	e.notify(ctx, Notification{Type: NotifyIncoming, CallSID: ev.CallSID, From: ev.From.String()})

	// Blacklist takes precedence over everything, including the whitelist.
	blocked, err := e.lookup.FindBlacklistMatch(ctx, ev.From)
	if err != nil {
		// Fail open: an unreadable blacklist must not take the line down.
		e.logger.ErrorContext(ctx, "blacklist lookup failed, treating caller as unlisted",
			"call_sid", ev.CallSID, "error", err)
	}
	if blocked != nil {
		span.SetAttributes(attribute.String("routing.decision", "blacklisted"))
		summary := "Blocked number"
		if blocked.Reason != "" {
			summary = fmt.Sprintf("Blocked number (%s)", blocked.Reason)
		}
		e.notify(ctx, Notification{
			Type: NotifyBlacklisted, CallSID: ev.CallSID, From: ev.From.String(),
			Summary: summary, Outcome: call.OutcomeBlacklisted,
		})
		return e.finish(ctx, ev, call.OutcomeBlacklisted, summary, telephony.TCPACompliance())
	}

	contact, err := e.lookup.FindContactMatch(ctx, ev.From)
	if err != nil {
		e.logger.ErrorContext(ctx, "contact lookup failed, treating caller as unknown",
			"call_sid", ev.CallSID, "error", err)
	}
	if contact != nil {
		span.SetAttributes(attribute.String("routing.decision", "whitelisted"))
		summary := fmt.Sprintf("Direct call from %s", contact.Name)
		e.notify(ctx, Notification{
			Type: NotifyWhitelisted, CallSID: ev.CallSID, From: ev.From.String(),
			ContactName: contact.Name, Outcome: call.OutcomeWhitelisted,
		})
		doc := telephony.DirectForwarding(contact.Name, e.config.DestinationNumber, whisperURL(contact.Name))
		return e.finish(ctx, ev, call.OutcomeWhitelisted, summary, doc)
	}

	// Unknown caller: engage the screening gather. Screening is recorded so
	// abandoned calls still leave a trace; a later callback supersedes it.
	span.SetAttributes(attribute.String("routing.decision", "screening"))
	e.notify(ctx, Notification{Type: NotifyScreening, CallSID: ev.CallSID, From: ev.From.String()})
	return e.finish(ctx, ev, call.OutcomeScreening, "Screening unknown caller", telephony.AIGreeting())
}

func (e *engine) HandleSpeechResult(ctx context.Context, ev call.Event, speech string) (res *Result) {
	ctx, span, done := e.begin(ctx, "HandleSpeechResult", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	if strings.TrimSpace(speech) == "" {
		span.SetAttributes(attribute.String("routing.decision", "no_speech"))
		e.notify(ctx, Notification{
			Type: NotifyRouted, CallSID: ev.CallSID, From: ev.From.String(),
			Summary: "No speech detected", Outcome: call.OutcomeRejected,
		})
		return e.finish(ctx, ev, call.OutcomeRejected, "No speech detected", telephony.Rejection())
	}

	e.notify(ctx, Notification{Type: NotifyAnalysisStarted, CallSID: ev.CallSID, From: ev.From.String()})

	result := e.clf.Classify(ctx, speech)
	span.SetAttributes(attribute.String("classification.category", string(result.Category)))

	e.notify(ctx, Notification{
		Type: NotifyAnalysisComplete, CallSID: ev.CallSID, From: ev.From.String(),
		Category: string(result.Category), Summary: result.Summary,
	})

	outcome, doc := e.route(result)
	e.notify(ctx, Notification{
		Type: NotifyRouted, CallSID: ev.CallSID, From: ev.From.String(),
		Category: string(result.Category), Summary: result.Summary, Outcome: outcome,
	})
	return e.finish(ctx, ev, outcome, result.Summary, doc)
}

// route maps a classification to a terminal outcome and response document.
// Any category outside the known set is rejected.
func (e *engine) route(result classification.Result) (call.Outcome, *telephony.Response) {
	switch result.Category {
	case classification.CategoryUrgent, classification.CategorySales:
		doc := telephony.ScreenedForwarding(result.Summary, e.config.DestinationNumber, screenedWhisperURL(result.Summary))
		return call.OutcomeForwarded, doc
	case classification.CategorySupport, classification.CategoryPersonal:
		return call.OutcomeVoicemail, telephony.Voicemail()
	case classification.CategorySpam:
		return call.OutcomeRejected, telephony.Rejection()
	default:
		return call.OutcomeRejected, telephony.Rejection()
	}
}

func (e *engine) HandleRecordingComplete(ctx context.Context, ev call.Event, recordingURL string) (res *Result) {
	ctx, _, done := e.begin(ctx, "HandleRecordingComplete", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	if recordingURL != "" {
		if err := e.callLogs.AttachRecording(ctx, ev.From.String(), recordingURL); err != nil {
			// The caller already left their message; losing the link is a
			// data gap, not a routing failure.
			e.logger.ErrorContext(ctx, "failed to attach recording to call log",
				"call_sid", ev.CallSID, "error", err)
		}
	}
	return &Result{Response: telephony.RecordingComplete()}
}

func (e *engine) HandleDialStatus(ctx context.Context, ev call.Event, dialStatus string) (res *Result) {
	ctx, span, done := e.begin(ctx, "HandleDialStatus", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	span.SetAttributes(attribute.String("dial.status", dialStatus))
	switch dialStatus {
	case "completed", "answered":
		return &Result{Response: telephony.HangupOnly()}
	default:
		e.logger.WarnContext(ctx, "outbound leg did not complete",
			"call_sid", ev.CallSID, "dial_status", dialStatus)
		return &Result{Response: telephony.DialStatusFailure()}
	}
}

func (e *engine) HandleWhisper(ctx context.Context, ev call.Event, contactName string) (res *Result) {
	_, _, done := e.begin(ctx, "HandleWhisper", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	return &Result{Response: telephony.WhisperConfirm(contactName)}
}

func (e *engine) HandleScreenedWhisper(ctx context.Context, ev call.Event, summary string) (res *Result) {
	_, _, done := e.begin(ctx, "HandleScreenedWhisper", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	return &Result{Response: telephony.ScreenedWhisperConfirm(summary)}
}

func (e *engine) HandleAcceptanceDigit(ctx context.Context, ev call.Event, digits string) (res *Result) {
	ctx, span, done := e.begin(ctx, "HandleAcceptanceDigit", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	if digits != "" {
		span.SetAttributes(attribute.String("routing.decision", "accepted"))
		e.notify(ctx, Notification{
			Type: NotifyAccepted, CallSID: ev.CallSID, From: ev.From.String(),
			Outcome: call.OutcomeAccepted,
		})
		return e.finish(ctx, ev, call.OutcomeAccepted, "Recipient accepted the call", telephony.CallAccepted())
	}

	span.SetAttributes(attribute.String("routing.decision", "not_accepted"))
	e.notify(ctx, Notification{
		Type: NotifyNotAccepted, CallSID: ev.CallSID, From: ev.From.String(),
		Outcome: call.OutcomeNotAccepted,
	})
	return e.finish(ctx, ev, call.OutcomeNotAccepted, "Recipient declined the call", telephony.WhisperDeclined())
}

func (e *engine) HandleTCPAResponse(ctx context.Context, ev call.Event, digits string) (res *Result) {
	ctx, span, done := e.begin(ctx, "HandleTCPAResponse", ev)
	defer done()
	defer e.recoverTo(ctx, ev, &res)

	if digits == "1" {
		span.SetAttributes(attribute.String("routing.decision", "tcpa_removal"))
		e.notify(ctx, Notification{
			Type: NotifyTCPARemoval, CallSID: ev.CallSID, From: ev.From.String(),
			Outcome: call.OutcomeTCPARemoval,
		})
		doc := telephony.TCPARemovalInstructions()
		return e.finish(ctx, ev, call.OutcomeTCPARemoval, "Caller requested do-not-call removal", doc)
	}
	return &Result{Response: telephony.HangupOnly()}
}

// finish records the terminal outcome and assembles the result. A failed
// append degrades to the error path: the caller hears the rejection message
// and the failure is surfaced to observers instead of silently losing the
// record.
func (e *engine) finish(ctx context.Context, ev call.Event, outcome call.Outcome, summary string, doc *telephony.Response) *Result {
	entry := call.NewLogEntry(ev.From.String(), outcome, summary)
	if err := e.callLogs.Append(ctx, entry); err != nil {
		return e.fail(ctx, ev, fmt.Errorf("append call log: %w", err))
	}
	if e.metrics != nil {
		e.metrics.RecordOutcome(outcome)
	}
	return &Result{Outcome: outcome, Summary: summary, Response: doc}
}

// fail is the engine's internal-failure boundary: log, notify, best-effort
// record an Error outcome, and answer with the rejection document so the
// provider always receives a valid response.
func (e *engine) fail(ctx context.Context, ev call.Event, err error) *Result {
	e.logger.ErrorContext(ctx, "routing failed", "call_sid", ev.CallSID, "error", err)
	e.notify(ctx, Notification{
		Type: NotifyError, CallSID: ev.CallSID, From: ev.From.String(),
		Outcome: call.OutcomeError, Error: err.Error(),
	})
	entry := call.NewLogEntry(ev.From.String(), call.OutcomeError, err.Error())
	if logErr := e.callLogs.Append(ctx, entry); logErr != nil {
		e.logger.ErrorContext(ctx, "failed to record error outcome",
			"call_sid", ev.CallSID, "error", logErr)
	}
	if e.metrics != nil {
		e.metrics.RecordOutcome(call.OutcomeError)
	}
	return &Result{Outcome: call.OutcomeError, Summary: err.Error(), Response: telephony.Rejection()}
}

// recoverTo converts a panic in an entry point into the error path, keeping
// the webhook contract intact.
func (e *engine) recoverTo(ctx context.Context, ev call.Event, res **Result) {
	if r := recover(); r != nil {
		*res = e.fail(ctx, ev, fmt.Errorf("routing panic: %v", r))
	}
}

func (e *engine) begin(ctx context.Context, entryPoint string, ev call.Event) (context.Context, trace.Span, func()) {
	ctx, span := e.tracer.Start(ctx, "callrouting."+entryPoint,
		trace.WithAttributes(
			attribute.String("call.sid", ev.CallSID),
		))
	start := time.Now()
	return ctx, span, func() {
		if e.metrics != nil {
			e.metrics.RecordRoutingLatency(entryPoint, time.Since(start))
		}
		span.End()
	}
}

func (e *engine) notify(ctx context.Context, n Notification) {
	if e.notifier == nil {
		return
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	e.notifier.Notify(ctx, n)
}

func whisperURL(contactName string) string {
	return telephony.PathWhisper + "?" + url.Values{"name": {contactName}}.Encode()
}

func screenedWhisperURL(summary string) string {
	return telephony.PathWhisperAI + "?" + url.Values{"summary": {summary}}.Encode()
}
