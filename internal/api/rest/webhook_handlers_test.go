package rest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
	"github.com/m5cents/call-screening-backend/internal/telephony"
)

// stubEngine records the entry point invoked and returns a canned result.
type stubEngine struct {
	lastEntry  string
	lastEvent  call.Event
	lastSpeech string
	lastDigits string
	lastExtra  string
	result     *callrouting.Result
}

func newStubEngine(doc *telephony.Response) *stubEngine {
	return &stubEngine{result: &callrouting.Result{Response: doc}}
}

func (s *stubEngine) HandleIncomingCall(_ context.Context, ev call.Event) *callrouting.Result {
	s.lastEntry, s.lastEvent = "incoming", ev
	return s.result
}

func (s *stubEngine) HandleSpeechResult(_ context.Context, ev call.Event, speech string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastSpeech = "speech", ev, speech
	return s.result
}

func (s *stubEngine) HandleRecordingComplete(_ context.Context, ev call.Event, recordingURL string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastExtra = "recording", ev, recordingURL
	return s.result
}

func (s *stubEngine) HandleDialStatus(_ context.Context, ev call.Event, dialStatus string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastExtra = "dial_status", ev, dialStatus
	return s.result
}

func (s *stubEngine) HandleWhisper(_ context.Context, ev call.Event, contactName string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastExtra = "whisper", ev, contactName
	return s.result
}

func (s *stubEngine) HandleScreenedWhisper(_ context.Context, ev call.Event, summary string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastExtra = "screened_whisper", ev, summary
	return s.result
}

func (s *stubEngine) HandleAcceptanceDigit(_ context.Context, ev call.Event, digits string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastDigits = "acceptance", ev, digits
	return s.result
}

func (s *stubEngine) HandleTCPAResponse(_ context.Context, ev call.Event, digits string) *callrouting.Result {
	s.lastEntry, s.lastEvent, s.lastDigits = "tcpa", ev, digits
	return s.result
}

func newWebhookMux(engine callrouting.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	NewWebhookHandler(engine, slog.New(slog.DiscardHandler)).Register(mux)
	return mux
}

func postForm(t *testing.T, mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func baseForm() url.Values {
	return url.Values{
		"CallSid": {"CA1234567890abcdef"},
		"From":    {"+12125551234"},
		"To":      {"+15559876543"},
	}
}

func TestWebhookVoice(t *testing.T) {
	engine := newStubEngine(telephony.AIGreeting())
	mux := newWebhookMux(engine)

	rec := postForm(t, mux, "/voice", baseForm())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Gather")
	assert.Equal(t, "incoming", engine.lastEntry)
	assert.Equal(t, "CA1234567890abcdef", engine.lastEvent.CallSID)
	assert.Equal(t, "+12125551234", engine.lastEvent.From.String())
}

func TestWebhookGatherPassesSpeech(t *testing.T) {
	engine := newStubEngine(telephony.Voicemail())
	mux := newWebhookMux(engine)

	form := baseForm()
	form.Set("SpeechResult", "I need help with my account")
	rec := postForm(t, mux, telephony.PathGather, form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "speech", engine.lastEntry)
	assert.Equal(t, "I need help with my account", engine.lastSpeech)
}

func TestWebhookRecordingPassesURL(t *testing.T) {
	engine := newStubEngine(telephony.RecordingComplete())
	mux := newWebhookMux(engine)

	form := baseForm()
	form.Set("RecordingUrl", "https://api.example.com/recordings/RE1")
	rec := postForm(t, mux, telephony.PathRecording, form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recording", engine.lastEntry)
	assert.Equal(t, "https://api.example.com/recordings/RE1", engine.lastExtra)
}

func TestWebhookDialStatus(t *testing.T) {
	engine := newStubEngine(telephony.HangupOnly())
	mux := newWebhookMux(engine)

	form := baseForm()
	form.Set("DialCallStatus", "no-answer")
	rec := postForm(t, mux, telephony.PathDialStatus, form)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dial_status", engine.lastEntry)
	assert.Equal(t, "no-answer", engine.lastExtra)
}

func TestWebhookWhisperReadsQueryParams(t *testing.T) {
	engine := newStubEngine(telephony.WhisperConfirm("Alice"))
	mux := newWebhookMux(engine)

	rec := postForm(t, mux, telephony.PathWhisper+"?name=Alice+Smith", baseForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "whisper", engine.lastEntry)
	assert.Equal(t, "Alice Smith", engine.lastExtra)

	rec = postForm(t, mux, telephony.PathWhisperAI+"?summary=needs+a+plumber", baseForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "screened_whisper", engine.lastEntry)
	assert.Equal(t, "needs a plumber", engine.lastExtra)
}

func TestWebhookAcceptanceAndTCPADigits(t *testing.T) {
	engine := newStubEngine(telephony.CallAccepted())
	mux := newWebhookMux(engine)

	form := baseForm()
	form.Set("Digits", "1")
	rec := postForm(t, mux, telephony.PathAcceptance, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acceptance", engine.lastEntry)
	assert.Equal(t, "1", engine.lastDigits)

	rec = postForm(t, mux, telephony.PathTCPADigit, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tcpa", engine.lastEntry)
}

func TestWebhookUnparseableCallerSpeaksRejection(t *testing.T) {
	engine := newStubEngine(telephony.AIGreeting())
	mux := newWebhookMux(engine)

	form := baseForm()
	form.Set("From", "anonymous")
	rec := postForm(t, mux, "/voice", form)

	// Still 200 with a spoken rejection: the provider must never see an
	// HTTP error for a live call.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot take your call")
	assert.Empty(t, engine.lastEntry)
}
