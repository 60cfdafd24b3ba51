package rest

import (
	"log/slog"
	"net/http"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
	"github.com/m5cents/call-screening-backend/internal/telephony"
)

// WebhookHandler serves the telephony provider's callbacks. Every handler
// answers 200 with a response document, whatever happens inside: the caller
// is live on the line and a 4xx/5xx would play the provider's generic error
// message instead of ours.
type WebhookHandler struct {
	engine callrouting.Engine
	logger *slog.Logger
}

// NewWebhookHandler creates the webhook handler set.
func NewWebhookHandler(engine callrouting.Engine, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{engine: engine, logger: logger}
}

// Register mounts the webhook routes on mux.
func (h *WebhookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /voice", h.handleVoice)
	mux.HandleFunc("POST "+telephony.PathGather, h.handleGather)
	mux.HandleFunc("POST "+telephony.PathRecording, h.handleRecording)
	mux.HandleFunc("POST "+telephony.PathDialStatus, h.handleDialStatus)
	mux.HandleFunc("POST "+telephony.PathWhisper, h.handleWhisper)
	mux.HandleFunc("POST "+telephony.PathWhisperAI, h.handleScreenedWhisper)
	mux.HandleFunc("POST "+telephony.PathAcceptance, h.handleAcceptance)
	mux.HandleFunc("POST "+telephony.PathTCPADigit, h.handleTCPAResponse)
}

func (h *WebhookHandler) handleVoice(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.parseEvent(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleIncomingCall(r.Context(), ev))
}

func (h *WebhookHandler) handleGather(w http.ResponseWriter, r *http.Request) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	ev, ok := h.eventFromForm(w, r, form)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleSpeechResult(r.Context(), ev, form.SpeechResult))
}

func (h *WebhookHandler) handleRecording(w http.ResponseWriter, r *http.Request) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	ev, ok := h.eventFromForm(w, r, form)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleRecordingComplete(r.Context(), ev, form.RecordingURL))
}

func (h *WebhookHandler) handleDialStatus(w http.ResponseWriter, r *http.Request) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	ev, ok := h.eventFromForm(w, r, form)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleDialStatus(r.Context(), ev, form.DialCallStatus))
}

func (h *WebhookHandler) handleWhisper(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.parseEvent(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	h.respond(w, r, h.engine.HandleWhisper(r.Context(), ev, name))
}

func (h *WebhookHandler) handleScreenedWhisper(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.parseEvent(w, r)
	if !ok {
		return
	}
	summary := r.URL.Query().Get("summary")
	h.respond(w, r, h.engine.HandleScreenedWhisper(r.Context(), ev, summary))
}

func (h *WebhookHandler) handleAcceptance(w http.ResponseWriter, r *http.Request) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	ev, ok := h.eventFromForm(w, r, form)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleAcceptanceDigit(r.Context(), ev, form.Digits))
}

func (h *WebhookHandler) handleTCPAResponse(w http.ResponseWriter, r *http.Request) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	ev, ok := h.eventFromForm(w, r, form)
	if !ok {
		return
	}
	h.respond(w, r, h.engine.HandleTCPAResponse(r.Context(), ev, form.Digits))
}

func (h *WebhookHandler) parseEvent(w http.ResponseWriter, r *http.Request) (call.Event, bool) {
	form, err := telephony.ParseWebhookForm(r)
	if err != nil {
		h.respondFallback(w, r, err)
		return call.Event{}, false
	}
	return h.eventFromForm(w, r, form)
}

func (h *WebhookHandler) eventFromForm(w http.ResponseWriter, r *http.Request, form telephony.WebhookForm) (call.Event, bool) {
	ev, err := call.NewEvent(form.From, form.CallSID)
	if err != nil {
		h.respondFallback(w, r, err)
		return call.Event{}, false
	}
	return ev, true
}

func (h *WebhookHandler) respond(w http.ResponseWriter, r *http.Request, result *callrouting.Result) {
	xml, err := result.Response.Render()
	if err != nil {
		h.respondFallback(w, r, err)
		return
	}
	writeTwiML(w, xml)
}

// respondFallback answers with the rejection document when the request
// itself cannot be processed.
func (h *WebhookHandler) respondFallback(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "webhook request unprocessable, speaking rejection",
		"path", r.URL.Path, "error", err)
	xml, renderErr := telephony.Rejection().Render()
	if renderErr != nil {
		// Rejection is a static document; this cannot happen at runtime.
		writeTwiML(w, `<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`)
		return
	}
	writeTwiML(w, xml)
}
