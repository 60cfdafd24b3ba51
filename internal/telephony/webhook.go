package telephony

import (
	"net/http"
)

// WebhookForm captures the voice webhook fields the engine consumes. The
// provider posts application/x-www-form-urlencoded; unknown fields are
// ignored. Business logic is not made here.
type WebhookForm struct {
	CallSID        string
	AccountSID     string
	From           string
	To             string
	CallStatus     string
	Direction      string
	SpeechResult   string
	Digits         string
	RecordingURL   string
	DialCallStatus string
}

// ParseWebhookForm extracts the known fields from a provider callback.
func ParseWebhookForm(r *http.Request) (WebhookForm, error) {
	if err := r.ParseForm(); err != nil {
		return WebhookForm{}, err
	}
	return WebhookForm{
		CallSID:        r.PostFormValue("CallSid"),
		AccountSID:     r.PostFormValue("AccountSid"),
		From:           r.PostFormValue("From"),
		To:             r.PostFormValue("To"),
		CallStatus:     r.PostFormValue("CallStatus"),
		Direction:      r.PostFormValue("Direction"),
		SpeechResult:   r.PostFormValue("SpeechResult"),
		Digits:         r.PostFormValue("Digits"),
		RecordingURL:   r.PostFormValue("RecordingUrl"),
		DialCallStatus: r.PostFormValue("DialCallStatus"),
	}, nil
}
