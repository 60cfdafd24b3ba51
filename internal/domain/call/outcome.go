package call

// Outcome is the label attached to a completed routing decision. Exactly
// one outcome is produced per call event; it drives both the response
// document and the notification payload.
type Outcome string

const (
	OutcomeWhitelisted Outcome = "Whitelisted"
	OutcomeBlacklisted Outcome = "Blacklisted"
	OutcomeScreening   Outcome = "Screening"
	OutcomeForwarded   Outcome = "Forwarded"
	OutcomeVoicemail   Outcome = "Voicemail"
	OutcomeRejected    Outcome = "Rejected"
	OutcomeTCPARemoval Outcome = "TCPA Removal"
	OutcomeError       Outcome = "Error"

	// Call-acceptance sub-flow labels for whisper-confirm dialing.
	OutcomeAccepted    Outcome = "Accepted"
	OutcomeNotAccepted Outcome = "NotAccepted"
)

// String returns the log label for the outcome.
func (o Outcome) String() string {
	return string(o)
}
