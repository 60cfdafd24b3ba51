package telephony

import "fmt"

// Callback paths the documents reference. The webhook router must mount
// its handlers on the same paths.
const (
	PathGather      = "/handle-gather"
	PathRecording   = "/handle-recording"
	PathDialStatus  = "/handle-dial-status"
	PathWhisper     = "/whisper"
	PathWhisperAI   = "/whisper-screened"
	PathAcceptance  = "/handle-acceptance"
	PathTCPADigit   = "/tcpa-response"
)

// Gather timeouts in seconds. Whisper confirmation sits inside the
// 10-15s window the provider allows before the dial attempt is abandoned.
const (
	speechGatherTimeout   = 10
	whisperConfirmTimeout = 12
	tcpaGatherTimeout     = 15
	voicemailMaxLength    = 60
)

// Fixed caller-audible messages. The rejection text doubles as the
// universal fallback spoken on any internal failure.
const (
	msgGreeting          = "Hello. What can I help you with today?"
	msgNoSpeech          = "Sorry, I did not hear you. Please try calling back."
	msgRejection         = "Sorry, I cannot take your call right now. Please try again later. Goodbye."
	msgVoicemailPrompt   = "Please leave a message after the tone. Press pound when finished."
	msgVoicemailFallback = "Thank you for calling."
	msgRecordingDone     = "Thank you for your message. I will get back to you soon. Goodbye."
	msgCallAccepted      = "Connecting you now."
	msgWhisperDecline    = "No response received. The call will not be connected. Goodbye."
	msgDialFailure       = "The call could not be completed at this time. Please try again later. Goodbye."
	msgTCPANotice        = "This number is registered on a do not call list. To request removal from the calling list, press 1 now. Otherwise the call will end."
	msgTCPAFallback      = "No selection received. Goodbye."
	msgTCPARemoval       = "Your removal request has been recorded. This number will be removed from the calling list within thirty days as required by the Telephone Consumer Protection Act. Goodbye."
)

// DirectForwarding connects a whitelisted caller to the destination line.
// The recipient leg first hears the whisper-confirmation document served
// from whisperURL; dial completion posts to the dial-status path.
func DirectForwarding(contactName, destination, whisperURL string) *Response {
	whisper := "Direct call from whitelisted contact"
	if contactName != "" {
		whisper = fmt.Sprintf("Direct call from %s", contactName)
	}

	r := &Response{}
	return r.add(
		say(whisper),
		Dial{
			Action: PathDialStatus,
			Method: "POST",
			Number: &DialNumber{URL: whisperURL, Method: "POST", Text: destination},
		},
	)
}

// AIGreeting prompts an unknown caller to state their purpose and directs
// the transcript to the speech-gather path. If the provider's gather times
// out the caller hears the fallback message and the call ends.
func AIGreeting() *Response {
	r := &Response{}
	return r.add(
		say(msgGreeting),
		Gather{
			Input:         "speech",
			SpeechTimeout: "auto",
			Timeout:       speechGatherTimeout,
			Action:        PathGather,
			Method:        "POST",
		},
		say(msgNoSpeech),
		Pause{Length: 2},
		Hangup{},
	)
}

// ScreenedForwarding connects a screened caller to the destination line,
// whispering the classification summary to the recipient first.
func ScreenedForwarding(summary, destination, whisperURL string) *Response {
	r := &Response{}
	return r.add(
		say(fmt.Sprintf("Screened call about: %s", summary)),
		Dial{
			Action: PathDialStatus,
			Method: "POST",
			Number: &DialNumber{URL: whisperURL, Method: "POST", Text: destination},
		},
	)
}

// Voicemail records a message of up to sixty seconds, terminated by pound,
// with trailing silence trimmed.
func Voicemail() *Response {
	r := &Response{}
	return r.add(
		say(msgVoicemailPrompt),
		Record{
			Action:      PathRecording,
			Method:      "POST",
			MaxLength:   voicemailMaxLength,
			FinishOnKey: "#",
			PlayBeep:    "true",
			Trim:        "trim-silence",
		},
		say(msgVoicemailFallback),
	)
}

// Rejection speaks the apologetic message and hangs up. This is also the
// universal fallback document for internal failures.
func Rejection() *Response {
	r := &Response{}
	return r.add(say(msgRejection), Hangup{})
}

// RecordingComplete closes out a voicemail.
func RecordingComplete() *Response {
	r := &Response{}
	return r.add(say(msgRecordingDone), Hangup{})
}

// WhisperConfirm is played to the call recipient before bridging a
// whitelisted caller: one key press within the timeout accepts the call.
func WhisperConfirm(contactName string) *Response {
	prompt := "Direct call from whitelisted contact. Press any key to accept."
	if contactName != "" {
		prompt = fmt.Sprintf("Direct call from %s. Press any key to accept.", contactName)
	}
	return whisperGather(prompt)
}

// ScreenedWhisperConfirm is the whisper for screened forwarding, carrying
// the classification summary.
func ScreenedWhisperConfirm(summary string) *Response {
	prompt := "Screened call. Press any key to accept."
	if summary != "" {
		prompt = fmt.Sprintf("Screened call about: %s. Press any key to accept.", summary)
	}
	return whisperGather(prompt)
}

func whisperGather(prompt string) *Response {
	r := &Response{}
	return r.add(
		Gather{
			Input:     "dtmf",
			NumDigits: 1,
			Timeout:   whisperConfirmTimeout,
			Action:    PathAcceptance,
			Method:    "POST",
			Verbs:     []any{say(prompt)},
		},
		say(msgWhisperDecline),
		Hangup{},
	)
}

// CallAccepted confirms acceptance to the recipient; the call continues.
func CallAccepted() *Response {
	r := &Response{}
	return r.add(say(msgCallAccepted))
}

// WhisperDeclined ends the recipient leg after a confirmation timeout.
func WhisperDeclined() *Response {
	r := &Response{}
	return r.add(say(msgWhisperDecline), Hangup{})
}

// DialStatusFailure tells the caller an outbound leg could not complete.
func DialStatusFailure() *Response {
	r := &Response{}
	return r.add(say(msgDialFailure), Hangup{})
}

// TCPACompliance speaks the required notice to a blacklisted caller and
// gathers a single digit for the removal-request sub-flow.
func TCPACompliance() *Response {
	r := &Response{}
	return r.add(
		Gather{
			Input:     "dtmf",
			NumDigits: 1,
			Timeout:   tcpaGatherTimeout,
			Action:    PathTCPADigit,
			Method:    "POST",
			Verbs:     []any{say(msgTCPANotice)},
		},
		say(msgTCPAFallback),
		Hangup{},
	)
}

// TCPARemovalInstructions confirms a removal request.
func TCPARemovalInstructions() *Response {
	r := &Response{}
	return r.add(say(msgTCPARemoval), Hangup{})
}

// HangupOnly terminates the call without speaking.
func HangupOnly() *Response {
	r := &Response{}
	return r.add(Hangup{})
}
