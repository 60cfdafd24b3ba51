// Package telephony holds the provider-facing response document model and
// the scenario builders that produce one document per routing decision.
//
// A Response is an ordered sequence of voice instructions. The builders are
// pure: deterministic for a given input, no side effects, and total for
// well-formed input. Serialization to TwiML happens at the transport edge
// via Render.
package telephony

import (
	"bytes"
	"encoding/xml"
)

// Voice settings applied to every spoken instruction.
const (
	VoiceName = "Polly.Matthew-Neural"
	VoiceLang = "en-US"
)

// Response is the declarative document returned to the telephony provider.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

// Say speaks text to the party on the line.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Gather collects speech or DTMF input and posts the result to Action.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	NumDigits     int      `xml:"numDigits,attr,omitempty"`
	Action        string   `xml:"action,attr,omitempty"`
	Method        string   `xml:"method,attr,omitempty"`
	Verbs         []any    `xml:",any"`
}

// Record captures a voicemail message and posts completion to Action.
type Record struct {
	XMLName     xml.Name `xml:"Record"`
	Action      string   `xml:"action,attr,omitempty"`
	Method      string   `xml:"method,attr,omitempty"`
	MaxLength   int      `xml:"maxLength,attr,omitempty"`
	FinishOnKey string   `xml:"finishOnKey,attr,omitempty"`
	PlayBeep    string   `xml:"playBeep,attr,omitempty"`
	Trim        string   `xml:"trim,attr,omitempty"`
}

// Dial bridges the call to a destination leg.
type Dial struct {
	XMLName  xml.Name    `xml:"Dial"`
	Action   string      `xml:"action,attr,omitempty"`
	Method   string      `xml:"method,attr,omitempty"`
	Timeout  int         `xml:"timeout,attr,omitempty"`
	CallerID string      `xml:"callerId,attr,omitempty"`
	Number   *DialNumber `xml:"Number,omitempty"`
}

// DialNumber is the dialed destination. URL points at the whisper
// document played to the recipient before the legs are bridged.
type DialNumber struct {
	URL    string `xml:"url,attr,omitempty"`
	Method string `xml:"method,attr,omitempty"`
	Text   string `xml:",chardata"`
}

// Pause waits silently for Length seconds.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func (r *Response) add(verbs ...any) *Response {
	r.Verbs = append(r.Verbs, verbs...)
	return r
}

func say(text string) Say {
	return Say{Voice: VoiceName, Language: VoiceLang, Text: text}
}

// Render serializes the document as TwiML.
func (r *Response) Render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
