package callrouting

import (
	"time"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
)

// NotificationType identifies a routing-engine transition pushed to
// dashboard observers.
type NotificationType string

const (
	NotifyIncoming         NotificationType = "call.incoming"
	NotifyWhitelisted      NotificationType = "call.whitelisted"
	NotifyBlacklisted      NotificationType = "call.blacklisted"
	NotifyScreening        NotificationType = "call.screening"
	NotifyAnalysisStarted  NotificationType = "call.analysis_started"
	NotifyAnalysisComplete NotificationType = "call.analysis_complete"
	NotifyRouted           NotificationType = "call.routed"
	NotifyAccepted         NotificationType = "call.accepted"
	NotifyNotAccepted      NotificationType = "call.not_accepted"
	NotifyTCPARemoval      NotificationType = "call.tcpa_removal"
	NotifyError            NotificationType = "call.error"
)

// Notification is one observable routing transition.
type Notification struct {
	Type        NotificationType `json:"type"`
	CallSID     string           `json:"call_sid"`
	From        string           `json:"from"`
	ContactName string           `json:"contact_name,omitempty"`
	Category    string           `json:"category,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Outcome     call.Outcome     `json:"outcome,omitempty"`
	Error       string           `json:"error,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}
