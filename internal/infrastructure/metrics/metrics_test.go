package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
)

func TestMetricsExposition(t *testing.T) {
	m := New(func() int { return 3 })

	m.RecordOutcome(call.OutcomeVoicemail)
	m.RecordOutcome(call.OutcomeVoicemail)
	m.RecordOutcome(call.OutcomeRejected)
	m.RecordRoutingLatency("HandleIncomingCall", 12*time.Millisecond)
	m.RecordHTTPRequest("/voice", "POST", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `callscreen_call_outcomes_total{outcome="Voicemail"} 2`)
	assert.Contains(t, body, `callscreen_call_outcomes_total{outcome="Rejected"} 1`)
	assert.Contains(t, body, `callscreen_routing_duration_seconds_count{entry_point="HandleIncomingCall"} 1`)
	assert.Contains(t, body, `callscreen_http_requests_total{method="POST",route="/voice",status="200"} 1`)
	assert.Contains(t, body, `callscreen_websocket_clients 3`)
}
