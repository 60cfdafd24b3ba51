package callrouting

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/domain/classification"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindBlacklistMatch(ctx context.Context, number values.PhoneNumber) (*blocklist.Entry, error) {
	args := m.Called(ctx, number)
	if entry := args.Get(0); entry != nil {
		return entry.(*blocklist.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLookup) FindContactMatch(ctx context.Context, number values.PhoneNumber) (*contact.Contact, error) {
	args := m.Called(ctx, number)
	if c := args.Get(0); c != nil {
		return c.(*contact.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCallLogRepository struct {
	mock.Mock
}

func (m *mockCallLogRepository) Append(ctx context.Context, entry *call.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockCallLogRepository) AttachRecording(ctx context.Context, fromNumber, recordingURL string) error {
	args := m.Called(ctx, fromNumber, recordingURL)
	return args.Error(0)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, text string) classification.Result {
	args := m.Called(ctx, text)
	return args.Get(0).(classification.Result)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordOutcome(outcome call.Outcome) {
	m.Called(outcome)
}

func (m *mockMetrics) RecordRoutingLatency(entryPoint string, latency time.Duration) {
	m.Called(entryPoint, latency)
}

// notificationRecorder captures notifications in order so tests can assert
// on the transition sequence.
type notificationRecorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *notificationRecorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *notificationRecorder) types() []NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NotificationType, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Type
	}
	return out
}
