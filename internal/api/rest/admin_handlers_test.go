package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/call"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/repository"
)

type mockContactStore struct{ mock.Mock }

func (m *mockContactStore) List(ctx context.Context) ([]*contact.Contact, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*contact.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactStore) GetByID(ctx context.Context, id uuid.UUID) (*contact.Contact, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*contact.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockContactStore) Create(ctx context.Context, c *contact.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockContactStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockBlocklistStore struct{ mock.Mock }

func (m *mockBlocklistStore) List(ctx context.Context) ([]*blocklist.Entry, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*blocklist.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlocklistStore) GetByID(ctx context.Context, id uuid.UUID) (*blocklist.Entry, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*blocklist.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlocklistStore) Create(ctx context.Context, e *blocklist.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockBlocklistStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockCallLogStore struct{ mock.Mock }

func (m *mockCallLogStore) List(ctx context.Context, limit, offset int) ([]*call.LogEntry, error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*call.LogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCallLogStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCallLogStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type recordingInvalidator struct{ calls int }

func (r *recordingInvalidator) Invalidate(context.Context) { r.calls++ }

type adminFixture struct {
	contacts  *mockContactStore
	blocklist *mockBlocklistStore
	callLogs  *mockCallLogStore
	cache     *recordingInvalidator
	mux       *http.ServeMux
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		contacts:  &mockContactStore{},
		blocklist: &mockBlocklistStore{},
		callLogs:  &mockCallLogStore{},
		cache:     &recordingInvalidator{},
	}
	h := NewAdminHandler(f.contacts, f.blocklist, f.callLogs, f.cache, slog.New(slog.DiscardHandler))
	f.mux = http.NewServeMux()
	h.Register(f.mux)
	return f
}

func (f *adminFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateContact(t *testing.T) {
	f := newAdminFixture(t)
	f.contacts.On("Create", mock.Anything, mock.MatchedBy(func(c *contact.Contact) bool {
		return c.Name == "Alice Smith" && c.Number.String() == "+12125551234"
	})).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/contacts", map[string]string{
		"name":         "Alice Smith",
		"phone_number": "(212) 555-1234",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	// Stored numbers are normalized, whatever format the dashboard sent.
	assert.Contains(t, rec.Body.String(), "+12125551234")
	assert.Equal(t, 1, f.cache.calls)
	f.contacts.AssertExpectations(t)
}

func TestCreateContactValidation(t *testing.T) {
	f := newAdminFixture(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"phone_number": "+12125551234"}},
		{"missing number", map[string]string{"name": "Alice"}},
		{"unparseable number", map[string]string{"name": "Alice", "phone_number": "no digits"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/contacts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	f.contacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateContactDuplicate(t *testing.T) {
	f := newAdminFixture(t)
	f.contacts.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateKey)

	rec := f.do(t, http.MethodPost, "/api/v1/contacts", map[string]string{
		"name":         "Alice",
		"phone_number": "+12125551234",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, f.cache.calls)
}

func TestListContactsEmptyIsArray(t *testing.T) {
	f := newAdminFixture(t)
	f.contacts.On("List", mock.Anything).Return(nil, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestDeleteContact(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.New()
	f.contacts.On("Delete", mock.Anything, id).Return(nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/contacts/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.cache.calls)
}

func TestDeleteContactNotFound(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.New()
	f.contacts.On("Delete", mock.Anything, id).Return(repository.ErrNotFound)

	rec := f.do(t, http.MethodDelete, "/api/v1/contacts/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteContactBadID(t *testing.T) {
	f := newAdminFixture(t)
	rec := f.do(t, http.MethodDelete, "/api/v1/contacts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBlocklistEntry(t *testing.T) {
	f := newAdminFixture(t)
	f.blocklist.On("Create", mock.Anything, mock.MatchedBy(func(e *blocklist.Entry) bool {
		return e.PatternType == blocklist.PatternAreaCode && e.PhoneNumber == "900"
	})).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/blacklist", map[string]string{
		"phone_number": "900",
		"reason":       "Premium rate scams",
		"pattern_type": "area_code",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.cache.calls)
	f.blocklist.AssertExpectations(t)
}

func TestCreateBlocklistEntryDefaultsToExact(t *testing.T) {
	f := newAdminFixture(t)
	f.blocklist.On("Create", mock.Anything, mock.MatchedBy(func(e *blocklist.Entry) bool {
		return e.PatternType == blocklist.PatternExact && e.PhoneNumber == "+12125551234"
	})).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/blacklist", map[string]string{
		"phone_number": "212-555-1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBlocklistEntryRejectsUnknownPattern(t *testing.T) {
	f := newAdminFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/blacklist", map[string]string{
		"phone_number": "+12125551234",
		"pattern_type": "regex",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.blocklist.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListCallLogs(t *testing.T) {
	f := newAdminFixture(t)
	entries := []*call.LogEntry{
		call.NewLogEntry("+12125551234", call.OutcomeVoicemail, "left a message"),
	}
	f.callLogs.On("List", mock.Anything, 50, 0).Return(entries, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/calls", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Voicemail")
}

func TestListCallLogsPagination(t *testing.T) {
	f := newAdminFixture(t)
	f.callLogs.On("List", mock.Anything, 10, 20).Return(nil, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/calls?limit=10&offset=20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.callLogs.AssertExpectations(t)
}

func TestListCallLogsClampsBadParams(t *testing.T) {
	f := newAdminFixture(t)
	f.callLogs.On("List", mock.Anything, 50, 0).Return(nil, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/calls?limit=9999&offset=-3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.callLogs.AssertExpectations(t)
}

func TestDeleteCallLog(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.New()
	f.callLogs.On("Delete", mock.Anything, id).Return(nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/calls/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.callLogs.AssertExpectations(t)
}

func TestDeleteCallLogNotFound(t *testing.T) {
	f := newAdminFixture(t)
	id := uuid.New()
	f.callLogs.On("Delete", mock.Anything, id).Return(repository.ErrNotFound)

	rec := f.do(t, http.MethodDelete, "/api/v1/calls/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearCallLogs(t *testing.T) {
	f := newAdminFixture(t)
	f.callLogs.On("Clear", mock.Anything).Return(nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/calls", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.callLogs.AssertExpectations(t)
}
