package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m5cents/call-screening-backend/internal/infrastructure/config"
)

func testAuthService() *AuthService {
	return NewAuthService(config.SecurityConfig{
		JWTSecret:     "test-secret",
		TokenExpiry:   time.Hour,
		AdminUser:     "admin",
		AdminPassword: "hunter2",
		APIKey:        "srv-key-123",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	auth := testAuthService()

	token, err := auth.IssueToken("admin")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := testAuthService().IssueToken("admin")
	require.NoError(t, err)

	other := NewAuthService(config.SecurityConfig{JWTSecret: "different", TokenExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	auth := NewAuthService(config.SecurityConfig{JWTSecret: "s", TokenExpiry: -time.Minute})
	token, err := auth.IssueToken("admin")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestLoginHandler(t *testing.T) {
	auth := testAuthService()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"username":"admin","password":"hunter2"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"wrong user", `{"username":"root","password":"hunter2"}`, http.StatusUnauthorized},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			auth.LoginHandler(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"token"`)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	auth := testAuthService()
	protected := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := auth.IssueToken("admin")
	require.NoError(t, err)

	tests := []struct {
		name       string
		decorate   func(*http.Request)
		wantStatus int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"valid bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}, http.StatusOK},
		{"garbage bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.token")
		}, http.StatusUnauthorized},
		{"valid api key", func(r *http.Request) {
			r.Header.Set("X-API-Key", "srv-key-123")
		}, http.StatusOK},
		{"wrong api key", func(r *http.Request) {
			r.Header.Set("X-API-Key", "wrong")
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
			tt.decorate(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
