package rest

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m5cents/call-screening-backend/internal/infrastructure/config"
)

// Claims are the JWT claims issued to dashboard sessions.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService issues and validates admin credentials. Two schemes are
// accepted: a bearer JWT from the login endpoint, or a static API key for
// machine clients.
type AuthService struct {
	cfg config.SecurityConfig
}

// NewAuthService creates the auth service.
func NewAuthService(cfg config.SecurityConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// IssueToken creates a signed admin token.
func (a *AuthService) IssueToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "call-screening-backend",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenExpiry)),
		},
		Role: "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginHandler exchanges the admin credentials for a JWT.
func (a *AuthService) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON")
		return
	}

	if a.cfg.AdminUser == "" || a.cfg.AdminPassword == "" {
		writeError(w, http.StatusForbidden, "LOGIN_DISABLED", "Password login is not configured")
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	token, err := a.IssueToken(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(a.cfg.TokenExpiry),
	})
}

// Middleware rejects requests that carry neither a valid bearer token nor
// the configured API key.
func (a *AuthService) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey := r.Header.Get("X-API-Key"); apiKey != "" && a.cfg.APIKey != "" {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.cfg.APIKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing credentials")
				return
			}
			if _, err := a.ValidateToken(strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
