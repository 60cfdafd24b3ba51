package blocklist

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m5cents/call-screening-backend/internal/domain/errors"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// PatternType selects the matching semantics for a blacklist entry.
type PatternType string

const (
	// PatternExact matches when the normalized incoming number equals the
	// normalized stored number.
	PatternExact PatternType = "exact"
	// PatternAreaCode matches on the three digits following the incoming
	// number's country-code digit. The stored value is a bare area code
	// and is not normalized.
	PatternAreaCode PatternType = "area_code"
	// PatternPrefix matches when the incoming digits start with the stored
	// digits, both stripped of non-digit characters.
	PatternPrefix PatternType = "prefix"
)

// ParsePatternType validates a stored pattern type string.
func ParsePatternType(s string) (PatternType, error) {
	switch PatternType(s) {
	case PatternExact, PatternAreaCode, PatternPrefix:
		return PatternType(s), nil
	default:
		return "", errors.NewValidationError("INVALID_PATTERN_TYPE",
			"pattern type must be one of exact, area_code, prefix")
	}
}

// Entry is a blacklisted number subject to Do-Not-Call compliance
// handling instead of normal routing. Read-only from the routing
// engine's perspective.
type Entry struct {
	ID          uuid.UUID   `json:"id"`
	PhoneNumber string      `json:"phone_number"` // stored pattern, shape depends on PatternType
	Reason      string      `json:"reason"`
	PatternType PatternType `json:"pattern_type"`
	AddedAt     time.Time   `json:"date_added"`
}

// NewEntry validates and constructs a blacklist entry. Exact-pattern
// numbers are normalized at construction; area-code and prefix patterns
// keep the stored digits untouched.
func NewEntry(phoneNumber, reason string, patternType PatternType) (*Entry, error) {
	pt, err := ParsePatternType(string(patternType))
	if err != nil {
		return nil, err
	}

	stored := strings.TrimSpace(phoneNumber)
	if stored == "" {
		return nil, errors.NewValidationError("INVALID_PHONE_NUMBER", "blacklist number cannot be empty")
	}

	if pt == PatternExact {
		number, err := values.NewPhoneNumber(stored)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_PHONE_NUMBER", "invalid phone number format").WithCause(err)
		}
		stored = number.String()
	}

	return &Entry{
		ID:          uuid.New(),
		PhoneNumber: stored,
		Reason:      strings.TrimSpace(reason),
		PatternType: pt,
		AddedAt:     time.Now().UTC(),
	}, nil
}

// Matches reports whether the normalized incoming number falls under this
// entry. Matching correctness is security-relevant: it gates blacklist
// enforcement.
func (e *Entry) Matches(incoming values.PhoneNumber) bool {
	switch e.PatternType {
	case PatternExact:
		stored, err := values.NewPhoneNumber(e.PhoneNumber)
		if err != nil {
			return false
		}
		return incoming.Equal(stored)
	case PatternAreaCode:
		stored := digitsOnly(e.PhoneNumber)
		if stored == "" {
			return false
		}
		return incoming.AreaCode() == stored
	case PatternPrefix:
		stored := digitsOnly(e.PhoneNumber)
		if stored == "" {
			return false
		}
		return strings.HasPrefix(incoming.Digits(), stored)
	default:
		return false
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
