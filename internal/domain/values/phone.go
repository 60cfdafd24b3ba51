package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PhoneNumber is a normalized caller number value object.
//
// Normalization is exact rather than approximate: blacklist enforcement
// compares normalized numbers, so two renderings of the same number must
// always normalize to the same value.
type PhoneNumber struct {
	number string // rendered as +<digits>
}

// NewPhoneNumber normalizes a raw caller number.
//
// Rules, applied in order:
//  1. Strip all non-digit characters.
//  2. Exactly 10 digits: prepend the US country code digit 1.
//  3. 11 digits starting with 1: keep as-is.
//  4. Anything else: keep the digits as given, no invented country code.
//  5. Render as +<digits>.
func NewPhoneNumber(raw string) (PhoneNumber, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return PhoneNumber{}, fmt.Errorf("phone number %q contains no digits", raw)
	}

	if len(digits) == 10 {
		digits = "1" + digits
	}

	return PhoneNumber{number: "+" + digits}, nil
}

// MustNewPhoneNumber creates a PhoneNumber and panics on error (tests, constants).
func MustNewPhoneNumber(raw string) PhoneNumber {
	p, err := NewPhoneNumber(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the normalized +<digits> rendering.
func (p PhoneNumber) String() string {
	return p.number
}

// IsEmpty reports whether the value holds no number.
func (p PhoneNumber) IsEmpty() bool {
	return p.number == ""
}

// Equal reports whether two normalized numbers are identical.
func (p PhoneNumber) Equal(other PhoneNumber) bool {
	return p.number == other.number
}

// Digits returns the number without the leading plus.
func (p PhoneNumber) Digits() string {
	return strings.TrimPrefix(p.number, "+")
}

// AreaCode returns the three digits immediately following the country-code
// digit, or "" when the number is too short to carry one.
func (p PhoneNumber) AreaCode() string {
	digits := p.Digits()
	if len(digits) < 4 {
		return ""
	}
	return digits[1:4]
}

// MarshalJSON implements json.Marshaler.
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.number)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	phone, err := NewPhoneNumber(s)
	if err != nil {
		return err
	}
	*p = phone
	return nil
}

// Value implements driver.Valuer for database storage.
func (p PhoneNumber) Value() (driver.Value, error) {
	return p.number, nil
}

// Scan implements sql.Scanner for database retrieval.
func (p *PhoneNumber) Scan(value interface{}) error {
	if value == nil {
		*p = PhoneNumber{}
		return nil
	}

	switch v := value.(type) {
	case string:
		phone, err := NewPhoneNumber(v)
		if err != nil {
			return err
		}
		*p = phone
		return nil
	case []byte:
		phone, err := NewPhoneNumber(string(v))
		if err != nil {
			return err
		}
		*p = phone
		return nil
	default:
		return fmt.Errorf("cannot scan %T into PhoneNumber", value)
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
