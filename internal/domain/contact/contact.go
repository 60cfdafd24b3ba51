package contact

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m5cents/call-screening-backend/internal/domain/errors"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// Contact is a whitelisted caller entitled to direct forwarding.
// Contacts are created and deleted through the admin API and never
// mutated otherwise; the routing engine only reads them.
type Contact struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Number    values.PhoneNumber `json:"phone_number"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewContact validates and constructs a whitelist entry. The phone number
// is normalized at construction time so repository uniqueness holds on the
// normalized form.
func NewContact(name, phoneNumber string) (*Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("INVALID_NAME", "contact name cannot be empty")
	}

	number, err := values.NewPhoneNumber(phoneNumber)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_PHONE_NUMBER", "invalid phone number format").WithCause(err)
	}

	return &Contact{
		ID:        uuid.New(),
		Name:      name,
		Number:    number,
		CreatedAt: time.Now().UTC(),
	}, nil
}
