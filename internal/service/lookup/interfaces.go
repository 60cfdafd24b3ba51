package lookup

import (
	"context"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// ContactRepository provides read access to whitelist records.
type ContactRepository interface {
	// List returns all contacts in iteration order.
	List(ctx context.Context) ([]*contact.Contact, error)
}

// BlocklistRepository provides read access to blacklist records.
type BlocklistRepository interface {
	// List returns all blacklist entries in iteration order.
	List(ctx context.Context) ([]*blocklist.Entry, error)
}

// MatchCache memoizes lookup results per normalized number. Cache failures
// must degrade to a direct repository scan, never to a lookup failure.
type MatchCache interface {
	// GetBlocklistMatch returns the cached entry, a negative-result marker,
	// or a miss (found=false).
	GetBlocklistMatch(ctx context.Context, number values.PhoneNumber) (entry *blocklist.Entry, negative bool, found bool)
	SetBlocklistMatch(ctx context.Context, number values.PhoneNumber, entry *blocklist.Entry)

	GetContactMatch(ctx context.Context, number values.PhoneNumber) (c *contact.Contact, negative bool, found bool)
	SetContactMatch(ctx context.Context, number values.PhoneNumber, c *contact.Contact)
}

// Service resolves a caller number against the blacklist and whitelist.
type Service interface {
	// FindBlacklistMatch returns the first matching blacklist entry, or
	// nil when the caller is not blacklisted.
	FindBlacklistMatch(ctx context.Context, number values.PhoneNumber) (*blocklist.Entry, error)
	// FindContactMatch returns the first whitelist contact whose number
	// normalizes identically to the caller's, or nil.
	FindContactMatch(ctx context.Context, number values.PhoneNumber) (*contact.Contact, error)
}
