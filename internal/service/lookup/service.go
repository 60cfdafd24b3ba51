package lookup

import (
	"context"
	"fmt"

	"github.com/m5cents/call-screening-backend/internal/domain/blocklist"
	"github.com/m5cents/call-screening-backend/internal/domain/contact"
	"github.com/m5cents/call-screening-backend/internal/domain/errors"
	"github.com/m5cents/call-screening-backend/internal/domain/values"
)

// service scans both record sets linearly, first match wins. Record counts
// are personal-contact sized, so no index structure is kept; the optional
// cache shortcuts repeat callers.
type service struct {
	contacts  ContactRepository
	blocklist BlocklistRepository
	cache     MatchCache // may be nil
}

// NewService creates a caller lookup service. cache may be nil to scan
// the repositories on every call.
func NewService(contacts ContactRepository, blocklist BlocklistRepository, cache MatchCache) Service {
	return &service{
		contacts:  contacts,
		blocklist: blocklist,
		cache:     cache,
	}
}

func (s *service) FindBlacklistMatch(ctx context.Context, number values.PhoneNumber) (*blocklist.Entry, error) {
	if number.IsEmpty() {
		return nil, errors.NewValidationError("EMPTY_NUMBER", "lookup number cannot be empty")
	}

	if s.cache != nil {
		if entry, negative, found := s.cache.GetBlocklistMatch(ctx, number); found {
			if negative {
				return nil, nil
			}
			return entry, nil
		}
	}

	entries, err := s.blocklist.List(ctx)
	if err != nil {
		return nil, errors.NewLookupError("blacklist scan failed", fmt.Errorf("list entries: %w", err))
	}

	for _, entry := range entries {
		if entry.Matches(number) {
			if s.cache != nil {
				s.cache.SetBlocklistMatch(ctx, number, entry)
			}
			return entry, nil
		}
	}

	if s.cache != nil {
		s.cache.SetBlocklistMatch(ctx, number, nil)
	}
	return nil, nil
}

func (s *service) FindContactMatch(ctx context.Context, number values.PhoneNumber) (*contact.Contact, error) {
	if number.IsEmpty() {
		return nil, errors.NewValidationError("EMPTY_NUMBER", "lookup number cannot be empty")
	}

	if s.cache != nil {
		if c, negative, found := s.cache.GetContactMatch(ctx, number); found {
			if negative {
				return nil, nil
			}
			return c, nil
		}
	}

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, errors.NewLookupError("whitelist scan failed", fmt.Errorf("list contacts: %w", err))
	}

	for _, c := range contacts {
		if c.Number.Equal(number) {
			if s.cache != nil {
				s.cache.SetContactMatch(ctx, number, c)
			}
			return c, nil
		}
	}

	if s.cache != nil {
		s.cache.SetContactMatch(ctx, number, nil)
	}
	return nil, nil
}
