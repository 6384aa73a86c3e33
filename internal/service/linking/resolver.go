package linking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ignite/trader-link/internal/domain"
)

// ListingsOwnedBy returns every visible listing the account owns under any
// of the three ownership signals, newest first. Results are served from the
// resolution cache when present. An unknown account yields an empty list,
// never an error.
func (s *Service) ListingsOwnedBy(ctx context.Context, accountID string) ([]domain.ListingSummary, error) {
	if accountID == "" {
		return []domain.ListingSummary{}, nil
	}
	if cached, ok := s.cache.Get(ctx, accountID); ok {
		return cached, nil
	}

	acct, err := s.accounts.Account(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []domain.ListingSummary{}, nil
		}
		return nil, fmt.Errorf("resolve account %s: %w", accountID, err)
	}

	authored, err := s.listings.ByAuthor(ctx, accountID, domain.VisibleStatuses)
	if err != nil {
		return nil, fmt.Errorf("authored listings: %w", err)
	}

	signalIDs, err := s.signalListingIDs(ctx, acct)
	if err != nil {
		return nil, err
	}
	signalled, err := s.listings.ByIDs(ctx, signalIDs, domain.VisibleStatuses)
	if err != nil {
		return nil, fmt.Errorf("signalled listings: %w", err)
	}

	// Union, deduplicated by id. Authored listings win the duplicate slot
	// but the content is identical either way.
	seen := make(map[string]bool, len(authored)+len(signalled))
	merged := make([]domain.Listing, 0, len(authored)+len(signalled))
	for _, l := range append(authored, signalled...) {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		merged = append(merged, l)
	}

	// Newest first; ties keep store order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	out := make([]domain.ListingSummary, 0, len(merged))
	for _, l := range merged {
		out = append(out, l.Summary())
	}
	s.cache.Put(ctx, accountID, out)
	return out, nil
}

// signalListingIDs collects listing ids pointed at the account by the
// explicit-link attribute or by a case-insensitive contact-email match.
func (s *Service) signalListingIDs(ctx context.Context, acct *domain.Account) ([]string, error) {
	var ids []string

	links, err := s.attrs.Find(ctx, domain.EntityListing, domain.AttrLinkedAccountID)
	if err != nil {
		return nil, fmt.Errorf("scan explicit links: %w", err)
	}
	for _, a := range links {
		if a.Value == acct.ID {
			ids = append(ids, a.EntityID)
		}
	}

	emails, err := s.attrs.Find(ctx, domain.EntityListing, domain.AttrContactEmail)
	if err != nil {
		return nil, fmt.Errorf("scan contact emails: %w", err)
	}
	for _, a := range emails {
		if strings.EqualFold(a.Value, acct.Email) {
			ids = append(ids, a.EntityID)
		}
	}
	return ids, nil
}

// CanAccess reports whether the account may manage the listing. It checks
// the three signals directly against the stores - a point check stays off
// the cache. Unknown listing or account ids are false, not errors;
// administrators pass for any listing that exists.
func (s *Service) CanAccess(ctx context.Context, listingID, accountID string) (bool, error) {
	acct, err := s.accounts.Account(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("access check account: %w", err)
	}

	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("access check listing: %w", err)
	}

	if acct.IsAdmin() {
		return true, nil
	}
	if listing.AuthorAccountID == accountID {
		return true, nil
	}

	linked, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("access check link: %w", err)
	}
	if linked == accountID && linked != "" {
		return true, nil
	}

	contact, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrContactEmail)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("access check email: %w", err)
	}
	if contact != "" && strings.EqualFold(contact, acct.Email) {
		return true, nil
	}
	return false, nil
}
