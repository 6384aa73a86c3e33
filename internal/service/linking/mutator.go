package linking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ignite/trader-link/internal/domain"
)

// Connect ties a listing to an account. Mode selects which signals are
// written: the author field, the explicit linkedAccountId attribute, or
// both. The listing id is appended to the account's myListingIds attribute
// if absent, the account's resolution cache entry is invalidated before
// returning, and a connected event is emitted.
//
// The listing-side and account-side writes either both apply or neither
// does: a failure on the account side rolls the listing side back.
func (s *Service) Connect(ctx context.Context, listingID, accountID string, mode domain.ConnectMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}

	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidListing
		}
		return fmt.Errorf("connect: load listing: %w", err)
	}
	if _, err := s.accounts.Account(ctx, accountID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidAccount
		}
		return fmt.Errorf("connect: load account: %w", err)
	}

	prevAuthor := listing.AuthorAccountID
	prevLink, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("connect: read current link: %w", err)
	}

	wroteAuthor := false
	if mode == domain.ConnectAuthorOnly || mode == domain.ConnectBoth {
		if err := s.listings.SetAuthor(ctx, listingID, accountID); err != nil {
			return fmt.Errorf("connect: set author: %w", err)
		}
		wroteAuthor = true
	}
	if mode == domain.ConnectExplicitOnly || mode == domain.ConnectBoth {
		if err := s.attrs.Set(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID, accountID); err != nil {
			s.rollbackListing(ctx, listingID, prevAuthor, prevLink, wroteAuthor, false)
			return fmt.Errorf("connect: set explicit link: %w", err)
		}
	}

	if err := s.appendMyListing(ctx, accountID, listingID); err != nil {
		wroteLink := mode == domain.ConnectExplicitOnly || mode == domain.ConnectBoth
		s.rollbackListing(ctx, listingID, prevAuthor, prevLink, wroteAuthor, wroteLink)
		return fmt.Errorf("connect: account-side write: %w", err)
	}

	s.cache.Invalidate(ctx, accountID)
	if prevLink != "" && prevLink != accountID {
		// The previous holder's resolved set shrank too.
		s.cache.Invalidate(ctx, prevLink)
	}

	s.emit(ctx, domain.ConnectionEvent{
		Type:      "connected",
		ListingID: listingID,
		AccountID: accountID,
		Mode:      mode,
		Timestamp: s.now().UTC(),
	})
	return nil
}

// rollbackListing undoes listing-side writes after a mid-connect failure.
// Rollback errors are recorded, not returned: the original failure is the
// one the caller needs to see.
func (s *Service) rollbackListing(ctx context.Context, listingID, prevAuthor, prevLink string, wroteAuthor, wroteLink bool) {
	if wroteAuthor {
		if err := s.listings.SetAuthor(ctx, listingID, prevAuthor); err != nil {
			s.errs.Record("connect.rollback", fmt.Sprintf("restore author on %s: %v", listingID, err))
		}
	}
	if !wroteLink {
		return
	}
	var err error
	if prevLink == "" {
		err = s.attrs.Delete(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID)
	} else {
		err = s.attrs.Set(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID, prevLink)
	}
	if err != nil {
		s.errs.Record("connect.rollback", fmt.Sprintf("restore link on %s: %v", listingID, err))
	}
}

// Disconnect removes the explicit link from a listing. With an accountID the
// link is cleared only if it currently points at that account, and the
// listing is dropped from that account's myListingIds set. Without one the
// link is cleared unconditionally. Authorship is never touched, and a
// missing link is not an error.
func (s *Service) Disconnect(ctx context.Context, listingID, accountID string) error {
	current, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("disconnect: read link: %w", err)
	}

	if accountID != "" {
		if current == accountID {
			if err := s.attrs.Delete(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID); err != nil {
				return fmt.Errorf("disconnect: clear link: %w", err)
			}
		}
		if err := s.removeMyListing(ctx, accountID, listingID); err != nil {
			return fmt.Errorf("disconnect: account-side removal: %w", err)
		}
		s.cache.Invalidate(ctx, accountID)
	} else {
		if err := s.attrs.Delete(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID); err != nil {
			return fmt.Errorf("disconnect: clear link: %w", err)
		}
		if current != "" {
			// The prior holder is known, so we can invalidate precisely
			// instead of waiting out the TTL.
			s.cache.Invalidate(ctx, current)
		}
	}

	s.emit(ctx, domain.ConnectionEvent{
		Type:      "disconnected",
		ListingID: listingID,
		AccountID: accountID,
		Timestamp: s.now().UTC(),
	})
	return nil
}

// appendMyListing adds listingID to the account's myListingIds attribute,
// preserving order and skipping duplicates.
func (s *Service) appendMyListing(ctx context.Context, accountID, listingID string) error {
	ids, err := s.myListings(ctx, accountID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == listingID {
			return nil
		}
	}
	return s.writeMyListings(ctx, accountID, append(ids, listingID))
}

func (s *Service) removeMyListing(ctx context.Context, accountID, listingID string) error {
	ids, err := s.myListings(ctx, accountID)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != listingID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return s.writeMyListings(ctx, accountID, kept)
}

func (s *Service) myListings(ctx context.Context, accountID string) ([]string, error) {
	raw, err := s.attrs.Get(ctx, domain.EntityAccount, accountID, domain.AttrMyListingIDs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read myListingIds: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode myListingIds for %s: %w", accountID, err)
	}
	return ids, nil
}

func (s *Service) writeMyListings(ctx context.Context, accountID string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode myListingIds: %w", err)
	}
	if err := s.attrs.Set(ctx, domain.EntityAccount, accountID, domain.AttrMyListingIDs, string(raw)); err != nil {
		return fmt.Errorf("write myListingIds: %w", err)
	}
	return nil
}
