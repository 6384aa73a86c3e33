package linking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/trader-link/internal/domain"
)

// AutoLink scans every listing carrying a contact email, regardless of
// status, and links unlinked ones to the account whose email matches
// case-insensitively. The run is not atomic across listings: a failure
// partway through leaves earlier links in place and the per-listing entries
// are the audit trail. Re-running is safe because linked listings are
// always skipped.
func (s *Service) AutoLink(ctx context.Context) (*domain.AutoLinkReport, error) {
	contacts, err := s.attrs.Find(ctx, domain.EntityListing, domain.AttrContactEmail)
	if err != nil {
		return nil, fmt.Errorf("autolink: scan contact emails: %w", err)
	}

	report := &domain.AutoLinkReport{Entries: []domain.AutoLinkEntry{}}
	for _, c := range contacts {
		email := strings.TrimSpace(c.Value)
		if email == "" {
			continue
		}
		entry := domain.AutoLinkEntry{ListingID: c.EntityID, ContactEmail: email}

		listing, err := s.listings.Get(ctx, c.EntityID)
		if err != nil {
			entry.Outcome = domain.AutoLinkError
			entry.Message = fmt.Sprintf("load listing: %v", err)
			report.Errors++
			report.Entries = append(report.Entries, entry)
			continue
		}
		entry.Title = listing.Title

		linked, err := s.attrs.Get(ctx, domain.EntityListing, c.EntityID, domain.AttrLinkedAccountID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			entry.Outcome = domain.AutoLinkError
			entry.Message = fmt.Sprintf("read link: %v", err)
			report.Errors++
			report.Entries = append(report.Entries, entry)
			continue
		}
		if linked != "" {
			holder := linked
			if acct, err := s.accounts.Account(ctx, linked); err == nil {
				holder = acct.DisplayName
			}
			entry.Outcome = domain.AutoLinkAlreadyLinked
			entry.Message = "linked to " + holder
			report.AlreadyLinked++
			report.Entries = append(report.Entries, entry)
			continue
		}

		acct, err := s.accounts.AccountByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				entry.Outcome = domain.AutoLinkNoMatch
				report.NoMatch++
			} else {
				entry.Outcome = domain.AutoLinkError
				entry.Message = fmt.Sprintf("directory lookup: %v", err)
				report.Errors++
			}
			report.Entries = append(report.Entries, entry)
			continue
		}

		if err := s.Connect(ctx, c.EntityID, acct.ID, domain.ConnectExplicitOnly); err != nil {
			entry.Outcome = domain.AutoLinkError
			entry.Message = err.Error()
			report.Errors++
		} else {
			entry.Outcome = domain.AutoLinkSuccess
			entry.Message = "linked to " + acct.DisplayName
			report.Linked++
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}
