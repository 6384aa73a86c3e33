package linking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/trader-link/internal/domain"
)

const (
	// maxLoginAttempts bounds numeric-suffix disambiguation before the
	// time+random fallback guarantees termination.
	maxLoginAttempts = 100

	generatedPasswordLength = 24
	minPasswordLength       = 8
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	loginStrip = regexp.MustCompile(`[^a-z0-9._\-]`)
)

// CreateAccountFor provisions an account for the listing's contact email
// and connects the two. If an account with that email already exists the
// listing is connected to it instead of failing - stale state self-heals -
// unless it is already the listing's explicit link, which returns
// ErrAlreadyConnected. A listing holding an explicit link to an account
// whose email does not match also returns ErrAlreadyConnected: that link
// was made deliberately and a stale contact email must not overwrite it.
// A failed connect or credential mail after the account exists is recorded
// in the error log, never rolled back; a failed profile update deletes the
// just-created account.
func (s *Service) CreateAccountFor(ctx context.Context, listingID string, sendNotification, useSharedPassword bool) (string, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidListing
		}
		return "", fmt.Errorf("provision: load listing: %w", err)
	}

	email, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrContactEmail)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("provision: read contact email: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingEmail
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}

	linked, err := s.attrs.Get(ctx, domain.EntityListing, listingID, domain.AttrLinkedAccountID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("provision: read link: %w", err)
	}

	if existing, err := s.accounts.AccountByEmail(ctx, email); err == nil {
		if linked == existing.ID {
			return "", ErrAlreadyConnected
		}
		if cerr := s.Connect(ctx, listingID, existing.ID, domain.ConnectBoth); cerr != nil {
			return "", cerr
		}
		return existing.ID, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("provision: directory lookup: %w", err)
	}
	if linked != "" {
		return "", ErrAlreadyConnected
	}

	login, err := s.uniqueLogin(ctx, email)
	if err != nil {
		return "", err
	}
	password, err := s.provisionPassword(ctx, useSharedPassword)
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", ErrWeakCredential
	}

	acct := &domain.Account{
		ID:          uuid.New().String(),
		Login:       login,
		Email:       email,
		DisplayName: listing.Title,
		Role:        domain.RoleTrader,
	}
	id, err := s.accounts.Create(ctx, acct, password)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrDirectoryWrite, login, err)
	}
	acct.ID = id

	// Post-creation profile writes. A failure here would leave an orphaned
	// account with no usable profile, so it is the one place provisioning
	// rolls back.
	if err := s.accounts.Update(ctx, acct); err != nil {
		s.deleteOrphan(ctx, id)
		return "", fmt.Errorf("%w: profile update for %s: %v", ErrDirectoryWrite, login, err)
	}
	if err := s.attrs.Set(ctx, domain.EntityAccount, id, domain.AttrMustChangePassword, "true"); err != nil {
		s.deleteOrphan(ctx, id)
		return "", fmt.Errorf("%w: flag password change for %s: %v", ErrDirectoryWrite, login, err)
	}

	if err := s.Connect(ctx, listingID, id, domain.ConnectBoth); err != nil {
		s.errs.Record("provision.connect", fmt.Sprintf("listing %s account %s: %v", listingID, id, err))
	}

	if sendNotification {
		if s.notifier == nil {
			s.errs.Record("provision.notify", fmt.Sprintf("account %s: no notifier configured", id))
		} else if err := s.notifier.SendCredentials(ctx, email, domain.Credentials{
			Login:        login,
			Password:     password,
			ListingTitle: listing.Title,
			LoginURL:     s.loginURL,
		}); err != nil {
			s.errs.Record("provision.notify", fmt.Sprintf("account %s: %v", id, err))
		}
	}
	return id, nil
}

func (s *Service) deleteOrphan(ctx context.Context, accountID string) {
	if err := s.accounts.Delete(ctx, accountID); err != nil {
		s.errs.Record("provision.rollback", fmt.Sprintf("delete orphaned account %s: %v", accountID, err))
	}
}

// RunBatch provisions accounts for one page of eligible listings: those
// carrying a contact email. Listings the batch itself has already handled
// stay in the eligible set, so a caller advancing offset by page size walks
// the whole set exactly once; only external mutation (an operator clearing
// a contact email mid-run) shifts offsets. Eligibility is recomputed on
// every call. batchSize 0 means "all remaining". Per-listing failures are
// tallied and never abort the page.
func (s *Service) RunBatch(ctx context.Context, batchSize, offset int, useSharedPassword bool) (*domain.ProvisioningBatch, error) {
	eligible, err := s.eligibleListings(ctx)
	if err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	total := len(eligible)
	start := offset
	if start > total {
		start = total
	}
	end := total
	if batchSize > 0 && start+batchSize < total {
		end = start + batchSize
	}
	page := eligible[start:end]

	batch := &domain.ProvisioningBatch{
		BatchSize:     batchSize,
		Offset:        offset,
		TotalEligible: total,
		Errors:        []string{},
	}

	// Shared-password runs hand out one operator-held credential, so the
	// per-account mail is skipped.
	notify := !useSharedPassword

	for _, l := range page {
		_, err := s.CreateAccountFor(ctx, l.ID, notify, useSharedPassword)
		switch {
		case err == nil:
			batch.Created++
		case errors.Is(err, ErrAlreadyConnected):
			batch.Skipped++
		default:
			batch.Errors = append(batch.Errors, fmt.Sprintf("%s (%s): %v", l.Title, l.ID, err))
		}
	}

	batch.Processed = offset + len(page)
	batch.Remaining = total - batch.Processed
	if batch.Remaining < 0 {
		batch.Remaining = 0
	}
	batch.Complete = batch.Remaining == 0
	return batch, nil
}

// eligibleListings returns listings with a non-empty contact email,
// ordered by title. Whether a listing actually needs an account is decided
// per listing by CreateAccountFor; keeping already-handled listings in the
// set is what makes offset resumption count correctly across pages.
func (s *Service) eligibleListings(ctx context.Context) ([]domain.Listing, error) {
	contacts, err := s.attrs.Find(ctx, domain.EntityListing, domain.AttrContactEmail)
	if err != nil {
		return nil, fmt.Errorf("batch: scan contact emails: %w", err)
	}

	var out []domain.Listing
	for _, c := range contacts {
		email := strings.TrimSpace(c.Value)
		if email == "" {
			continue
		}
		listing, err := s.listings.Get(ctx, c.EntityID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("batch: load listing %s: %w", c.EntityID, err)
		}
		out = append(out, *listing)
	}

	// Ties keep the attribute-scan order, which the store keeps stable.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// uniqueLogin derives a login from the email's local part, disambiguating
// collisions with a numeric suffix and falling back to a time+random name
// so the search always terminates.
func (s *Service) uniqueLogin(ctx context.Context, email string) (string, error) {
	local := strings.ToLower(email[:strings.Index(email, "@")])
	local = loginStrip.ReplaceAllString(local, "")
	if local == "" {
		local = "trader"
	}

	candidate := local
	for i := 0; i < maxLoginAttempts; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", local, i+1)
		}
		_, err := s.accounts.AccountByLogin(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("provision: login lookup: %w", err)
		}
	}

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("provision: random suffix: %w", err)
	}
	return fmt.Sprintf("%s-%d-%04d", local, s.now().Unix(), n.Int64()), nil
}

// provisionPassword returns either a fresh high-entropy secret or the
// process-wide shared one, generating and persisting the shared secret on
// first use. Shared mode is explicit, never the default.
func (s *Service) provisionPassword(ctx context.Context, useShared bool) (string, error) {
	if !useShared {
		return generatePassword()
	}
	existing, err := s.attrs.Get(ctx, domain.EntityOption, domain.OptionGlobalID, domain.AttrSharedPassword)
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("provision: read shared password: %w", err)
	}
	password, err := generatePassword()
	if err != nil {
		return "", err
	}
	if err := s.attrs.Set(ctx, domain.EntityOption, domain.OptionGlobalID, domain.AttrSharedPassword, password); err != nil {
		return "", fmt.Errorf("provision: store shared password: %w", err)
	}
	return password, nil
}

const passwordCharset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"

func generatePassword() (string, error) {
	out := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
