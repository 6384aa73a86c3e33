package linking

import (
	"context"

	"github.com/ignite/trader-link/internal/domain"
)

// ListingStore defines data access for listing records. Implementations
// must be safe for concurrent use and return ErrNotFound for missing ids.
type ListingStore interface {
	// Get returns a single listing by id.
	Get(ctx context.Context, id string) (*domain.Listing, error)

	// ByAuthor returns listings authored by the account, restricted to the
	// given statuses (nil means any status).
	ByAuthor(ctx context.Context, accountID string, statuses []domain.ListingStatus) ([]domain.Listing, error)

	// ByIDs returns the listings with the given ids, restricted to the
	// given statuses. Missing ids are silently dropped.
	ByIDs(ctx context.Context, ids []string, statuses []domain.ListingStatus) ([]domain.Listing, error)

	// SetAuthor rewrites the listing's author account.
	SetAuthor(ctx context.Context, listingID, accountID string) error
}

// Directory is the external identity directory holding account records.
// Emails are globally unique; lookups by email are case-insensitive.
type Directory interface {
	Account(ctx context.Context, id string) (*domain.Account, error)
	AccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	AccountByLogin(ctx context.Context, login string) (*domain.Account, error)

	// Create inserts a new account with the given initial credential and
	// returns its id.
	Create(ctx context.Context, a *domain.Account, password string) (string, error)

	// Update rewrites mutable profile fields (role, display name).
	Update(ctx context.Context, a *domain.Account) error

	// Delete removes an account. Used only for compensating rollback when
	// a post-creation update fails.
	Delete(ctx context.Context, id string) error
}

// AttributeStore is key-value attribute storage keyed by
// (entity type, entity id, attribute name).
type AttributeStore interface {
	// Get returns the attribute value, or ErrNotFound when absent.
	Get(ctx context.Context, entityType, entityID, name string) (string, error)
	Set(ctx context.Context, entityType, entityID, name, value string) error
	Delete(ctx context.Context, entityType, entityID, name string) error

	// Find returns all attributes with the given name across entities of
	// one type, ordered by entity id.
	Find(ctx context.Context, entityType, name string) ([]domain.Attribute, error)
}

// ResolutionCache fronts the ownership read path. Entries expire on a TTL
// and are invalidated synchronously by every connection mutation.
type ResolutionCache interface {
	Get(ctx context.Context, accountID string) ([]domain.ListingSummary, bool)
	Put(ctx context.Context, accountID string, listings []domain.ListingSummary)
	Invalidate(ctx context.Context, accountID string)
}

// Notifier delivers credential notifications to freshly provisioned
// accounts. Failures are non-fatal to provisioning.
type Notifier interface {
	SendCredentials(ctx context.Context, to string, creds domain.Credentials) error
}

// EventPublisher broadcasts connection events to out-of-process observers.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.ConnectionEvent)
}
