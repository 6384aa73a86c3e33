package domain

import "time"

// ListingStatus enumerates the publication states a listing can be in.
type ListingStatus string

const (
	ListingPublished ListingStatus = "published"
	ListingPending   ListingStatus = "pending"
	ListingDraft     ListingStatus = "draft"
	// ListingAny is a filter wildcard, never a stored status.
	ListingAny ListingStatus = "any"
)

// VisibleStatuses are the statuses considered when resolving ownership.
var VisibleStatuses = []ListingStatus{ListingPublished, ListingPending, ListingDraft}

// Listing represents a single business/trader record. Listings are created
// by an external submission flow; this service only rewires their ownership.
type Listing struct {
	ID              string        `json:"id" db:"id"`
	Title           string        `json:"title" db:"title"`
	Status          ListingStatus `json:"status" db:"status"`
	AuthorAccountID string        `json:"author_account_id" db:"author_account_id"`
	ContactEmail    string        `json:"contact_email,omitempty"`
	LinkedAccountID string        `json:"linked_account_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ListingSummary is the trimmed shape returned by ownership resolution.
type ListingSummary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Summary converts a listing to its resolution summary.
func (l Listing) Summary() ListingSummary {
	return ListingSummary{ID: l.ID, Title: l.Title, Status: l.Status, CreatedAt: l.CreatedAt}
}
