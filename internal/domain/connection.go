package domain

import "time"

// ConnectMode controls which ownership signals a connect call writes.
type ConnectMode string

const (
	// ConnectAuthorOnly sets only the listing's author field.
	ConnectAuthorOnly ConnectMode = "author_only"
	// ConnectExplicitOnly sets only the linkedAccountId attribute. This is
	// the mode auto-linking uses: authorship stays a read-only advisory.
	ConnectExplicitOnly ConnectMode = "explicit_only"
	// ConnectBoth sets author and explicit link together.
	ConnectBoth ConnectMode = "both"
)

// Valid reports whether m is one of the three defined modes.
func (m ConnectMode) Valid() bool {
	switch m {
	case ConnectAuthorOnly, ConnectExplicitOnly, ConnectBoth:
		return true
	}
	return false
}

// ConnectionEvent is emitted after every successful connect or disconnect.
type ConnectionEvent struct {
	Type      string      `json:"type"` // "connected" or "disconnected"
	ListingID string      `json:"listing_id"`
	AccountID string      `json:"account_id,omitempty"`
	Mode      ConnectMode `json:"mode,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// AutoLinkOutcome classifies one listing's result within an auto-link run.
type AutoLinkOutcome string

const (
	AutoLinkSuccess       AutoLinkOutcome = "success"
	AutoLinkAlreadyLinked AutoLinkOutcome = "already_linked"
	AutoLinkNoMatch       AutoLinkOutcome = "no_match"
	AutoLinkError         AutoLinkOutcome = "error"
)

// AutoLinkEntry is the per-listing audit line of an auto-link run.
type AutoLinkEntry struct {
	ListingID    string          `json:"listing_id"`
	Title        string          `json:"title"`
	ContactEmail string          `json:"contact_email"`
	Outcome      AutoLinkOutcome `json:"outcome"`
	Message      string          `json:"message,omitempty"`
}

// AutoLinkReport is the structured result of one auto-link run. It is
// returned to the caller and not persisted; re-running is always safe
// because already-linked listings are skipped.
type AutoLinkReport struct {
	Linked        int             `json:"linked"`
	AlreadyLinked int             `json:"already_linked"`
	NoMatch       int             `json:"no_match"`
	Errors        int             `json:"errors"`
	Entries       []AutoLinkEntry `json:"entries"`
}
