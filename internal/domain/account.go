package domain

import "time"

// AccountRole enumerates directory roles relevant to this service.
type AccountRole string

const (
	RoleTrader AccountRole = "trader"
	RoleAdmin  AccountRole = "administrator"
)

// Account represents a login identity in the external directory. Email is
// globally unique; matching against listing contact emails is always
// case-insensitive.
type Account struct {
	ID          string      `json:"id" db:"id"`
	Login       string      `json:"login" db:"login"`
	Email       string      `json:"email" db:"email"`
	DisplayName string      `json:"display_name" db:"display_name"`
	Role        AccountRole `json:"role" db:"role"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the account carries elevated privilege, which
// short-circuits every access check.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Attribute is one key-value entry from the attribute store's range queries.
type Attribute struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}

// Attribute entity types and names persisted by this service. These are the
// stable on-disk contract shared with the surrounding platform; renaming any
// of them is a migration.
const (
	EntityListing = "listing"
	EntityAccount = "account"
	EntityOption  = "option"

	AttrLinkedAccountID    = "linkedAccountId"
	AttrContactEmail       = "contactEmail"
	AttrMyListingIDs       = "myListingIds"
	AttrMustChangePassword = "mustChangePassword"
	AttrSharedPassword     = "sharedProvisioningPassword"

	// OptionGlobalID is the entity id under which process-wide options live.
	OptionGlobalID = "global"
)
