package linking

import "errors"

// Sentinel errors for the linking service layer. Validation errors abort
// only the single operation they occur in; batch pages tally them and
// continue.
var (
	// ErrNotFound is returned by store implementations for missing records.
	ErrNotFound = errors.New("record not found")

	ErrInvalidListing   = errors.New("listing not found")
	ErrInvalidAccount   = errors.New("account not found")
	ErrInvalidMode      = errors.New("invalid connect mode")
	ErrAlreadyConnected = errors.New("listing already connected to this account")
	ErrMissingEmail     = errors.New("listing has no contact email")
	ErrInvalidEmail     = errors.New("contact email is malformed")
	ErrWeakCredential   = errors.New("credential does not meet minimum length")
	ErrDirectoryWrite   = errors.New("directory write failed")
)
