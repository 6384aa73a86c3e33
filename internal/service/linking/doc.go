// Package linking implements trader-identity resolution and account
// provisioning for listings.
//
// A listing can be tied to an account by three signals: authorship (the
// account that created it), an explicit linkedAccountId attribute, and a
// case-insensitive match between the listing's contact email and the
// account's email. Reads treat the signals as a logical OR; writes only
// ever touch the explicit link and authorship.
//
// The service layer contains all business logic for resolving ownership,
// mutating connections, auto-linking by email, and batch provisioning of
// accounts. It depends on the store interfaces defined in this package and
// should never import from api/.
//
// Store implementations live in repository/postgres/ and repository/memory/.
package linking
