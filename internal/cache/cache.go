// Package cache implements the resolution cache fronting the ownership
// read path. Entries map an account id to its resolved listing set and
// live for a fixed TTL; every connection mutation invalidates the touched
// account synchronously.
package cache

import "time"

// DefaultTTL bounds how stale a resolved listing set can get when an
// invalidation is missed (e.g. a disconnect with no known prior account).
const DefaultTTL = 300 * time.Second

const keyPrefix = "trader-link:resolved:"
