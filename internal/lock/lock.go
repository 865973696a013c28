// Package lock provides a mutual-exclusion primitive keyed by name, with a TTL and an owner token.
package lock

import "time"

// Lease is proof of a held lock. Only the holder of the token can release it.
type Lease struct {
	Key   string
	Token string
	TTL   time.Duration
}
