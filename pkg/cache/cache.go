// Package cache provides byte caching for expensive precomputations.
//
// The main payload is the serialized reachability table: enumerating all
// circuits up to a depth costs minutes at width 4 and the result never
// changes, so runs share tables through a cache instead of rebuilding
// them. Three backends implement the [Cache] interface: a file cache for
// single machines, Redis for shared cluster deployments, and a null cache
// that disables caching entirely.
//
// Keys are produced by a [Keyer] so that every component addresses the
// same table the same way; [ScopedKeyer] prefixes keys for namespace
// isolation on shared Redis instances.
package cache

import (
	"context"
	"time"
)

// TTLTable is the lifetime of serialized reachability tables. Tables are
// pure functions of the gate set and depth, so they never expire.
const TTLTable = time.Duration(0)

// Cache is a byte store with per-entry expiry.
//
// Get reports misses through the bool, not the error: (nil, false, nil)
// means the key is absent, and errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
