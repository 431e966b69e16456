// Package kv defines the key-value store the ledger and budget snapshots
// are mirrored into, with an in-memory and a SQLite-backed implementation.
package kv

import "context"

// Store is the outbound port for snapshot persistence.
type Store interface {
	// Get returns the value stored under key. The second return value is
	// false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
