package domain

import "context"

// ValueStore is the persistent key/value cache of player market values. Every
// successful Upsert is durable before the call returns; there is no batching
// guarantee beyond atomicity per record.
type ValueStore interface {
	// Upsert inserts or overwrites the record for name with a fresh
	// last-updated timestamp. Both paths succeed silently.
	Upsert(ctx context.Context, name string, value float64) error
	// UpsertAll writes every pair through the store.
	UpsertAll(ctx context.Context, values map[string]float64) error
	// LoadAll returns every stored record as of call time. Used once at
	// startup to seed the in-memory value table.
	LoadAll(ctx context.Context) ([]ValueRecord, error)
	// FindLike returns stored names containing pattern as a substring.
	// Diagnostics only; never on the hot path.
	FindLike(ctx context.Context, pattern string) ([]string, error)
}

// DirectoryCache caches the league-wide player-id to display-name directory
// between poll cycles. Get returns ErrNotFound on a miss or expired entry; a
// miss always falls through to the live feed, so cache failures never change
// watcher behavior.
type DirectoryCache interface {
	Get(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, directory map[string]string) error
}
