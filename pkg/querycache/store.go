// Package querycache is a narrow cache capability used by the optimistic
// mutation coordinator: keyed read/write, write-many by group prefix,
// invalidation, and cancellation of pending background refreshes. It is the
// seam between the coordinator and whatever query layer actually owns the
// cached data, so the coordinator stays portable across store
// implementations.
package querycache

import "time"

// Value is a JSON-like cached payload: a list page ({"users": [...], ...}) or
// a single entity keyed by id.
type Value = map[string]any

// Entry is a cached (key, value) pair with its last write time.
type Entry struct {
	Key       Key
	Value     Value
	UpdatedAt time.Time
}

// UpdateFunc transforms a cached value in place of the old one. Returning nil
// leaves the entry unchanged.
type UpdateFunc func(key Key, value Value) Value

// Store is the cache capability consumed by the coordinator. Implementations
// are responsible for their own internal consistency under interleaved access
// from multiple coordinators; all operations are atomic from the caller's
// perspective.
type Store interface {
	// Get returns the cached value for key, if present.
	Get(key Key) (Value, bool)
	// Set writes value under key, clearing any staleness mark.
	Set(key Key, value Value)
	// Entries returns every cached entry under the group prefix.
	Entries(prefix Key) []Entry
	// SetMany applies update to every entry under the group prefix.
	SetMany(prefix Key, update UpdateFunc)
	// Invalidate marks the given keys (and everything under them) stale so
	// the next read triggers a refetch.
	Invalidate(keys ...Key)
	// TrackPending registers a cancel function for an in-flight background
	// refresh of key, replacing (and cancelling) any previous one.
	TrackPending(key Key, cancel func())
	// CancelPending cancels in-flight background refreshes under the given
	// keys, preventing a stale refetch from clobbering an optimistic write.
	CancelPending(keys ...Key)
}
