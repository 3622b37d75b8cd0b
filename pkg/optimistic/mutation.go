// Package optimistic coordinates speculative cache updates for remote
// mutations: it applies the expected result to every affected cache entry
// before the call is dispatched, then reconciles on settlement — invalidating
// for a background refetch on success, or restoring the pre-mutation
// snapshot exactly on failure.
package optimistic

import (
	"context"
	"sync/atomic"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/errhandler"
	"github.com/meridianlabs/backoffice/pkg/querycache"
)

// idField locates the mutated entity inside a list payload's item array.
const idField = "id"

// RemoteCall issues the real mutation against the server.
type RemoteCall func(ctx context.Context, variables map[string]any) (any, error)

// Transform produces the speculative item from the mutation variables and the
// item's prior value. It must return a new map; prior is shared with the
// rollback snapshot and may not be mutated.
type Transform func(variables, prior map[string]any) map[string]any

// Config describes which cache entries a mutation touches and how.
type Config struct {
	// QueryGroupKey identifies the list-cache entries to scan and update,
	// e.g. {"users", "list"}.
	QueryGroupKey querycache.Key
	// DetailKeyFn yields the single detail-cache key for an entity id.
	DetailKeyFn func(entityID string) querycache.Key
	// ListItemsField is where the item array lives within a list payload,
	// e.g. "users" vs "orders".
	ListItemsField string
	// SuccessMessage is shown through the notifier once the mutation settles
	// successfully. Empty suppresses the notification.
	SuccessMessage string
	// OperationLabel tags error-handler context, combined with the entity id.
	OperationLabel string
	// Transform builds the speculative item; nil means shallow-merge of the
	// variables over the prior item.
	Transform Transform

	// Side-channel callbacks, fired in addition to cache reconciliation.
	OnSuccess func(result any)
	OnError   func(err *apperrors.AppError)
}

// Mutation is a reusable handle for optimistic mutations of one entity.
type Mutation struct {
	entityID string
	remote   RemoteCall
	cfg      Config
	store    querycache.Store
	handler  *errhandler.Handler
	pending  atomic.Bool
}

// snapshot captures pre-mutation cache state for rollback. It is discarded on
// success and applied exactly, with no merging, on failure.
type snapshot struct {
	list   []querycache.Entry
	detail *querycache.Entry
}

func New(entityID string, remote RemoteCall, cfg Config, store querycache.Store, handler *errhandler.Handler) *Mutation {
	if cfg.Transform == nil {
		cfg.Transform = shallowMerge
	}
	return &Mutation{
		entityID: entityID,
		remote:   remote,
		cfg:      cfg,
		store:    store,
		handler:  handler,
	}
}

// Pending reports whether a Trigger call is currently in flight.
func (m *Mutation) Pending() bool { return m.pending.Load() }

// Trigger runs the mutation. The snapshot and the speculative write happen
// synchronously before the remote call is dispatched, so a cache read
// immediately after Trigger starts observes the optimistic value. Concurrent
// triggers on the same entity are not serialized; each one snapshots the
// state as of its own start.
func (m *Mutation) Trigger(ctx context.Context, variables map[string]any) (any, error) {
	m.pending.Store(true)
	defer m.pending.Store(false)

	detailKey := m.cfg.DetailKeyFn(m.entityID)

	// A stale background refetch landing mid-mutation would clobber the
	// speculative write.
	m.store.CancelPending(m.cfg.QueryGroupKey, detailKey)

	snap := m.capture(detailKey)
	m.applySpeculative(variables, detailKey)

	result, err := m.remote(ctx, variables)
	if err != nil {
		m.restore(snap)
		typed := m.handler.Surface(err, map[string]any{
			"operation": m.cfg.OperationLabel + ":" + m.entityID,
		})
		if m.cfg.OnError != nil {
			m.cfg.OnError(typed)
		}
		return nil, typed
	}

	// The optimistic value usually already matches server truth; the
	// invalidation makes that eventual instead of assumed.
	m.store.Invalidate(m.cfg.QueryGroupKey, detailKey, m.cfg.QueryGroupKey.Root())
	if m.cfg.SuccessMessage != "" {
		m.handler.Notifier().Success(m.cfg.SuccessMessage)
	}
	if m.cfg.OnSuccess != nil {
		m.cfg.OnSuccess(result)
	}
	return result, nil
}

func (m *Mutation) capture(detailKey querycache.Key) snapshot {
	snap := snapshot{list: m.store.Entries(m.cfg.QueryGroupKey)}
	if v, ok := m.store.Get(detailKey); ok {
		snap.detail = &querycache.Entry{Key: detailKey, Value: v}
	}
	return snap
}

func (m *Mutation) applySpeculative(variables map[string]any, detailKey querycache.Key) {
	m.store.SetMany(m.cfg.QueryGroupKey, func(_ querycache.Key, value querycache.Value) querycache.Value {
		return m.transformList(variables, value)
	})
	if prior, ok := m.store.Get(detailKey); ok {
		m.store.Set(detailKey, m.cfg.Transform(variables, prior))
	}
}

// transformList replaces the matching item within the list payload's item
// array, leaving everything else untouched. Payloads without a match are
// returned unchanged (nil, for SetMany).
func (m *Mutation) transformList(variables map[string]any, value querycache.Value) querycache.Value {
	items, ok := value[m.cfg.ListItemsField].([]any)
	if !ok {
		return nil
	}
	idx := -1
	for i, raw := range items {
		if item, ok := raw.(map[string]any); ok && item[idField] == m.entityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	nextItems := make([]any, len(items))
	copy(nextItems, items)
	nextItems[idx] = m.cfg.Transform(variables, items[idx].(map[string]any))

	next := make(querycache.Value, len(value))
	for k, v := range value {
		next[k] = v
	}
	next[m.cfg.ListItemsField] = nextItems
	return next
}

func (m *Mutation) restore(snap snapshot) {
	for _, e := range snap.list {
		m.store.Set(e.Key, e.Value)
	}
	if snap.detail != nil {
		m.store.Set(snap.detail.Key, snap.detail.Value)
	}
}

func shallowMerge(variables, prior map[string]any) map[string]any {
	next := make(map[string]any, len(prior)+len(variables))
	for k, v := range prior {
		next[k] = v
	}
	for k, v := range variables {
		next[k] = v
	}
	return next
}
