// Package collection implements per-user ordered collections (cart, favorites) persisted as
// JSON arrays in the device key-value store under "<name>_<userID>".
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-client/pkg/errors"
	"github.com/angelmondragon/storefront-client/pkg/keylock"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/metrics"
)

const (
	recoveryStorage   = "storage_error"
	recoveryParse     = "parse"
	recoveryNotArray  = "not_array"
	recoveryElement   = "element"
	recoveryDuplicate = "duplicate"
)

// Options configures a collection. Key must return a non-empty identity per entry.
// Merge combines an existing entry with an incoming one on Upsert; nil replaces.
type Options[T any] struct {
	Name    string
	Key     func(T) string
	Merge   func(existing, incoming T) T
	Locker  *keylock.Locker
	Logger  *logger.Logger
	Metrics *metrics.CollectionMetrics
}

// Collection is the single source of truth for one named per-user collection.
type Collection[T any] struct {
	name    string
	key     func(T) string
	merge   func(existing, incoming T) T
	store   kvstore.Store
	locker  *keylock.Locker
	logg    *logger.Logger
	metrics *metrics.CollectionMetrics
}

// New validates opts and returns a collection backed by store. A nil Locker gets a private one.
func New[T any](store kvstore.Store, opts Options[T]) (*Collection[T], error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if opts.Key == nil {
		return nil, fmt.Errorf("key func is required")
	}
	locker := opts.Locker
	if locker == nil {
		locker = keylock.New()
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Collection[T]{
		name:    name,
		key:     opts.Key,
		merge:   opts.Merge,
		store:   store,
		locker:  locker,
		logg:    logg,
		metrics: opts.Metrics,
	}, nil
}

// Name returns the collection name used in storage keys.
func (c *Collection[T]) Name() string {
	return c.name
}

// StorageKey returns the key holding userID's entries.
func (c *Collection[T]) StorageKey(userID string) string {
	return c.name + "_" + userID
}

// Load returns userID's entries in display order. It never fails: a missing user, a missing
// value, an unreadable store or a payload that is not a JSON array of entries all read as empty.
func (c *Collection[T]) Load(ctx context.Context, userID string) []T {
	if userID == "" {
		return []T{}
	}
	items, err := c.read(ctx, userID)
	if err != nil {
		c.recover(ctx, userID, recoveryStorage, err)
		return []T{}
	}
	return items
}

// Find returns the entry with key, if any.
func (c *Collection[T]) Find(ctx context.Context, userID, key string) (T, bool) {
	var zero T
	for _, item := range c.Load(ctx, userID) {
		if c.key(item) == key {
			return item, true
		}
	}
	return zero, false
}

// Upsert merges or replaces an existing entry at its position, or appends a new one.
func (c *Collection[T]) Upsert(ctx context.Context, userID string, entry T) ([]T, error) {
	return c.mutate(ctx, userID, "upsert", func(items []T) ([]T, bool, error) {
		k := c.key(entry)
		if k == "" {
			return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "entry key is required")
		}
		if idx := c.indexOf(items, k); idx >= 0 {
			if c.merge != nil {
				items[idx] = c.merge(items[idx], entry)
			} else {
				items[idx] = entry
			}
			return items, true, nil
		}
		return append(items, entry), true, nil
	})
}

// Remove drops the entry with key. Removing an absent key is a no-op.
func (c *Collection[T]) Remove(ctx context.Context, userID, key string) ([]T, error) {
	return c.mutate(ctx, userID, "remove", func(items []T) ([]T, bool, error) {
		idx := c.indexOf(items, key)
		if idx < 0 {
			return items, false, nil
		}
		return append(items[:idx], items[idx+1:]...), true, nil
	})
}

// Toggle removes entry if present, otherwise appends it, and reports the resulting membership.
func (c *Collection[T]) Toggle(ctx context.Context, userID string, entry T) (bool, error) {
	member := false
	_, err := c.mutate(ctx, userID, "toggle", func(items []T) ([]T, bool, error) {
		k := c.key(entry)
		if k == "" {
			return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "entry key is required")
		}
		if idx := c.indexOf(items, k); idx >= 0 {
			return append(items[:idx], items[idx+1:]...), true, nil
		}
		member = true
		return append(items, entry), true, nil
	})
	if err != nil {
		return false, err
	}
	return member, nil
}

// Update runs fn over the current entries and persists what it returns.
// fn may reuse the slice it is given. A result that encodes the same as the input is not written.
func (c *Collection[T]) Update(ctx context.Context, userID string, fn func([]T) ([]T, error)) ([]T, error) {
	return c.mutate(ctx, userID, "update", func(items []T) ([]T, bool, error) {
		before, err := json.Marshal(items)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+c.name)
		}
		next, err := fn(items)
		if err != nil {
			return nil, false, err
		}
		next = c.dedupe(ctx, next)
		after, err := json.Marshal(next)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+c.name)
		}
		return next, !bytes.Equal(before, after), nil
	})
}

// Save overwrites userID's entries with items (last write wins).
func (c *Collection[T]) Save(ctx context.Context, userID string, items []T) error {
	_, err := c.mutate(ctx, userID, "save", func([]T) ([]T, bool, error) {
		return c.dedupe(ctx, items), true, nil
	})
	return err
}

// Clear deletes userID's storage key.
func (c *Collection[T]) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.NotAuthenticated("sign in to manage your " + c.name)
	}
	unlock, err := c.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := c.store.Remove(ctx, c.StorageKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear "+c.name)
	}
	c.metrics.IncMutation(c.name, "clear")
	return nil
}

func (c *Collection[T]) mutate(ctx context.Context, userID, op string, fn func([]T) ([]T, bool, error)) ([]T, error) {
	if userID == "" {
		return nil, pkgerrors.NotAuthenticated("sign in to manage your " + c.name)
	}
	unlock, err := c.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, err := c.read(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load "+c.name)
	}
	next, changed, err := fn(items)
	if err != nil {
		return nil, err
	}
	if !changed {
		if next == nil {
			next = []T{}
		}
		return next, nil
	}
	if next == nil {
		next = []T{}
	}
	if err := c.write(ctx, userID, next); err != nil {
		return nil, err
	}
	c.metrics.IncMutation(c.name, op)
	return next, nil
}

func (c *Collection[T]) lock(ctx context.Context, userID string) (func(), error) {
	start := time.Now()
	unlock, err := c.locker.Lock(ctx, c.StorageKey(userID))
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveLockWait(c.name, time.Since(start))
	return unlock, nil
}

// read decodes userID's stored entries. Payloads that do not decode read as empty and are
// logged; only store failures are returned, so mutations never overwrite data they could not see.
func (c *Collection[T]) read(ctx context.Context, userID string) ([]T, error) {
	raw, err := c.store.Get(ctx, c.StorageKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if !json.Valid(trimmed) {
		c.recover(ctx, userID, recoveryParse, nil)
		return []T{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.recover(ctx, userID, recoveryNotArray, nil)
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		c.recover(ctx, userID, recoveryElement, err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return c.dedupe(ctx, items), nil
}

func (c *Collection[T]) write(ctx context.Context, userID string, items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+c.name)
	}
	if err := c.store.Set(ctx, c.StorageKey(userID), string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "save "+c.name)
	}
	return nil
}

// dedupe keeps the first entry per key and drops entries without a key.
func (c *Collection[T]) dedupe(ctx context.Context, items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	dropped := false
	for _, item := range items {
		k := c.key(item)
		if k == "" {
			dropped = true
			continue
		}
		if _, dup := seen[k]; dup {
			dropped = true
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	if dropped {
		c.metrics.IncRecovery(c.name, recoveryDuplicate)
		c.logg.Warn(c.logg.WithCollection(ctx, c.name), "collection.dropped_invalid_entries")
	}
	return out
}

func (c *Collection[T]) indexOf(items []T, key string) int {
	for i, item := range items {
		if c.key(item) == key {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) recover(ctx context.Context, userID, reason string, err error) {
	c.metrics.IncRecovery(c.name, reason)
	ctx = c.logg.WithFields(c.logg.WithCollection(ctx, c.name), map[string]any{
		"user_id": userID,
		"reason":  reason,
	})
	if err != nil {
		ctx = c.logg.WithField(ctx, "cause", err.Error())
	}
	c.logg.Warn(ctx, "collection.load_recovered")
}
