// Package store keeps a locally observable mirror of one server-backed
// collection. Each store exposes three observables (data, loading, error)
// plus CRUD operations against the gateway. The server's returned
// representation always wins: create and update adopt what the server
// echoes back, not what the caller supplied.
//
// Each collection has a single writer role (the store itself); views only
// read the observables. Mutations against different collections are fully
// independent. A superseding fetch on the same collection is not
// cancelled; the later completion simply overwrites.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tiendasuplementacion/storefront/internal/domain"
	"github.com/tiendasuplementacion/storefront/internal/gateway"
	"github.com/tiendasuplementacion/storefront/internal/observable"
)

// Collection is the observable state shared by every store: the mirrored
// records, the loading flag and the error channel. The version counter
// increments on every committed change and anchors optimistic rollbacks.
type Collection[T domain.Entity] struct {
	log *zap.Logger
	sfg singleflight.Group

	mu      sync.Mutex
	version uint64

	data    *observable.Value[[]T]
	loading *observable.Value[bool]
	err     *observable.Value[error]
}

func NewCollection[T domain.Entity](log *zap.Logger) *Collection[T] {
	return &Collection[T]{
		log:     log,
		data:    observable.NewValue[[]T](nil),
		loading: observable.NewValue(false),
		err:     observable.NewValue[error](nil),
	}
}

func (c *Collection[T]) Data() *observable.Value[[]T]     { return c.data }
func (c *Collection[T]) Loading() *observable.Value[bool] { return c.loading }
func (c *Collection[T]) Err() *observable.Value[error]    { return c.err }

// begin marks the start of a remote operation: spinner on, stale error
// cleared.
func (c *Collection[T]) begin() {
	c.loading.Set(true)
	c.err.Set(nil)
}

// finish runs on every path, success or failure.
func (c *Collection[T]) finish() {
	c.loading.Set(false)
}

func (c *Collection[T]) fail(op string, err error) {
	c.log.Warn("store operation failed", zap.String("op", op), zap.Error(err))
	c.err.Set(err)
}

// commit applies mutate to a copy of the current records and publishes
// the result as a new version.
func (c *Collection[T]) commit(mutate func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.data.Set(mutate(cloneSlice(c.data.Get())))
}

// FetchFrom replaces the collection with the result of fetch. key names
// the query; concurrent calls with the same key are collapsed to a single
// remote call, while distinct keys each invoke their own fetch. The later
// of two non-overlapping fetches wins by overwriting.
//
// A collapsed call runs under the context of the caller that started it.
// A parked duplicate whose own ctx is cancelled returns ctx.Err without
// touching the collection; the in-flight call keeps going.
func (c *Collection[T]) FetchFrom(ctx context.Context, key string, fetch func(context.Context) ([]T, error)) error {
	c.begin()
	defer c.finish()

	ch := c.sfg.DoChan(key, func() (any, error) {
		return fetch(ctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.fail("fetch", res.Err)
			return res.Err
		}
		items := res.Val.([]T)
		c.commit(func([]T) []T { return cloneSlice(items) })
		return nil
	}
}

// Reset drops all local state. Used on logout.
func (c *Collection[T]) Reset() {
	c.commit(func([]T) []T { return nil })
	c.loading.Set(false)
	c.err.Set(nil)
}

// Store adds the CRUD operations of a gateway resource on top of a
// Collection. Instantiated once per resource type by the session.
type Store[T domain.Entity] struct {
	*Collection[T]
	res gateway.Resource[T]
}

func New[T domain.Entity](res gateway.Resource[T], log *zap.Logger) *Store[T] {
	return &Store[T]{
		Collection: NewCollection[T](log),
		res:        res,
	}
}

// FetchAll replaces the collection with the server's list.
func (s *Store[T]) FetchAll(ctx context.Context) error {
	return s.FetchFrom(ctx, "list", s.res.List)
}

// FetchByID fetches one record and merges it into the collection by id.
func (s *Store[T]) FetchByID(ctx context.Context, id int64) (T, error) {
	s.begin()
	defer s.finish()

	rec, err := s.res.Get(ctx, id)
	if err != nil {
		s.fail("get", err)
		return rec, err
	}
	s.commit(func(items []T) []T { return mergeByID(items, rec) })
	return rec, nil
}

// Create posts the entity and merges the server's representation (with
// its generated id) into the collection.
func (s *Store[T]) Create(ctx context.Context, entity T) (T, error) {
	s.begin()
	defer s.finish()

	created, err := s.res.Create(ctx, entity)
	if err != nil {
		s.fail("create", err)
		return created, err
	}
	s.commit(func(items []T) []T { return mergeByID(items, created) })
	return created, nil
}

// Update replaces exactly the matching record with the server's
// representation, preserving the order of the rest.
func (s *Store[T]) Update(ctx context.Context, id int64, entity T) (T, error) {
	s.begin()
	defer s.finish()

	updated, err := s.res.Update(ctx, id, entity)
	if err != nil {
		s.fail("update", err)
		return updated, err
	}
	s.commit(func(items []T) []T { return mergeByID(items, updated) })
	return updated, nil
}

// Delete removes the record remotely, then locally by id.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	s.begin()
	defer s.finish()

	if err := s.res.Delete(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}
	s.commit(func(items []T) []T { return removeByID(items, id) })
	return nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func indexByID[T domain.Entity](items []T, id int64) int {
	for i := range items {
		if items[i].EntityID() == id {
			return i
		}
	}
	return -1
}

func mergeByID[T domain.Entity](items []T, rec T) []T {
	if i := indexByID(items, rec.EntityID()); i >= 0 {
		items[i] = rec
		return items
	}
	return append(items, rec)
}

func removeByID[T domain.Entity](items []T, id int64) []T {
	if i := indexByID(items, id); i >= 0 {
		return append(items[:i], items[i+1:]...)
	}
	return items
}
