package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrNotFound is returned when an update or delete names an id that no
// longer exists in the collection, typically from a stale page.
var ErrNotFound = errors.New("entity not found")

// ErrInvalidID is returned when a document carries a non-positive or
// repeated id within one kind.
var ErrInvalidID = errors.New("invalid entity id")

// Entity is the capability set a record needs to live in a Collection.
type Entity[T any] interface {
	EntityID() int
	WithID(id int) T
}

// Collection is the ordered, id-allocating repository for one entity kind.
// Every successful mutation persists the whole portfolio and notifies change
// listeners.
type Collection[T Entity[T]] struct {
	kind   Kind
	owner  *Portfolio
	items  []T
	nextID int
}

func newCollection[T Entity[T]](kind Kind, owner *Portfolio) *Collection[T] {
	return &Collection[T]{kind: kind, owner: owner, nextID: 1}
}

func (c *Collection[T]) Kind() Kind { return c.kind }

// reset replaces the contents and moves the id counter above every existing
// id. The counter never moves backwards so ids freed earlier in the process
// stay retired.
func (c *Collection[T]) reset(items []T) {
	c.items = slices.Clone(items)
	next := 1
	for _, it := range c.items {
		if id := it.EntityID(); id >= next {
			next = id + 1
		}
	}
	c.nextID = max(c.nextID, next)
}

// checkIDs reports the first non-positive or duplicate id in items.
func checkIDs[T Entity[T]](kind Kind, items []T) error {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		id := it.EntityID()
		if id <= 0 {
			return fmt.Errorf("%s id %d: %w", kind.Singular(), id, ErrInvalidID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate %s id %d: %w", kind.Singular(), id, ErrInvalidID)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// repairIDs gives every entry with a non-positive or already used id a fresh
// id above all others. The first holder of an id keeps it. It returns the
// number of entries renumbered.
func repairIDs[T Entity[T]](items []T) int {
	next := 1
	for _, it := range items {
		if id := it.EntityID(); id >= next {
			next = id + 1
		}
	}
	seen := make(map[int]struct{}, len(items))
	fixed := 0
	for i, it := range items {
		id := it.EntityID()
		if _, dup := seen[id]; id <= 0 || dup {
			items[i] = it.WithID(next)
			id = next
			next++
			fixed++
		}
		seen[id] = struct{}{}
	}
	return fixed
}

// Add assigns the next id to draft, appends it and persists.
func (c *Collection[T]) Add(ctx context.Context, draft T) (T, error) {
	c.owner.mu.Lock()
	item := draft.WithID(c.nextID)
	c.nextID++
	c.items = append(c.items, item)
	err := c.owner.persistLocked(ctx)
	c.owner.mu.Unlock()

	c.owner.notify(c.kind)
	if err != nil {
		return item, fmt.Errorf("add %s: %w", c.kind.Singular(), err)
	}
	return item, nil
}

// Update replaces every field of entity id with draft's, keeping the id.
func (c *Collection[T]) Update(ctx context.Context, id int, draft T) (T, error) {
	c.owner.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.owner.mu.Unlock()
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", c.kind.Singular(), id, ErrNotFound)
	}
	item := draft.WithID(id)
	c.items[idx] = item
	err := c.owner.persistLocked(ctx)
	c.owner.mu.Unlock()

	c.owner.notify(c.kind)
	if err != nil {
		return item, fmt.Errorf("update %s %d: %w", c.kind.Singular(), id, err)
	}
	return item, nil
}

// Remove deletes entity id.
func (c *Collection[T]) Remove(ctx context.Context, id int) error {
	c.owner.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.owner.mu.Unlock()
		return fmt.Errorf("delete %s %d: %w", c.kind.Singular(), id, ErrNotFound)
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	err := c.owner.persistLocked(ctx)
	c.owner.mu.Unlock()

	c.owner.notify(c.kind)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.kind.Singular(), id, err)
	}
	return nil
}

// List returns the entities in insertion order. The slice is a copy.
func (c *Collection[T]) List() []T {
	c.owner.mu.RLock()
	defer c.owner.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = it.WithID(it.EntityID())
	}
	return out
}

func (c *Collection[T]) FindByID(id int) (T, bool) {
	c.owner.mu.RLock()
	defer c.owner.mu.RUnlock()
	if idx := c.indexLocked(id); idx >= 0 {
		it := c.items[idx]
		return it.WithID(it.EntityID()), true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.owner.mu.RLock()
	defer c.owner.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) indexLocked(id int) int {
	return slices.IndexFunc(c.items, func(it T) bool { return it.EntityID() == id })
}
