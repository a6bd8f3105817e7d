package seatmap

import (
	"context"
	"sync"
)

// Backend stores studio mappings and display names. Replace must swap the whole
// entry for a studio; partial updates are never issued.
type Backend interface {
	Replace(ctx context.Context, studioID string, mapping Mapping) error
	Mapping(ctx context.Context, studioID string) (Mapping, bool, error)
	SetName(ctx context.Context, studioID, name string) error
	Name(ctx context.Context, studioID string) (string, bool, error)
}

// Cache translates between seat numbers and backend seat ids per studio.
// Entries never expire; they are only overwritten by Refresh.
type Cache struct {
	backend Backend
}

func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

func NewMemory() *Cache {
	return New(NewMemoryBackend())
}

// Refresh rebuilds the mapping of a studio from a freshly fetched seat list.
func (c *Cache) Refresh(ctx context.Context, studioID string, seats []Seat) error {
	return c.backend.Replace(ctx, studioID, NewMapping(seats))
}

func (c *Cache) SetName(ctx context.Context, studioID, name string) error {
	return c.backend.SetName(ctx, studioID, name)
}

func (c *Cache) Name(ctx context.Context, studioID string) (string, bool) {
	name, ok, err := c.backend.Name(ctx, studioID)
	if err != nil {
		return "", false
	}
	return name, ok
}

func (c *Cache) Has(ctx context.Context, studioID string) bool {
	_, ok, err := c.backend.Mapping(ctx, studioID)
	return err == nil && ok
}

// Mapping returns the cached table for a studio; ok is false when none is cached.
func (c *Cache) Mapping(ctx context.Context, studioID string) (Mapping, bool, error) {
	return c.backend.Mapping(ctx, studioID)
}

// ResolveIDs maps seat numbers to ids. Unresolved numbers are silently omitted, so
// callers compare lengths before trusting the result.
func (c *Cache) ResolveIDs(ctx context.Context, studioID string, numbers []string) ([]int64, error) {
	mapping, ok, err := c.backend.Mapping(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []int64{}, nil
	}
	return mapping.IDs(numbers), nil
}

// ResolveNumbers maps ids back to seat numbers. It always returns one label per id;
// the error reports a backend failure, in which case every label is a placeholder.
func (c *Cache) ResolveNumbers(ctx context.Context, studioID string, ids []int64) ([]string, error) {
	mapping, _, err := c.backend.Mapping(ctx, studioID)
	if err != nil {
		return Mapping(nil).Numbers(ids), err
	}
	return mapping.Numbers(ids), nil
}

type MemoryBackend struct {
	mu       sync.RWMutex
	mappings map[string]Mapping
	names    map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		mappings: map[string]Mapping{},
		names:    map[string]string{},
	}
}

func (b *MemoryBackend) Replace(ctx context.Context, studioID string, mapping Mapping) error {
	fresh := mapping.clone()
	b.mu.Lock()
	b.mappings[studioID] = fresh
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Mapping(ctx context.Context, studioID string) (Mapping, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	mapping, ok := b.mappings[studioID]
	if !ok {
		return nil, false, nil
	}
	return mapping.clone(), true, nil
}

func (b *MemoryBackend) SetName(ctx context.Context, studioID, name string) error {
	b.mu.Lock()
	b.names[studioID] = name
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Name(ctx context.Context, studioID string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	name, ok := b.names[studioID]
	return name, ok, nil
}
