//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=cache
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Query domains whose cached collections can be invalidated
const (
	DomainTrips   = "trips"
	DomainDrivers = "drivers"
	DomainClients = "clients"
)

// Scope names used in scoped keys
const (
	ScopeProgram         = "program"
	ScopeCorporateClient = "corporate-client"
)

// Key addresses one cached query result, e.g. trips or trips/program/p1
type Key struct {
	Domain string
	Scope  string
	ID     string
}

// Collection returns the key of the unscoped collection for domain
func Collection(domain string) Key {
	return Key{Domain: domain}
}

// Scoped returns the key of the collection for domain narrowed to scope/id
func Scoped(domain, scope, id string) Key {
	return Key{Domain: domain, Scope: scope, ID: id}
}

// String renders the key as a slash-separated path
func (k Key) String() string {
	if k.Scope == "" {
		return k.Domain
	}

	return strings.Join([]string{k.Domain, k.Scope, k.ID}, "/")
}

// KeyStrings renders keys in order
func KeyStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key.String()
	}

	return out
}

// ParseKey is the inverse of Key.String
func ParseKey(s string) Key {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 3 {
		return Key{Domain: parts[0]}
	}

	return Key{Domain: parts[0], Scope: parts[1], ID: parts[2]}
}

// Invalidator marks cached query results as stale so they are refetched on next use
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...Key) error
	InvalidateAll(ctx context.Context) error
}

// Memory tracks fetched keys and which of them are stale
type Memory struct {
	mu      sync.RWMutex
	tracked map[Key]bool
	stale   map[Key]bool
}

// NewMemory creates an empty in-process tracker
func NewMemory() *Memory {
	return &Memory{
		tracked: make(map[Key]bool),
		stale:   make(map[Key]bool),
	}
}

// Track records that key has been fetched and is fresh
func (m *Memory) Track(keys ...Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		m.tracked[key] = true
		delete(m.stale, key)
	}
}

// MarkFresh clears the stale mark after a refetch
func (m *Memory) MarkFresh(key Key) {
	m.Track(key)
}

// Invalidate marks keys stale, tracking them if they were unknown
func (m *Memory) Invalidate(_ context.Context, keys ...Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		m.tracked[key] = true
		m.stale[key] = true
	}

	return nil
}

// InvalidateAll marks every tracked key stale
func (m *Memory) InvalidateAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.tracked {
		m.stale[key] = true
	}

	return nil
}

// IsStale reports whether key must be refetched
func (m *Memory) IsStale(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stale[key]
}

// Stale returns the stale keys sorted by their string form
func (m *Memory) Stale() []Key {
	m.mu.RLock()

	keys := make([]Key, 0, len(m.stale))
	for key := range m.stale {
		keys = append(keys, key)
	}

	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	return keys
}
