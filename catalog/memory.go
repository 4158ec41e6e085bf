package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.CatalogEntry
}

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*models.CatalogEntry)}
}

func key(platform, sku string) string {
	return platform + "\x00" + sku
}

// Get returns a copy of the stored entry, or nil when absent.
func (m *MemoryStore) Get(_ context.Context, platform, sku string) (*models.CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key(platform, sku)]
	if !ok {
		return nil, nil
	}
	return cloneEntry(entry), nil
}

// Upsert stores a copy of entry under its (platform, sku) key.
func (m *MemoryStore) Upsert(_ context.Context, entry *models.CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key(entry.Platform, entry.SKU)] = cloneEntry(entry)
	return nil
}

// MarkInactiveUnseenSince soft-deactivates entries not refreshed this run.
func (m *MemoryStore) MarkInactiveUnseenSince(_ context.Context, platform string, runStart time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := 0
	for _, entry := range m.entries {
		if entry.Platform == platform && entry.Active && entry.LastSeenAt.Before(runStart) {
			entry.Active = false
			changed++
		}
	}
	return changed, nil
}

func (m *MemoryStore) Close() error { return nil }

// Len reports how many entries the store holds.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cloneEntry(entry *models.CatalogEntry) *models.CatalogEntry {
	clone := *entry
	clone.Images = append([]string(nil), entry.Images...)
	return &clone
}
