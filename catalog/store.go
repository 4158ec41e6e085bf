// Package catalog persists product state and reconciles freshly scraped
// records against it. The engine only proposes transitions (add, update,
// deactivate); rows are never deleted, keeping the history auditable.
package catalog

import (
	"context"
	"time"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Store is the persisted catalog the engine reconciles against.
type Store interface {
	// Get returns the entry for (platform, sku), or (nil, nil) when absent.
	Get(ctx context.Context, platform, sku string) (*models.CatalogEntry, error)

	// Upsert inserts or replaces the entry keyed by (platform, sku).
	Upsert(ctx context.Context, entry *models.CatalogEntry) error

	// MarkInactiveUnseenSince flips Active to false on every active entry
	// for the platform whose LastSeenAt predates runStart, returning how
	// many entries changed.
	MarkInactiveUnseenSince(ctx context.Context, platform string, runStart time.Time) (int, error)

	Close() error
}
