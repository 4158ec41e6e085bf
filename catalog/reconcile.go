package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// ErrMissingSKU marks a record that cannot be keyed into the catalog.
var ErrMissingSKU = errors.New("catalog: record has no sku")

// Outcome is the decision made for one reconciled record.
type Outcome int

const (
	// OutcomeAdded covers both first appearances and the reactivation of a
	// previously deactivated entry.
	OutcomeAdded Outcome = iota
	// OutcomeUpdated means a tracked field changed.
	OutcomeUpdated
	// OutcomeUnchanged means only the heartbeat timestamp moved.
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Reconciler maps extracted records onto the stored catalog. Within a run,
// a duplicate SKU simply reconciles again against its own earlier write, so
// the most recently extracted record wins.
type Reconciler struct {
	store Store
	now   func() time.Time
}

// NewReconciler builds a reconciler over the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// Reconcile decides add/update/heartbeat for one record and persists the
// result. The tracked diff fields are price, sale price, title, inventory
// status, rating, review count, and images.
func (r *Reconciler) Reconcile(ctx context.Context, rec *models.ProductRecord) (Outcome, error) {
	if rec.SKU == "" {
		return OutcomeUnchanged, ErrMissingSKU
	}

	prev, err := r.store.Get(ctx, rec.Platform, rec.SKU)
	if err != nil {
		return OutcomeUnchanged, err
	}

	now := r.now()
	next := entryFromRecord(rec, now)

	if prev == nil {
		next.FirstSeenAt = now
		if err := r.store.Upsert(ctx, next); err != nil {
			return OutcomeUnchanged, err
		}
		return OutcomeAdded, nil
	}

	next.FirstSeenAt = prev.FirstSeenAt

	// A delisted product showing up again counts as an add, on its
	// existing key.
	if !prev.Active {
		if err := r.store.Upsert(ctx, next); err != nil {
			return OutcomeUnchanged, err
		}
		return OutcomeAdded, nil
	}

	if trackedFieldsDiffer(prev, next) {
		if err := r.store.Upsert(ctx, next); err != nil {
			return OutcomeUnchanged, err
		}
		return OutcomeUpdated, nil
	}

	// Heartbeat: refresh last_seen_at only.
	prev.LastSeenAt = now
	if err := r.store.Upsert(ctx, prev); err != nil {
		return OutcomeUnchanged, err
	}
	return OutcomeUnchanged, nil
}

// DeactivateUnseen soft-removes entries for the platform that this run
// never touched. Called once after a full pass over all of the platform's
// categories.
func (r *Reconciler) DeactivateUnseen(ctx context.Context, platform string, runStart time.Time) (int, error) {
	return r.store.MarkInactiveUnseenSince(ctx, platform, runStart)
}

func entryFromRecord(rec *models.ProductRecord, now time.Time) *models.CatalogEntry {
	return &models.CatalogEntry{
		Platform:        rec.Platform,
		SKU:             rec.SKU,
		Title:           rec.Title,
		Description:     rec.Description,
		Price:           rec.Price,
		SalePrice:       rec.SalePrice,
		Currency:        rec.Currency,
		InventoryStatus: rec.InventoryStatus,
		Rating:          rec.Rating,
		ReviewCount:     rec.ReviewCount,
		Images:          append([]string(nil), rec.Images...),
		URL:             rec.URL,
		Active:          true,
		LastSeenAt:      now,
	}
}

func trackedFieldsDiffer(prev, next *models.CatalogEntry) bool {
	if prev.Price != next.Price ||
		prev.SalePrice != next.SalePrice ||
		prev.Title != next.Title ||
		prev.InventoryStatus != next.InventoryStatus ||
		prev.Rating != next.Rating ||
		prev.ReviewCount != next.ReviewCount {
		return true
	}
	if len(prev.Images) != len(next.Images) {
		return true
	}
	for i := range prev.Images {
		if prev.Images[i] != next.Images[i] {
			return true
		}
	}
	return false
}
