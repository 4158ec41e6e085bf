package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// PostgresStore persists catalog entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, bootstraps the schema, and returns a
// ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_entries (
			platform         VARCHAR(50)   NOT NULL,
			sku              TEXT          NOT NULL,
			title            TEXT          NOT NULL DEFAULT '',
			description      TEXT          NOT NULL DEFAULT '',
			price            NUMERIC(12,2) NOT NULL DEFAULT 0,
			sale_price       NUMERIC(12,2) NOT NULL DEFAULT 0,
			currency         VARCHAR(8)    NOT NULL DEFAULT '',
			inventory_status TEXT          NOT NULL DEFAULT '',
			rating           NUMERIC(4,2)  NOT NULL DEFAULT 0,
			review_count     INTEGER       NOT NULL DEFAULT 0,
			images           TEXT[]        NOT NULL DEFAULT '{}',
			url              TEXT          NOT NULL DEFAULT '',
			active           BOOLEAN       NOT NULL DEFAULT TRUE,
			first_seen_at    TIMESTAMPTZ   NOT NULL,
			last_seen_at     TIMESTAMPTZ   NOT NULL,
			PRIMARY KEY (platform, sku)
		);

		CREATE INDEX IF NOT EXISTS idx_catalog_platform_active ON catalog_entries(platform, active);
		CREATE INDEX IF NOT EXISTS idx_catalog_last_seen       ON catalog_entries(platform, last_seen_at);
	`)
	return err
}

// Get looks up one entry by its (platform, sku) key.
func (ps *PostgresStore) Get(ctx context.Context, platform, sku string) (*models.CatalogEntry, error) {
	row := ps.db.QueryRowContext(ctx, `
		SELECT platform, sku, title, description, price, sale_price, currency,
		       inventory_status, rating, review_count, images, url, active,
		       first_seen_at, last_seen_at
		FROM catalog_entries
		WHERE platform = $1 AND sku = $2
	`, platform, sku)

	var entry models.CatalogEntry
	err := row.Scan(
		&entry.Platform, &entry.SKU, &entry.Title, &entry.Description,
		&entry.Price, &entry.SalePrice, &entry.Currency,
		&entry.InventoryStatus, &entry.Rating, &entry.ReviewCount,
		pq.Array(&entry.Images), &entry.URL, &entry.Active,
		&entry.FirstSeenAt, &entry.LastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s/%s: %w", platform, sku, err)
	}
	return &entry, nil
}

// Upsert writes the entry, replacing any previous state for its key.
func (ps *PostgresStore) Upsert(ctx context.Context, entry *models.CatalogEntry) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (
			platform, sku, title, description, price, sale_price, currency,
			inventory_status, rating, review_count, images, url, active,
			first_seen_at, last_seen_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (platform, sku) DO UPDATE SET
			title            = EXCLUDED.title,
			description      = EXCLUDED.description,
			price            = EXCLUDED.price,
			sale_price       = EXCLUDED.sale_price,
			currency         = EXCLUDED.currency,
			inventory_status = EXCLUDED.inventory_status,
			rating           = EXCLUDED.rating,
			review_count     = EXCLUDED.review_count,
			images           = EXCLUDED.images,
			url              = EXCLUDED.url,
			active           = EXCLUDED.active,
			last_seen_at     = EXCLUDED.last_seen_at
	`,
		entry.Platform, entry.SKU, entry.Title, entry.Description,
		entry.Price, entry.SalePrice, entry.Currency,
		entry.InventoryStatus, entry.Rating, entry.ReviewCount,
		pq.Array(entry.Images), entry.URL, entry.Active,
		entry.FirstSeenAt, entry.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s/%s: %w", entry.Platform, entry.SKU, err)
	}
	return nil
}

// MarkInactiveUnseenSince soft-deactivates entries not refreshed this run.
func (ps *PostgresStore) MarkInactiveUnseenSince(ctx context.Context, platform string, runStart time.Time) (int, error) {
	res, err := ps.db.ExecContext(ctx, `
		UPDATE catalog_entries
		SET active = FALSE
		WHERE platform = $1 AND active AND last_seen_at < $2
	`, platform, runStart)
	if err != nil {
		return 0, fmt.Errorf("postgres: mark inactive for %s: %w", platform, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: rows affected: %w", err)
	}
	return int(n), nil
}

// Close releases the connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
