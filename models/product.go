// Package models defines data structures shared across the engine.
package models

import "time"

// CategoryTarget is one listing URL to crawl. It belongs to a single
// platform and is immutable input to a run.
type CategoryTarget struct {
	Platform string `json:"platform"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// PageContent is the raw result of fetching one page. It is owned by the
// fetch call that produced it and discarded after extraction.
type PageContent struct {
	URL       string
	Body      []byte
	Strategy  string
	Status    int
	FetchedAt time.Time
}

// ProductRecord is one extracted product, keyed by (Platform, SKU).
// SKU must be non-empty; records failing that are dropped before
// reconciliation.
type ProductRecord struct {
	Platform        string            `json:"platform"`
	SKU             string            `json:"sku"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Price           float64           `json:"price"`
	SalePrice       float64           `json:"sale_price,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	Offers          []string          `json:"offers,omitempty"`
	InventoryStatus string            `json:"inventory_status,omitempty"`
	Rating          float64           `json:"rating,omitempty"`
	ReviewCount     int               `json:"review_count,omitempty"`
	Images          []string          `json:"images,omitempty"`
	Videos          []string          `json:"videos,omitempty"`
	Variants        []string          `json:"variants,omitempty"`
	Specs           map[string]string `json:"specs,omitempty"`
	CategoryPath    []string          `json:"category_path,omitempty"`
	URL             string            `json:"url"`
	ScrapedAt       time.Time         `json:"scraped_at"`
}

// CatalogEntry is the persisted prior state of a product. Entries are never
// deleted by the engine; delisted products are soft-deactivated instead.
type CatalogEntry struct {
	Platform        string
	SKU             string
	Title           string
	Description     string
	Price           float64
	SalePrice       float64
	Currency        string
	InventoryStatus string
	Rating          float64
	ReviewCount     int
	Images          []string
	URL             string
	Active          bool
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}

// RunStats accumulates counters for one platform run. It is owned by the
// goroutine driving that run and never shared across runs.
type RunStats struct {
	Found        int
	Added        int
	Updated      int
	Unchanged    int
	Deactivated  int
	Errors       int
	Retries      int
	PagesVisited int
	Escalations  int
}

// RunReport is the flat record handed to monitoring at the end of a run.
type RunReport struct {
	Platform    string        `json:"platform"`
	Found       int           `json:"products_found"`
	Added       int           `json:"products_added"`
	Updated     int           `json:"products_updated"`
	Deactivated int           `json:"products_deactivated"`
	Errors      int           `json:"errors_count"`
	Duration    time.Duration `json:"duration"`
	StartedAt   time.Time     `json:"started_at"`
}

// Report builds the monitoring record for a finished run.
func (s *RunStats) Report(platform string, start time.Time) RunReport {
	return RunReport{
		Platform:    platform,
		Found:       s.Found,
		Added:       s.Added,
		Updated:     s.Updated,
		Deactivated: s.Deactivated,
		Errors:      s.Errors,
		Duration:    time.Since(start),
		StartedAt:   start,
	}
}
