// Package adapter defines the contract between the scraping engine and
// platform-specific extraction code. The engine never inspects how an
// adapter parses a page; it only consumes the URLs and records it returns.
package adapter

import (
	"time"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// FetchMode selects how pages for a platform are obtained.
type FetchMode string

const (
	// FetchHTTP issues plain HTTP requests.
	FetchHTTP FetchMode = "http"
	// FetchRendered routes every fetch through the headless browser.
	FetchRendered FetchMode = "rendered"
)

// PaginationType selects how listing pages are traversed.
type PaginationType string

const (
	// PaginationRegular increments a page number until the next-page
	// affordance disappears.
	PaginationRegular PaginationType = "regular"
	// PaginationCursor follows an opaque continuation token supplied by
	// the previous page's extraction.
	PaginationCursor PaginationType = "cursor"
)

// Pagination describes how a platform's listing pages are walked.
// Zero values fall back to the engine-wide defaults.
type Pagination struct {
	Type                 PaginationType
	MaxPages             int
	PageParam            string
	MaxConsecutiveErrors int
	DelayMin             time.Duration
	DelayMax             time.Duration
}

// PlatformConfig is the configuration block an adapter exchanges with the
// engine at setup.
type PlatformConfig struct {
	Name       string
	FetchMode  FetchMode
	Pagination Pagination
}

// ListResult is what an adapter extracts from one listing page.
type ListResult struct {
	// ProductURLs are the candidate product pages found on this listing
	// page. The engine deduplicates them across the run.
	ProductURLs []string
	// HasMore reports whether a next-page affordance exists (regular
	// pagination only).
	HasMore bool
	// NextCursor is the continuation token for the next page (cursor
	// pagination only); empty means the listing is exhausted.
	NextCursor string
}

// Adapter turns raw page content into product URLs and structured records.
// Implementations must be pure with respect to the page content: they never
// fetch anything themselves.
type Adapter interface {
	Config() PlatformConfig

	// ListProductURLs extracts candidate product URLs from a listing page.
	ListProductURLs(page *models.PageContent, categoryURL string) (ListResult, error)

	// ExtractProduct builds a record from a product page. Returning
	// (nil, nil) means the page holds no product; that is not an error.
	ExtractProduct(page *models.PageContent, productURL string) (*models.ProductRecord, error)
}
