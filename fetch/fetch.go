// Package fetch obtains raw page content for the engine. Two strategies
// implement the same contract: Direct issues plain HTTP requests with a
// rotated identity, Rendered executes the page through headless Chrome.
package fetch

import (
	"context"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Strategy names as recorded on PageContent.
const (
	StrategyDirect   = "direct"
	StrategyRendered = "rendered"
)

// Strategy obtains raw page content for a URL.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url string) (*models.PageContent, error)
}
