// Package report delivers run reports to the monitoring collaborator.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Pusher posts run reports to a monitoring webhook. Delivery is best
// effort: a failed push is logged by the caller, never fails the run.
type Pusher struct {
	client *resty.Client
	url    string
}

// NewPusher builds a pusher for the given webhook URL.
func NewPusher(url string) *Pusher {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &Pusher{client: client, url: url}
}

// Push delivers one report as JSON.
func (p *Pusher) Push(ctx context.Context, r models.RunReport) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(r).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("push report for %s: %w", r.Platform, err)
	}
	if resp.IsError() {
		return fmt.Errorf("push report for %s: status %d", r.Platform, resp.StatusCode())
	}
	return nil
}

// Log writes a structured summary of one report.
func Log(logger *slog.Logger, r models.RunReport) {
	logger.Info("run report",
		slog.String("platform", r.Platform),
		slog.Int("products_found", r.Found),
		slog.Int("products_added", r.Added),
		slog.Int("products_updated", r.Updated),
		slog.Int("products_deactivated", r.Deactivated),
		slog.Int("errors_count", r.Errors),
		slog.Duration("duration", r.Duration),
	)
}
