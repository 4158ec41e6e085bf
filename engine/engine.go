// Package engine orchestrates scraping runs: it walks paginated listings,
// fetches pages under retry and wall-clock budgets, and reconciles the
// extracted records into the catalog.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rajtiwarikmw/aethyrtech/adapter"
	"github.com/rajtiwarikmw/aethyrtech/catalog"
	"github.com/rajtiwarikmw/aethyrtech/config"
	"github.com/rajtiwarikmw/aethyrtech/fetch"
	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Engine coordinates one scraping run per platform. Platforms run as
// concurrent isolated workers; within a platform everything is sequential
// to respect per-site politeness delays.
type Engine struct {
	cfg     *config.Config
	store   catalog.Store
	metrics *Metrics
	log     *slog.Logger

	// Strategy constructors, overridable in tests.
	newDirect   func() (fetch.Strategy, error)
	newRendered func() fetch.Strategy
}

// New builds an engine over the given catalog store.
func New(cfg *config.Config, store catalog.Store, metrics *Metrics) *Engine {
	e := &Engine{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		log:     slog.Default(),
	}
	pool := fetch.NewPool(nil)
	e.newDirect = func() (fetch.Strategy, error) {
		return fetch.NewDirect(fetch.DirectOptions{
			Timeout:  cfg.Timeout,
			Delay:    cfg.RequestDelay,
			Jitter:   cfg.RequestJitter,
			MinBytes: cfg.MinContentBytes,
			Pool:     pool,
		})
	}
	e.newRendered = func() fetch.Strategy {
		return fetch.NewRendered(fetch.RenderedOptions{
			Timeout:   cfg.Timeout,
			MinBytes:  cfg.MinContentBytes,
			Pool:      pool,
			ChromeBin: cfg.ChromeBin,
		})
	}
	return e
}

// Run scrapes every platform named in targets and returns one report per
// platform, sorted by platform name. A failure in one platform never aborts
// another.
func (e *Engine) Run(ctx context.Context, targets []models.CategoryTarget) []models.RunReport {
	byPlatform := make(map[string][]models.CategoryTarget)
	for _, t := range targets {
		byPlatform[t.Platform] = append(byPlatform[t.Platform], t)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		reports []models.RunReport
	)
	for platform, categories := range byPlatform {
		wg.Add(1)
		go func(platform string, categories []models.CategoryTarget) {
			defer wg.Done()
			report := e.runPlatform(ctx, platform, categories)
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		}(platform, categories)
	}
	wg.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].Platform < reports[j].Platform })
	return reports
}

func (e *Engine) runPlatform(ctx context.Context, platform string, categories []models.CategoryTarget) models.RunReport {
	start := time.Now()
	stats := &models.RunStats{}
	log := e.log.With(slog.String("platform", platform))

	ad, ok := adapter.Get(platform)
	if !ok {
		log.Error("no adapter registered for platform")
		stats.Errors++
		return stats.Report(platform, start)
	}

	direct, err := e.newDirect()
	if err != nil {
		log.Error("initialising direct strategy", slog.Any("error", err))
		stats.Errors++
		return stats.Report(platform, start)
	}
	rendered := e.newRendered()
	if closer, ok := rendered.(interface{ Close() }); ok {
		defer closer.Close()
	}

	seen, err := lru.New[string, struct{}](e.cfg.DedupeMaxSize)
	if err != nil {
		log.Error("initialising dedupe cache", slog.Any("error", err))
		stats.Errors++
		return stats.Report(platform, start)
	}

	budget := NewBudget(e.cfg.MaxRunDuration)
	retry := NewPolicy(e.cfg.MaxRetries, e.cfg.RetryBase, e.cfg.RetryJitterLow, e.cfg.RetryJitterHigh, e.cfg.RetryBackoffMax)
	reconciler := catalog.NewReconciler(e.store)

	sink := func(ctx context.Context, rec *models.ProductRecord) error {
		outcome, err := reconciler.Reconcile(ctx, rec)
		if err != nil {
			return err
		}
		stats.Found++
		switch outcome {
		case catalog.OutcomeAdded:
			stats.Added++
		case catalog.OutcomeUpdated:
			stats.Updated++
		default:
			stats.Unchanged++
		}
		e.metrics.IncProduct(outcome.String())
		return nil
	}

	pagination := e.paginationFor(ad)

	log.Info("starting platform run",
		slog.Int("categories", len(categories)),
		slog.String("fetch_mode", string(ad.Config().FetchMode)),
		slog.Duration("budget", e.cfg.MaxRunDuration),
	)

	completed := true
	for _, category := range categories {
		walker := &Walker{
			adapter:    ad,
			direct:     direct,
			rendered:   rendered,
			retry:      retry,
			budget:     budget,
			stats:      stats,
			metrics:    e.metrics,
			log:        log,
			sink:       sink,
			seen:       seen,
			pagination: pagination,
		}
		err := walker.Walk(ctx, category)
		switch {
		case err == nil:
		case errors.Is(err, ErrBudgetExceeded):
			log.Warn("run budget exceeded, stopping remaining categories",
				slog.String("category", category.Name))
			completed = false
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			log.Warn("run cancelled", slog.String("category", category.Name))
			completed = false
		default:
			// Category-level isolation: log and move on.
			log.Error("category walk failed", slog.String("category", category.Name), slog.Any("error", err))
			stats.Errors++
		}
		if !completed {
			break
		}
	}

	// Deactivation needs a full pass: a run cut short by budget or cancel
	// must not deactivate entries it simply never reached.
	if completed {
		n, err := reconciler.DeactivateUnseen(ctx, platform, start)
		if err != nil {
			log.Error("deactivating unseen entries", slog.Any("error", err))
			stats.Errors++
		} else {
			stats.Deactivated = n
			for i := 0; i < n; i++ {
				e.metrics.IncProduct("deactivated")
			}
		}
	}

	report := stats.Report(platform, start)
	log.Info("platform run finished",
		slog.Int("found", report.Found),
		slog.Int("added", report.Added),
		slog.Int("updated", report.Updated),
		slog.Int("deactivated", report.Deactivated),
		slog.Int("errors", report.Errors),
		slog.Duration("duration", report.Duration),
	)
	return report
}

// paginationFor fills engine-wide defaults into an adapter's pagination
// block.
func (e *Engine) paginationFor(ad adapter.Adapter) adapter.Pagination {
	p := ad.Config().Pagination
	if p.Type == "" {
		p.Type = adapter.PaginationRegular
	}
	if p.MaxPages <= 0 {
		p.MaxPages = e.cfg.DefaultMaxPages
	}
	if p.MaxConsecutiveErrors <= 0 {
		p.MaxConsecutiveErrors = e.cfg.DefaultMaxConsErrors
	}
	if p.DelayMin <= 0 && p.DelayMax <= 0 {
		p.DelayMin = e.cfg.PageDelayMin
		p.DelayMax = e.cfg.PageDelayMax
	}
	return p
}
