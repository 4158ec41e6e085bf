package engine

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rajtiwarikmw/aethyrtech/adapter"
	"github.com/rajtiwarikmw/aethyrtech/fetch"
	"github.com/rajtiwarikmw/aethyrtech/models"
)

// Walker drives one category's listing pages until exhaustion, a page-count
// ceiling, or a consecutive-error ceiling. It owns the direct-to-rendered
// escalation decision for its category.
type Walker struct {
	adapter  adapter.Adapter
	direct   fetch.Strategy
	rendered fetch.Strategy
	retry    *Policy
	budget   *Budget
	stats    *models.RunStats
	metrics  *Metrics
	log      *slog.Logger

	// sink receives every valid extracted record; it is the reconcile hook.
	sink func(context.Context, *models.ProductRecord) error

	// seen deduplicates candidate product URLs across the whole run.
	seen *lru.Cache[string, struct{}]

	pagination adapter.Pagination
	escalated  bool
	extracted  bool
}

// paginationState lives for exactly one category walk.
type paginationState struct {
	page              int
	cursor            string
	consecutiveErrors int
	pagesVisited      int
}

// Walk traverses target's listing pages, extracting and sinking product
// records as it goes. It returns nil when the walk terminated normally
// (exhaustion or a ceiling); budget exhaustion and cancellation propagate
// so the caller can stop the whole run.
func (w *Walker) Walk(ctx context.Context, target models.CategoryTarget) error {
	st := paginationState{page: 1}
	log := w.log.With(slog.String("category", target.Name), slog.String("url", target.URL))

	for {
		if err := w.budget.Check(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.pagesVisited >= w.pagination.MaxPages {
			log.Info("page ceiling reached", slog.Int("pages", st.pagesVisited))
			return nil
		}
		st.pagesVisited++
		w.stats.PagesVisited++

		pageURL := w.pageURL(target.URL, &st)
		page, err := w.fetchWithRetry(ctx, pageURL)
		if err != nil {
			if errors.Is(err, ErrBudgetExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.stats.Errors++
			w.metrics.IncError(fetch.KindLabel(err))
			st.consecutiveErrors++
			log.Warn("listing page failed",
				slog.String("page_url", pageURL),
				slog.Int("consecutive_errors", st.consecutiveErrors),
				slog.Any("error", err),
			)
			if st.consecutiveErrors >= w.pagination.MaxConsecutiveErrors {
				log.Error("consecutive error ceiling reached, abandoning category",
					slog.Int("limit", w.pagination.MaxConsecutiveErrors))
				return nil
			}
			if w.pagination.Type == adapter.PaginationCursor {
				// No continuation token survives a failed page.
				return nil
			}
			st.page++
			continue
		}
		st.consecutiveErrors = 0

		res, err := w.adapter.ListProductURLs(page, target.URL)
		if err != nil {
			w.stats.Errors++
			w.metrics.IncError("adapter_error")
			log.Warn("listing extraction failed", slog.String("page_url", pageURL), slog.Any("error", err))
			if w.pagination.Type == adapter.PaginationCursor {
				return nil
			}
			st.page++
			continue
		}
		w.extracted = true

		if err := w.processProducts(ctx, res.ProductURLs); err != nil {
			return err
		}

		if st.pagesVisited%10 == 0 {
			log.Info("walk progress",
				slog.Int("pages", st.pagesVisited),
				slog.Int("found", w.stats.Found),
				slog.Int("errors", w.stats.Errors),
			)
		}

		switch w.pagination.Type {
		case adapter.PaginationCursor:
			if res.NextCursor == "" {
				return nil
			}
			st.cursor = res.NextCursor
		default:
			if !res.HasMore {
				return nil
			}
			st.page++
		}

		if err := w.budget.Sleep(ctx, w.interPageDelay()); err != nil {
			return err
		}
	}
}

func (w *Walker) processProducts(ctx context.Context, urls []string) error {
	for _, productURL := range urls {
		if found, _ := w.seen.ContainsOrAdd(productURL, struct{}{}); found {
			continue
		}
		if err := w.budget.Check(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := w.fetchWithRetry(ctx, productURL)
		if err != nil {
			if errors.Is(err, ErrBudgetExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.stats.Errors++
			w.metrics.IncError(fetch.KindLabel(err))
			w.log.Warn("product page failed", slog.String("url", productURL), slog.Any("error", err))
			continue
		}

		rec, err := w.adapter.ExtractProduct(page, productURL)
		if err != nil {
			w.stats.Errors++
			w.metrics.IncError("adapter_error")
			w.log.Warn("product extraction failed", slog.String("url", productURL), slog.Any("error", err))
			continue
		}
		if rec == nil {
			continue
		}
		w.extracted = true
		if rec.SKU == "" {
			w.stats.Errors++
			w.metrics.IncError("missing_sku")
			w.log.Warn("record dropped: missing sku", slog.String("url", productURL))
			continue
		}
		if rec.Platform == "" {
			rec.Platform = w.adapter.Config().Name
		}
		if rec.URL == "" {
			rec.URL = productURL
		}
		if rec.ScrapedAt.IsZero() {
			rec.ScrapedAt = time.Now()
		}

		if err := w.sink(ctx, rec); err != nil {
			w.stats.Errors++
			w.metrics.IncError("store")
			w.log.Error("reconcile failed", slog.String("sku", rec.SKU), slog.Any("error", err))
		}
	}
	return nil
}

// fetchWithRetry runs the retry policy over the category's current
// strategy. When the direct strategy exhausts its attempts before the
// category has produced a single successful extraction, the walker
// escalates to the rendered strategy for the rest of the walk.
func (w *Walker) fetchWithRetry(ctx context.Context, pageURL string) (*models.PageContent, error) {
	var lastErr error
	strategy := w.strategy()

	for attempt := 1; attempt <= w.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			w.stats.Retries++
			w.metrics.IncRetries()
			if err := w.budget.Sleep(ctx, w.retry.Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := w.budget.Check(); err != nil {
			return nil, err
		}

		start := time.Now()
		page, err := strategy.Fetch(ctx, pageURL)
		if err == nil {
			w.metrics.IncPage(strategy.Name())
			w.metrics.ObserveFetch(time.Since(start))
			return page, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var fe *fetch.Error
		if errors.As(err, &fe) && !fe.Retriable() {
			return nil, err
		}
		w.log.Debug("fetch attempt failed",
			slog.String("url", pageURL),
			slog.Int("attempt", attempt),
			slog.String("strategy", strategy.Name()),
			slog.Any("error", err),
		)
	}

	if w.maybeEscalate(pageURL) {
		start := time.Now()
		page, err := w.rendered.Fetch(ctx, pageURL)
		if err == nil {
			w.metrics.IncPage(w.rendered.Name())
			w.metrics.ObserveFetch(time.Since(start))
			return page, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// strategy returns the fetcher currently in force for this category.
func (w *Walker) strategy() fetch.Strategy {
	if w.escalated || w.adapter.Config().FetchMode == adapter.FetchRendered {
		return w.rendered
	}
	return w.direct
}

// maybeEscalate switches the category to the rendered strategy, once,
// when direct fetching keeps failing before any successful extraction.
func (w *Walker) maybeEscalate(pageURL string) bool {
	if w.escalated || w.rendered == nil {
		return false
	}
	if w.adapter.Config().FetchMode == adapter.FetchRendered {
		return false
	}
	if w.extracted {
		return false
	}
	w.escalated = true
	w.stats.Escalations++
	w.metrics.IncEscalation()
	w.log.Info("escalating category to rendered strategy", slog.String("url", pageURL))
	return true
}

func (w *Walker) pageURL(base string, st *paginationState) string {
	switch w.pagination.Type {
	case adapter.PaginationCursor:
		if st.cursor == "" {
			return base
		}
		return appendParam(base, w.pagination.PageParam, st.cursor)
	default:
		if st.page <= 1 {
			return base
		}
		return appendParam(base, w.pagination.PageParam, strconv.Itoa(st.page))
	}
}

func appendParam(base, param, value string) string {
	if param == "" {
		param = "page"
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// interPageDelay picks a random politeness pause within the configured
// range. Skipping it gets runs blocked in practice.
func (w *Walker) interPageDelay() time.Duration {
	min, max := w.pagination.DelayMin, w.pagination.DelayMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
