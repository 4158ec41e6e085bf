package fetch

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// RenderedOptions configures the headless-browser strategy.
type RenderedOptions struct {
	Timeout  time.Duration
	MinBytes int
	Pool     *Pool
	// ChromeBin overrides browser binary discovery.
	ChromeBin string
}

// Rendered fetches pages through headless Chrome for content that only
// exists after client-side execution. The browser is launched lazily on the
// first fetch, so HTTP-only runs never pay for it.
type Rendered struct {
	opts RenderedOptions
	pool *Pool

	startOnce   sync.Once
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewRendered builds the rendered strategy without launching a browser.
func NewRendered(opts RenderedOptions) *Rendered {
	pool := opts.Pool
	if pool == nil {
		pool = NewPool(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Rendered{opts: opts, pool: pool}
}

func (r *Rendered) Name() string { return StrategyRendered }

func (r *Rendered) start() {
	r.startOnce.Do(func() {
		bin := r.opts.ChromeBin
		if bin == "" {
			bin = findChromeBinary()
		}

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.UserAgent(r.pool.Next().UserAgent),
		)
		if bin != "" {
			opts = append(opts, chromedp.ExecPath(bin))
		}

		allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
		r.allocCtx = allocCtx
		r.cancelAlloc = cancel
	})
}

// Fetch renders url in a fresh browser tab and returns the resulting DOM.
func (r *Rendered) Fetch(ctx context.Context, url string) (*models.PageContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.start()

	// Suppress chromedp log noise; each fetch gets its own tab and timeout.
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	timeout := r.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, Classify(url, fmt.Errorf("render: %w", err), 0)
	}

	body := []byte(html)
	if len(body) < r.opts.MinBytes {
		return nil, &Error{
			Kind: FailureBlocked,
			URL:  url,
			Err:  fmt.Errorf("rendered body of %d bytes below plausibility threshold %d", len(body), r.opts.MinBytes),
		}
	}

	return &models.PageContent{
		URL:       url,
		Body:      body,
		Strategy:  StrategyRendered,
		Status:    200,
		FetchedAt: time.Now(),
	}, nil
}

// Close shuts down the browser if one was launched.
func (r *Rendered) Close() {
	if r.cancelAlloc != nil {
		r.cancelAlloc()
	}
}

func findChromeBinary() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
