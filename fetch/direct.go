package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/rajtiwarikmw/aethyrtech/models"
)

// DirectOptions configures the plain-HTTP strategy.
type DirectOptions struct {
	Timeout time.Duration
	// Delay and Jitter form the randomized pre-request pause: each request
	// waits Delay plus a random amount up to Jitter, breaking rhythmic
	// traffic patterns.
	Delay  time.Duration
	Jitter time.Duration
	// MinBytes is the smallest plausible page body; anything shorter is
	// treated as a block page, not a valid listing or product page.
	MinBytes  int
	Pool      *Pool
	Transport http.RoundTripper
}

// Direct fetches pages over plain HTTP through a synchronous collector with
// a rotated identity per request.
type Direct struct {
	collector *colly.Collector
	pool      *Pool
	minBytes  int

	mu     sync.Mutex
	body   []byte
	status int
	err    error
}

// NewDirect builds the direct strategy.
func NewDirect(opts DirectOptions) (*Direct, error) {
	collector := colly.NewCollector(colly.AllowURLRevisit())
	collector.IgnoreRobotsTxt = true

	if opts.Timeout > 0 {
		collector.SetRequestTimeout(opts.Timeout)
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	collector.WithTransport(transport)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       opts.Delay,
		RandomDelay: opts.Jitter,
	}); err != nil {
		return nil, fmt.Errorf("configure request delays: %w", err)
	}

	pool := opts.Pool
	if pool == nil {
		pool = NewPool(nil)
	}

	d := &Direct{
		collector: collector,
		pool:      pool,
		minBytes:  opts.MinBytes,
	}

	collector.OnRequest(func(r *colly.Request) {
		id := d.pool.Next()
		r.Headers.Set("User-Agent", id.UserAgent)
		for k, v := range id.Headers {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		d.body = append([]byte(nil), r.Body...)
		d.status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		d.err = err
		if r != nil {
			d.status = r.StatusCode
		}
	})

	return d, nil
}

func (d *Direct) Name() string { return StrategyDirect }

// Fetch requests rawURL and returns its content. Failures come back as
// *Error with a FailureKind driving the caller's retry and escalation
// decisions.
func (d *Direct) Fetch(ctx context.Context, rawURL string) (*models.PageContent, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{Kind: FailureMalformed, URL: rawURL, Err: fmt.Errorf("malformed url %q", rawURL)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.body, d.status, d.err = nil, 0, nil

	if err := d.collector.Visit(rawURL); err != nil {
		return nil, Classify(rawURL, err, d.status)
	}
	if d.err != nil {
		return nil, Classify(rawURL, d.err, d.status)
	}
	if d.status >= http.StatusBadRequest {
		return nil, Classify(rawURL, nil, d.status)
	}
	if len(d.body) < d.minBytes {
		return nil, &Error{
			Kind:   FailureBlocked,
			URL:    rawURL,
			Status: d.status,
			Err:    fmt.Errorf("body of %d bytes below plausibility threshold %d", len(d.body), d.minBytes),
		}
	}

	return &models.PageContent{
		URL:       rawURL,
		Body:      d.body,
		Strategy:  StrategyDirect,
		Status:    d.status,
		FetchedAt: time.Now(),
	}, nil
}
