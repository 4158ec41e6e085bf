package fetch

import (
	"math/rand"
	"sync"
)

// Identity is one request fingerprint: a user agent plus companion headers.
type Identity struct {
	UserAgent string
	Headers   map[string]string
}

// Pool hands out identities such that consecutive draws never repeat,
// so back-to-back requests do not present the same fingerprint.
type Pool struct {
	mu   sync.Mutex
	ids  []Identity
	last int
}

// NewPool builds a pool from the given identities, falling back to the
// built-in set when none are supplied.
func NewPool(ids []Identity) *Pool {
	if len(ids) == 0 {
		ids = DefaultIdentities()
	}
	return &Pool{ids: ids, last: -1}
}

// Next returns an identity different from the previous draw.
func (p *Pool) Next() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ids) == 1 {
		p.last = 0
		return p.ids[0]
	}

	i := rand.Intn(len(p.ids))
	if i == p.last {
		i = (i + 1) % len(p.ids)
	}
	p.last = i
	return p.ids[i]
}

// DefaultIdentities returns a small pool of common desktop fingerprints.
func DefaultIdentities() []Identity {
	accept := "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	return []Identity{
		{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headers: map[string]string{
				"Accept":          accept,
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			Headers: map[string]string{
				"Accept":          accept,
				"Accept-Language": "en-US,en;q=0.8",
			},
		},
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			Headers: map[string]string{
				"Accept":          accept,
				"Accept-Language": "en-GB,en;q=0.9",
			},
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			Headers: map[string]string{
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.5",
			},
		},
	}
}
