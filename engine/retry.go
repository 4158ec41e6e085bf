package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Policy computes backoff delays for failed fetch attempts. Delays grow
// exponentially with multiplicative jitter so parallel runs never retry in
// lockstep and the timing stays non-robotic.
type Policy struct {
	// MaxAttempts is the total attempt ceiling per URL, first try included.
	MaxAttempts int
	// Base is the exponent base in seconds: attempt n backs off around
	// Base^n.
	Base float64
	// JitterLow and JitterHigh bound the multiplicative jitter factor.
	JitterLow  float64
	JitterHigh float64
	// MaxDelay caps a single backoff; zero means uncapped.
	MaxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy builds a retry policy, substituting defaults for zero values.
func NewPolicy(maxAttempts int, base, jitterLow, jitterHigh float64, maxDelay time.Duration) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if base <= 1 {
		base = 2.0
	}
	if jitterLow <= 0 {
		jitterLow = 0.5
	}
	if jitterHigh < jitterLow {
		jitterHigh = jitterLow
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		Base:        base,
		JitterLow:   jitterLow,
		JitterHigh:  jitterHigh,
		MaxDelay:    maxDelay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Backoff returns the delay before retry attempt, 1-based.
func (p *Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	p.mu.Lock()
	jitter := p.JitterLow + p.rng.Float64()*(p.JitterHigh-p.JitterLow)
	p.mu.Unlock()

	seconds := math.Pow(p.Base, float64(attempt)) * jitter
	delay := time.Duration(seconds * float64(time.Second))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
