package engine

import (
	"context"
	"errors"
	"time"
)

// ErrBudgetExceeded signals the run's wall-clock budget ran out. It stops
// the current and all pending category walks cleanly; records already
// reconciled stay committed.
var ErrBudgetExceeded = errors.New("engine: run budget exceeded")

// Budget is a single wall-clock deadline for an entire run. Every
// suspend-capable step checks it cooperatively before blocking.
type Budget struct {
	deadline time.Time
}

// NewBudget computes the deadline from a maximum duration; zero or negative
// means unlimited.
func NewBudget(max time.Duration) *Budget {
	b := &Budget{}
	if max > 0 {
		b.deadline = time.Now().Add(max)
	}
	return b
}

// Check returns ErrBudgetExceeded once the deadline has passed.
func (b *Budget) Check() error {
	if !b.deadline.IsZero() && time.Now().After(b.deadline) {
		return ErrBudgetExceeded
	}
	return nil
}

// Remaining reports time left, or a negative duration when exhausted.
// Unlimited budgets report a very large remainder.
func (b *Budget) Remaining() time.Duration {
	if b.deadline.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return time.Until(b.deadline)
}

// Sleep waits for d unless the delay cannot fit inside the budget, in which
// case it returns ErrBudgetExceeded without sleeping. Cancelling ctx wakes
// it early.
func (b *Budget) Sleep(ctx context.Context, d time.Duration) error {
	if err := b.Check(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	if !b.deadline.IsZero() && time.Now().Add(d).After(b.deadline) {
		return ErrBudgetExceeded
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
