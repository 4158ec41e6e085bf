package fetch

import "testing"

func TestPoolNeverRepeatsConsecutively(t *testing.T) {
	pool := NewPool(nil)

	prev := pool.Next()
	for i := 0; i < 200; i++ {
		next := pool.Next()
		if next.UserAgent == prev.UserAgent {
			t.Fatalf("draw %d repeated identity %q", i, next.UserAgent)
		}
		prev = next
	}
}

func TestPoolSingleIdentity(t *testing.T) {
	only := Identity{UserAgent: "solo"}
	pool := NewPool([]Identity{only})

	for i := 0; i < 5; i++ {
		if got := pool.Next(); got.UserAgent != "solo" {
			t.Fatalf("unexpected identity %q", got.UserAgent)
		}
	}
}
