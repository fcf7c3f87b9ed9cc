package authn

import (
	"sync"
	"time"
)

// maxThrottleBuckets bounds memory used by per-identifier buckets.
const maxThrottleBuckets = 10000

// loginThrottle is a per-identifier token bucket limiting login attempts.
// It counts attempts, not failures, so a credential-stuffing run is slowed
// even when it happens to guess right.
type loginThrottle struct {
	rate  float64
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

func newLoginThrottle(rate float64, burst int) *loginThrottle {
	if rate <= 0 {
		rate = 1.0
	}
	if burst <= 0 {
		burst = int(rate)
	}
	return &loginThrottle{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether another attempt for the key may proceed now.
func (t *loginThrottle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	b, ok := t.buckets[key]
	if !ok {
		if len(t.buckets) >= maxThrottleBuckets {
			t.prune(now)
		}
		b = &bucket{tokens: float64(t.burst), lastRefill: now}
		t.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * t.rate
	if b.tokens > float64(t.burst) {
		b.tokens = float64(t.burst)
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets that have fully refilled; they carry no state worth
// keeping. Called with the lock held.
func (t *loginThrottle) prune(now time.Time) {
	for key, b := range t.buckets {
		idle := now.Sub(b.lastRefill).Seconds()
		if b.tokens+idle*t.rate >= float64(t.burst) {
			delete(t.buckets, key)
		}
	}
}
