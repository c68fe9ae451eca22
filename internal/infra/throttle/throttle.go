package throttle

import (
	"log"
	"sync"
	"time"
)

const (
	cleanupInterval = 5 * time.Minute
	retention       = time.Hour
)

// Throttle is a per-user sliding-window rate limiter. A user gets at
// most burst events per rate window; rejected events are not recorded,
// so hammering the bot does not extend the lockout.
type Throttle struct {
	rate  time.Duration
	burst int

	mu          sync.Mutex
	requests    map[int64][]time.Time
	lastCleanup time.Time

	now func() time.Time
}

func New(rate time.Duration, burst int) *Throttle {
	return &Throttle{
		rate:        rate,
		burst:       burst,
		requests:    make(map[int64][]time.Time),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Admit decides whether an inbound event for the user may be processed
// and records its timestamp if so.
func (t *Throttle) Admit(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.maybeCleanup(now)

	cutoff := now.Add(-t.rate)
	recent := t.requests[userID][:0]
	for _, ts := range t.requests[userID] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= t.burst {
		t.requests[userID] = recent
		return false
	}

	t.requests[userID] = append(recent, now)
	return true
}

// maybeCleanup prunes stale histories at most once per cleanupInterval.
// Compaction only shrinks memory; it never affects admission decisions
// already in flight because it runs under the same lock.
func (t *Throttle) maybeCleanup(now time.Time) {
	if now.Sub(t.lastCleanup) < cleanupInterval {
		return
	}
	t.lastCleanup = now

	cutoff := now.Add(-retention)
	removed := 0
	for userID, timestamps := range t.requests {
		recent := timestamps[:0]
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				recent = append(recent, ts)
			}
		}
		if len(recent) == 0 {
			delete(t.requests, userID)
			removed++
			continue
		}
		t.requests[userID] = recent
	}

	if removed > 0 {
		log.Printf("throttle: cleaned up %d idle users", removed)
	}
}

// Tracked reports how many users currently have a recorded history.
func (t *Throttle) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
