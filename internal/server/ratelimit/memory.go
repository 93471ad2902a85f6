package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int64
}

// MemoryLimiter keeps windows in process memory. Counts are lost on restart
// and not shared between instances.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	period    time.Duration
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.count < int64(l.limit) {
		w.count++
		return decide(w.count, l.limit, 0), nil
	}
	return decide(w.count+1, l.limit, l.period-now.Sub(w.start)), nil
}

// sweep drops expired windows, at most once per period.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.period {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
		}
	}
}
