package ratelimit

import (
    "context"
    "sync"
    "time"

    "github.com/labstack/echo/v4"

    xhttp "Monexa/pkg/http"
)

type bucket struct {
    tokens     float64
    capacity   float64
    refillRate float64 // tokens per second
    last       time.Time
}

// Limiter is a keyed token bucket.
type Limiter struct {
    mu  sync.Mutex
    m   map[string]*bucket
    now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
    l.now = now
    return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
    now := l.now()
    l.mu.Lock()
    defer l.mu.Unlock()

    b, ok := l.m[key]
    if !ok {
        b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
        l.m[key] = b
    }
    // refill
    elapsed := now.Sub(b.last).Seconds()
    if elapsed > 0 {
        b.tokens += elapsed * b.refillRate
        if b.tokens > b.capacity {
            b.tokens = b.capacity
        }
        b.last = now
    }
    if b.tokens >= 1 {
        b.tokens -= 1
        return true
    }
    return false
}

// Prune drops buckets idle for longer than idle.
func (l *Limiter) Prune(idle time.Duration) int {
    cutoff := l.now().Add(-idle)
    l.mu.Lock()
    defer l.mu.Unlock()
    n := 0
    for k, b := range l.m {
        if b.last.Before(cutoff) {
            delete(l.m, k)
            n++
        }
    }
    return n
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.m)
}

// RunPruner drops buckets idle for longer than idle every interval until ctx is done.
func (l *Limiter) RunPruner(ctx context.Context, every, idle time.Duration) {
    if every <= 0 || idle <= 0 {
        return
    }
    t := time.NewTicker(every)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-t.C:
            l.Prune(idle)
        }
    }
}

// Middleware limits requests per client IP and answers 429 when the bucket is empty.
func (l *Limiter) Middleware(capacity, refillPerSec float64) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !l.Allow(c.RealIP(), capacity, refillPerSec) {
                return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
            }
            return next(c)
        }
    }
}
