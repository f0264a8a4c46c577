package handlers

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sash-studio/api/internal/platform/httpx"
	"github.com/sash-studio/api/internal/platform/requestctx"
)

// clientLimiter counts requests per client in fixed windows.
type clientLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]clientWindow
	sweepAt time.Time
}

type clientWindow struct {
	hits    int
	resetAt time.Time
}

// newClientLimiter returns nil, meaning unlimited, when limit or window is not positive.
func newClientLimiter(limit int, window time.Duration, clock func() time.Time) *clientLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &clientLimiter{
		limit:   limit,
		window:  window,
		now:     clock,
		windows: make(map[string]clientWindow),
	}
}

// Allow records a hit for client. When the window is spent it reports how long until it resets.
func (l *clientLimiter) Allow(client string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	if client == "" {
		client = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	w, ok := l.windows[client]
	if !ok || !now.Before(w.resetAt) {
		l.windows[client] = clientWindow{hits: 1, resetAt: now.Add(l.window)}
		return true, 0
	}
	if w.hits >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	l.windows[client] = w
	return true, 0
}

// sweep drops finished windows at most once per window length.
func (l *clientLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	for client, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, client)
		}
	}
	l.sweepAt = now.Add(l.window)
}

// limitByClientIP answers 429 with Retry-After once the caller's address has spent its window.
func limitByClientIP(limiter *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := requestctx.ClientIP(r.Context())
			if client == "" {
				client = r.RemoteAddr
			}
			if ok, wait := limiter.Allow(client); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many quote requests, try again later", http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
