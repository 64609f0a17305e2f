package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

var rateLimitedMessages = map[string]string{
	"en": "Too many requests. Please wait a moment and try again.",
	"id": "Terlalu banyak permintaan. Silakan tunggu sebentar lalu coba lagi.",
}

type window struct {
	count int
	until time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	mu        sync.Mutex
	limit     int
	per       time.Duration
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiter(limit int, per time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		per:     per,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records one request for key. When the window is full it returns
// false and how long until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.per {
		for k, w := range l.windows {
			if now.After(w.until) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}
	w, ok := l.windows[key]
	if !ok || now.After(w.until) {
		w = &window{until: now.Add(l.per)}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	return true, 0
}

// RateLimit allows limit requests per client IP in each window of length per.
// A non-positive limit disables the check. Throttled requests get a 429 with
// the standard error body in the request's locale.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	limiter := NewLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := limiter.Allow(clientIPForRateLimit(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			msg, found := rateLimitedMessages[LocaleFromContext(r.Context())]
			if !found {
				msg = rateLimitedMessages["en"]
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "rate_limited", "message": msg},
			})
		})
	}
}

// clientIPForRateLimit keys on the connection's host. Forwarding headers are
// left to the proxy-aware middleware in front, which rewrites RemoteAddr.
func clientIPForRateLimit(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
