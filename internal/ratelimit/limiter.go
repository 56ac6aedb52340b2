// Package ratelimit implements a fixed-window per-client request limiter.
// Fixed-window means bursts of up to 2x the limit are possible across a
// window boundary; that is a property of the algorithm, not a bug.
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// retention is how long cleanup keeps timestamps for idle clients.
const retention = 15 * time.Minute

// Limiter bounds request rate per client key. Construct one per route tier;
// each instance owns its key map for its whole lifetime and nothing is
// persisted across restarts.
type Limiter struct {
	window  time.Duration
	max     int
	message string
	clock   clockwork.Clock

	mu     sync.Mutex
	visits map[string][]time.Time
}

// New creates a limiter allowing max requests per window per client.
func New(window time.Duration, max int, message string) *Limiter {
	return NewWithClock(window, max, message, clockwork.NewRealClock())
}

// NewWithClock injects the clock so tests can advance time explicitly.
func NewWithClock(window time.Duration, max int, message string, clock clockwork.Clock) *Limiter {
	return &Limiter{
		window:  window,
		max:     max,
		message: message,
		clock:   clock,
		visits:  make(map[string][]time.Time),
	}
}

// Preset tiers used by the HTTP layer.

// NewScanLimiter guards the scan endpoint, the most expensive route.
func NewScanLimiter() *Limiter {
	return New(15*time.Minute, 5, "Too many scan requests. Please try again later.")
}

// NewAPILimiter guards the remaining JSON API routes.
func NewAPILimiter() *Limiter {
	return New(15*time.Minute, 60, "Too many requests. Please slow down.")
}

// NewGeneralLimiter is a lenient catch-all for everything else.
func NewGeneralLimiter() *Limiter {
	return New(15*time.Minute, 300, "Request limit reached. Please try again later.")
}

// Allow records a request for key and reports whether it is within the
// limit. Entries older than one window are dropped before counting.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	recent := l.visits[key][:0:0]
	for _, t := range l.visits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.max {
		l.visits[key] = recent
		return false
	}

	l.visits[key] = append(recent, now)
	return true
}

// RetryAfter is the hint, in seconds, returned with rejected requests.
func (l *Limiter) RetryAfter() int {
	return int(l.window / time.Second)
}

// Cleanup drops timestamps older than the retention period and removes
// clients with nothing left, bounding memory for abandoned keys. The
// scheduler calls this every 5 minutes; tests call it directly.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock.Now().Add(-retention)
	for key, stamps := range l.visits {
		kept := stamps[:0:0]
		for _, t := range stamps {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.visits, key)
			continue
		}
		l.visits[key] = kept
	}
}

// TrackedKeys reports how many distinct clients currently hold state.
func (l *Limiter) TrackedKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visits)
}

type rejection struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// Middleware adapts the limiter to a mux middleware. Rejected requests get
// a 429 with a JSON body and a retryAfter hint; they are not forwarded.
func (l *Limiter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !l.Allow(key) {
				logrus.Debugf("Rate limit exceeded for %s on %s", key, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(rejection{
					Success:    false,
					Message:    l.message,
					RetryAfter: l.RetryAfter(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey resolves the client network address, falling back to a sentinel
// when it cannot be determined.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
