// Package ratelimit provides the abuse throttles guarding the credential
// endpoints. Counters live in process memory (httprate's local counter,
// which evicts stale windows) and reset on restart.
package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"golang.org/x/text/unicode/norm"

	"github.com/sitecrew/sitecrew/internal/platform/httpx"
)

// LimitedMessage is the uniform body for every quota rejection. It never
// indicates which key tripped.
const LimitedMessage = "Too many requests, please try again later."

// Limiter enforces a single-key quota of N points per rolling window.
type Limiter struct {
	disabled bool
	rl       *httprate.RateLimiter
}

// New constructs a Limiter. When disabled is true every request passes
// and no key is tracked.
func New(points int, window time.Duration, disabled bool) *Limiter {
	return &Limiter{
		disabled: disabled,
		rl:       httprate.NewRateLimiter(points, window),
	}
}

// Allow consumes one point for key. It returns false and writes the
// uniform 429 response when the quota is exhausted.
func (l *Limiter) Allow(w http.ResponseWriter, r *http.Request, key string) bool {
	if l == nil || l.disabled {
		return true
	}
	if l.rl.OnLimit(w, r, key) {
		RespondLimited(w)
		return false
	}
	return true
}

// AllowOrigin consumes one point keyed by the request's client IP.
func (l *Limiter) AllowOrigin(w http.ResponseWriter, r *http.Request) bool {
	if l == nil || l.disabled {
		return true
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		RespondLimited(w)
		return false
	}
	return l.Allow(w, r, key)
}

// Middleware gates a route subtree on the origin quota.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.AllowOrigin(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DualLimiter enforces an origin quota and an independent quota on a
// secondary key extracted from the payload, such as a normalized email.
// Both must pass; either failing produces the same rejection.
type DualLimiter struct {
	origin    *Limiter
	secondary *Limiter
	disabled  bool
}

// NewDual constructs a DualLimiter with independent point/window pairs
// for the origin and the secondary key.
func NewDual(originPoints int, originWindow time.Duration, secondaryPoints int, secondaryWindow time.Duration, disabled bool) *DualLimiter {
	return &DualLimiter{
		origin:    New(originPoints, originWindow, disabled),
		secondary: New(secondaryPoints, secondaryWindow, disabled),
		disabled:  disabled,
	}
}

// Allow consumes one point on both quotas. The secondary key is
// normalized before bucketing so case or Unicode-form variants of the
// same identifier share a bucket.
func (d *DualLimiter) Allow(w http.ResponseWriter, r *http.Request, secondaryKey string) bool {
	if d == nil || d.disabled {
		return true
	}
	if !d.origin.AllowOrigin(w, r) {
		return false
	}
	return d.secondary.Allow(w, r, "key:"+NormalizeKey(secondaryKey))
}

// NormalizeKey canonicalizes a secondary rate-limit key.
func NormalizeKey(key string) string {
	return norm.NFKC.String(strings.ToLower(strings.TrimSpace(key)))
}

// RespondLimited writes the uniform 429 rejection.
func RespondLimited(w http.ResponseWriter) {
	httpx.Message(w, http.StatusTooManyRequests, LimitedMessage)
}
