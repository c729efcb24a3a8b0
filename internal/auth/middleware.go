package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

type contextKey struct{}

// OwnerFromContext returns the owner of the API key that authorized the
// request, or "".
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(contextKey{}).(string)
	return owner
}

// WithOwner returns a context carrying an API key owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, contextKey{}, owner)
}

// rateLimiter tracks failed API key attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	maxFail  int
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string][]time.Time),
		window:   time.Minute,
		maxFail:  10,
	}
}

// prune drops attempts older than the window. Caller holds mu.
func (rl *rateLimiter) prune(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// blocked reports whether ip has exhausted its failures for the window.
func (rl *rateLimiter) blocked(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(ip, time.Now())) >= rl.maxFail
}

// recordFailure records a failed attempt.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	rl.attempts[ip] = append(rl.prune(ip, now), now)
}

// RequireAPIKey is middleware that validates Bearer token auth for /api/
// routes. Non-API routes and the health check pass through untouched.
// Returns 401 for missing/invalid keys, 429 once an IP has failed too
// often within a minute.
func RequireAPIKey(apiKeys *APIKeyStore, next http.Handler) http.Handler {
	limiter := newRateLimiter()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if limiter.blocked(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		owner, err := apiKeys.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if owner == "" {
			limiter.recordFailure(ip)
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
	})
}

func isPublicPath(path string) bool {
	return path == "/api/health"
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
