// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hawkersg/hawker-backend/internal/core"
)

// KeyFunc names the bucket a request is charged to.
type KeyFunc func(*http.Request) string

// Policy is one named limit. Buckets of different policies never share a
// key, so the credential limit does not eat into the global one.
type Policy struct {
	Name     string
	Limit    redis_rate.Limit
	Key      KeyFunc
	FailOpen bool
}

// Every builds a limit of n requests per window.
func Every(window time.Duration, n, burst int) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{Rate: n, Burst: burst, Period: window}
}

type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
	resetAfter time.Duration
}

// Limiter counts in Redis and falls back to per-process token buckets
// while Redis is unreachable.
type Limiter struct {
	redis  *redis_rate.Limiter
	local  *localBuckets
	logger *slog.Logger
}

func NewLimiter(rdb redis.UniversalClient, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		redis:  redis_rate.NewLimiter(rdb),
		local:  &localBuckets{entries: make(map[string]*bucket)},
		logger: logger.With("component", "ratelimit"),
	}
}

// Middleware enforces p.
func (l *Limiter) Middleware(p Policy) func(http.Handler) http.Handler {
	if p.Key == nil {
		p.Key = ByClient
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := core.RedisKey("ratelimit", p.Name, p.Key(r))

			d, err := l.take(r.Context(), key, p.Limit)
			if err != nil {
				if !p.FailOpen {
					http.Error(w, http.StatusText(http.StatusServiceUnavailable),
						http.StatusServiceUnavailable)
					return
				}
				l.logger.Warn("rate limit check failed, allowing", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", p.Limit.Rate, int(p.Limit.Period.Seconds())))
			h.Set("RateLimit", fmt.Sprintf("%d;t=%d", d.remaining, int(d.resetAfter.Seconds())))

			if !d.allowed {
				secs := max(int(d.retryAfter.Seconds()), 1)
				h.Set("Retry-After", strconv.Itoa(secs))
				core.JSONError(w, core.NewAppError(
					core.ErrRateLimited,
					fmt.Sprintf("Too many requests. Retry after %d seconds.", secs),
					http.StatusTooManyRequests,
					"RATE_LIMITED",
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) take(ctx context.Context, key string, limit redis_rate.Limit) (decision, error) {
	res, err := l.redis.Allow(ctx, key, limit)
	if err != nil {
		return l.local.take(key, limit, time.Now()), nil
	}
	return decision{
		allowed:    res.Allowed > 0,
		remaining:  res.Remaining,
		retryAfter: res.RetryAfter,
		resetAfter: res.ResetAfter,
	}, nil
}

// ByClient buckets on the caller's address.
func ByClient(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// ByAccount buckets authenticated callers per account kind and id, and
// everyone else per address.
func ByAccount(r *http.Request) string {
	if id := GetUserID(r.Context()); id != "" {
		return GetUserType(r.Context()) + ":" + id
	}
	return ByClient(r)
}

// ByClientAndRoute buckets credential endpoints such as login and signup
// per caller and per route shape.
func ByClientAndRoute(r *http.Request) string {
	return ByClient(r) + ":" + routeShape(r.URL.Path)
}

// ClientIP takes the nearest proxy hop from X-Forwarded-For, then
// X-Real-IP, then the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routeShape replaces ids and license numbers with {id} so that
// /businesses/SE01234A001/menu-items and any other stall share a bucket.
func routeShape(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if looksLikeID(part) {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func looksLikeID(s string) bool {
	if len(s) == 36 && uuid.Validate(s) == nil {
		return true
	}
	if s == "" {
		return false
	}

	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return digits == len(s) || (len(s) >= 6 && digits >= 3)
}

const bucketIdle = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type localBuckets struct {
	mu        sync.Mutex
	entries   map[string]*bucket
	lastPrune time.Time
}

func (b *localBuckets) take(key string, limit redis_rate.Limit, now time.Time) decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastPrune) > bucketIdle {
		for k, e := range b.entries {
			if now.Sub(e.lastSeen) > bucketIdle {
				delete(b.entries, k)
			}
		}
		b.lastPrune = now
	}

	perToken := limit.Period / time.Duration(max(limit.Rate, 1))
	e, ok := b.entries[key]
	if !ok {
		e = &bucket{lim: rate.NewLimiter(rate.Every(perToken), max(limit.Burst, 1))}
		b.entries[key] = e
	}
	e.lastSeen = now

	d := decision{allowed: e.lim.AllowN(now, 1), resetAfter: perToken}
	d.remaining = max(int(e.lim.TokensAt(now)), 0)
	if !d.allowed {
		d.retryAfter = perToken
	}
	return d
}
