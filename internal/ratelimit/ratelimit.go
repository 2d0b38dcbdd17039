// Package ratelimit throttles mutation endpoints with a token bucket kept in
// Redis, so every replica shares the same budget per client.
package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

// The bucket is refilled lazily on each call: whole elapsed intervals add one
// token each, capped at capacity. Returns {allowed, remaining, retry_after_ms}.
var bucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + intervals * interval_ms
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter is a distributed token bucket.
type Limiter struct {
	rdb      *redis.Client
	capacity int
	interval time.Duration
	ttl      time.Duration
	prefix   string
	log      *zap.Logger
	now      func() time.Time
}

// New constructs a Limiter. A nil client yields a Limiter whose middleware
// lets every request through.
func New(rdb *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) *Limiter {
	capacity := cfg.Capacity
	if capacity < 1 {
		capacity = 1
	}
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Second
	}
	ttl := time.Duration(capacity+1) * interval
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &Limiter{
		rdb:      rdb,
		capacity: capacity,
		interval: interval,
		ttl:      ttl,
		prefix:   cfg.Prefix,
		log:      log,
		now:      time.Now,
	}
}

// Take spends one token from key's bucket.
func (l *Limiter) Take(ctx context.Context, key string) (Decision, error) {
	res, err := bucket.Run(ctx, l.rdb, []string{l.prefix + ":" + key},
		l.now().UnixMilli(),
		l.capacity,
		l.interval.Milliseconds(),
		int64(l.ttl/time.Second),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("run token bucket: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("token bucket returned %d values", len(res))
	}
	return Decision{
		Allowed:    res[0] == 1,
		Remaining:  res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// Middleware applies the limiter per client IP and route. Redis errors fail
// open.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.rdb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := l.Take(r.Context(), requestKey(r))
		if err != nil {
			l.log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if d.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		secs := int(math.Ceil(d.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":       "rate limit exceeded",
			"retry_after": secs,
		})
	})
}

func requestKey(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			route = p
		}
	}
	return strings.Join([]string{"ip", ip, "route", r.Method + " " + route}, ":")
}
