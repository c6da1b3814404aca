package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces per-client limiter state in Redis.
	keyPrefix = "ratelimit:ip:"
	// keyTTL bounds how long idle bucket state survives.
	keyTTL = 60 * time.Second
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript implements the token bucket algorithm as a Lua script,
// so refill and consumption happen in one atomic Redis operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- state TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Allow checks and updates the rate limit bucket for a client IP.
// The IP is hashed before use as a key so raw addresses are never stored.
// Fails open: any Redis error counts as allowed.
func (l *Limiter) Allow(ctx context.Context, ip string, ratePerSecond, burst int) (*Result, error) {
	key := keyPrefix + hashIP(ip)
	now := time.Now().Unix()

	values, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		float64(ratePerSecond), burst, now, int(keyTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return &Result{Allowed: true}, err
	}

	if len(values) != 3 {
		return &Result{Allowed: true}, nil
	}

	return &Result{
		Allowed:    values[0] == 1,
		RetryAfter: time.Duration(values[1]) * time.Second,
		Remaining:  values[2],
	}, nil
}

// hashIP returns a short SHA256-derived key for an IP address.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}
