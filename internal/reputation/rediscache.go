package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/config"
	"github.com/LilToreyFTW/CrimeCIty-Game-sub001/internal/settings"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// RedisCache is an optional look-aside layer in front of the persistent
// cache. Redis trouble trips a breaker and the caller falls through to
// the database; it never fails a resolution.
type RedisCache struct {
	client *redis.Client
	prefix string

	mu           sync.Mutex
	breakerUntil time.Time
}

// NewRedisCache constructs a RedisCache, or nil when no address is configured.
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = settings.DefaultRedisPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached verdict for ip, or ok=false on miss or breaker.
func (c *RedisCache) Get(ctx context.Context, ip string, now time.Time) (Verdict, bool) {
	if c == nil || c.client == nil || c.isBreakerActive(now) {
		return Verdict{}, false
	}
	raw, errGet := c.client.Get(ctx, c.key(ip)).Result()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			c.tripBreaker(errGet, now)
		}
		return Verdict{}, false
	}
	var verdict Verdict
	if errUnmarshal := json.Unmarshal([]byte(raw), &verdict); errUnmarshal != nil {
		return Verdict{}, false
	}
	return verdict, true
}

// Put stores the verdict for ip with the TTL. Failures only trip the breaker.
func (c *RedisCache) Put(ctx context.Context, ip string, verdict Verdict, now time.Time, ttl time.Duration) {
	if c == nil || c.client == nil || c.isBreakerActive(now) {
		return
	}
	payload, errMarshal := json.Marshal(verdict)
	if errMarshal != nil {
		return
	}
	if errSet := c.client.Set(ctx, c.key(ip), payload, ttl).Err(); errSet != nil {
		c.tripBreaker(errSet, now)
	}
}

func (c *RedisCache) key(ip string) string {
	return c.prefix + ":" + ip
}

func (c *RedisCache) isBreakerActive(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.breakerUntil.IsZero() {
		return false
	}
	if now.Before(c.breakerUntil) {
		return true
	}
	c.breakerUntil = time.Time{}
	return false
}

func (c *RedisCache) tripBreaker(err error, now time.Time) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.breakerUntil.IsZero() && now.Before(c.breakerUntil) {
		return
	}
	c.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("reputation: redis unavailable, falling back to database cache")
}
