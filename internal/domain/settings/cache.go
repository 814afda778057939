package settings

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	loginProtectionKey = "settings:login_protection"
	cacheTTL           = 30 * time.Second
)

// Provider is the read surface the lockout engine depends on
type Provider interface {
	Get(ctx context.Context) (*PlatformSettings, error)
}

// Cache fronts the settings repository with a short-lived Redis cache for
// the login-protection toggle, so every login attempt does not hit the
// settings table. Handles nil redis gracefully (cache disabled).
type Cache struct {
	repo  Provider
	redis *redis.Client
}

func NewCache(repo Provider, redisClient *redis.Client) *Cache {
	return &Cache{repo: repo, redis: redisClient}
}

// Get delegates to the repository; full settings reads are not cached,
// only the hot login-protection flag is.
func (c *Cache) Get(ctx context.Context) (*PlatformSettings, error) {
	return c.repo.Get(ctx)
}

// LoginProtectionEnabled returns the cached global lockout toggle.
// On cache or store failure the engine stays protective (fail-safe true).
func (c *Cache) LoginProtectionEnabled(ctx context.Context) bool {
	if c.redis != nil {
		val, err := c.redis.Get(ctx, loginProtectionKey).Result()
		if err == nil {
			return val == "1"
		}
		if err != redis.Nil {
			log.Warn().Err(err).Msg("login protection cache read failed")
		}
	}

	s, err := c.repo.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("login protection settings read failed, staying protective")
		return true
	}

	if c.redis != nil {
		val := "0"
		if s.LoginProtectionEnabled {
			val = "1"
		}
		if err := c.redis.Set(ctx, loginProtectionKey, val, cacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("login protection cache write failed")
		}
	}

	return s.LoginProtectionEnabled
}

// Invalidate busts the cached toggle. Called when an admin flips the setting.
func (c *Cache) Invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, loginProtectionKey).Err(); err != nil {
		log.Warn().Err(err).Msg("login protection cache invalidation failed")
	}
}
