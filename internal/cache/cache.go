// Package cache stores computed schedules so identical requests are answered
// without recomputation.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/loan-repayments/pkg/constants"
	"go.uber.org/zap"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config selects and tunes the cache backend.
type Config struct {
	Backend    string `yaml:"backend" mapstructure:"backend"` // none, memory, redis
	TTLSeconds int    `yaml:"ttlSeconds" mapstructure:"ttlSeconds"`
	MaxEntries int    `yaml:"maxEntries" mapstructure:"maxEntries"`
	RedisAddr  string `yaml:"redisAddr" mapstructure:"redisAddr"`
	RedisDB    int    `yaml:"redisDB" mapstructure:"redisDB"`
	KeyPrefix  string `yaml:"keyPrefix" mapstructure:"keyPrefix"`
}

// TTL returns the configured expiry, falling back to the default.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return constants.DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// New builds the backend named in cfg. A nil Cache with a nil error means
// caching is disabled.
func New(logger *zap.Logger, cfg Config) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", constants.CacheBackendNone:
		return nil, nil
	case constants.CacheBackendMemory:
		return NewMemoryCache(cfg.MaxEntries), nil
	case constants.CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires redisAddr")
		}
		logger.Info("using redis schedule cache",
			zap.String("op", "cache.New"),
			zap.String("addr", cfg.RedisAddr),
		)
		return NewRedisCache(cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q, expected none, memory or redis", cfg.Backend)
	}
}

// Key builds the canonical cache key for one calculation.
func Key(currencyCode string, homeValue, deposit, interestRate float64, termYears int, startDate string) string {
	parts := []string{
		"schedule",
		strings.ToUpper(currencyCode),
		strconv.FormatFloat(homeValue, 'g', -1, 64),
		strconv.FormatFloat(deposit, 'g', -1, 64),
		strconv.FormatFloat(interestRate, 'g', -1, 64),
		strconv.Itoa(termYears),
		startDate,
	}
	return strings.Join(parts, ":")
}
