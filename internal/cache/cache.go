package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
)

// KeyPrefix namespaces every cache key
const KeyPrefix = "credence:v1:"

// Cache stores serialized analysis results
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheKey hashes the parts that identify an analysis
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return KeyPrefix + hex.EncodeToString(hash[:])
}

// New builds the configured cache: memory only, or memory in front of Redis.
// A disabled cache returns (nil, nil).
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	memory := NewMemoryCache(cfg.TTL, 10*time.Minute)
	if cfg.RedisAddr == "" {
		return memory, nil
	}
	remote, err := NewRedisCache(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	return NewLayeredCache(memory, remote), nil
}
