package cache

import (
	"fmt"

	"github.com/agromart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// KVFactory picks the KV backend from configuration
type KVFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// KVFactoryOption is a functional option for configuring the factory
type KVFactoryOption func(*KVFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) KVFactoryOption {
	return func(f *KVFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) KVFactoryOption {
	return func(f *KVFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewKVFactory creates a new factory
func NewKVFactory(cfg config.RedisConfig, opts ...KVFactoryOption) *KVFactory {
	f := &KVFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis KV when Redis is enabled and reachable, otherwise an
// in-memory KV (if fallback is allowed).
func (f *KVFactory) Create() (KV, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory cache")
		return NewMemoryKV(), nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis cache", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisKV(client), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
		"Carts and idempotency keys will not be shared across instances.",
		zap.Error(err),
	)
	return NewMemoryKV(), nil
}
