package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/domain/shared"
	"github.com/profitalyze/backend/internal/infrastructure/config"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to a
// process-local cache. Default is true.
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           redisCfg,
		keyPrefix:             cacheCfg.KeyPrefix,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *ReportCacheFactory) CreateRedisCache() (shared.ReportCache, error) {
	c, err := NewRedisReportCache(f.redisConfig, f.keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates a process-local cache.
// Replicas do not share entries, so each warms its own copy.
func (f *ReportCacheFactory) CreateInMemoryCache() shared.ReportCache {
	return NewInMemoryReportCache(0)
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *ReportCacheFactory) CreateCache() (shared.ReportCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("Using Redis report cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache", zap.Error(err))
	return f.CreateInMemoryCache(), nil
}
