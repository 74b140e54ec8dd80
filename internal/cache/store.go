package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"go.uber.org/zap"
)

// ResultStore memoises mortgage results in a Cache. A nil *ResultStore or
// one without a backend never hits.
type ResultStore struct {
	backend Cache
	prefix  string
	ttl     time.Duration
	logger  *zap.Logger
}

// NewResultStore wraps backend. An empty prefix falls back to the default
// key prefix.
func NewResultStore(backend Cache, prefix string, ttl time.Duration, logger *zap.Logger) *ResultStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = constants.DefaultCacheKeyPrefix
	}
	return &ResultStore{backend: backend, prefix: prefix, ttl: ttl, logger: logger}
}

// New builds the store selected by the cache configuration.
func New(conf config.CacheConfig, logger *zap.Logger) (*ResultStore, error) {
	var backend Cache
	switch conf.Backend {
	case "", constants.CacheBackendNone:
	case constants.CacheBackendMemory:
		backend = NewMemoryCache()
	case constants.CacheBackendRedis:
		addr := conf.RedisAddress
		if addr == "" {
			addr = constants.DefaultRedisAddress
		}
		backend = NewRedisCache(addr, conf.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", conf.Backend)
	}
	return NewResultStore(backend, conf.KeyPrefix, conf.TTL, logger), nil
}

// Enabled reports whether results are actually cached.
func (s *ResultStore) Enabled() bool {
	return s != nil && s.backend != nil
}

// Key returns the cache key of a scenario.
func (s *ResultStore) Key(scenario mortgage.Scenario) string {
	parts := make([]string, 0, len(mortgage.Fields))
	for _, field := range mortgage.Fields {
		value, _ := scenario.Value(field)
		parts = append(parts, strconv.FormatFloat(value, 'g', -1, 64))
	}
	return s.prefix + strings.Join(parts, ":")
}

// Lookup returns a cached result for the scenario. Backend and decoding
// failures are logged and reported as a miss.
func (s *ResultStore) Lookup(ctx context.Context, scenario mortgage.Scenario) (mortgage.Result, bool) {
	if !s.Enabled() {
		return mortgage.Result{}, false
	}
	key := s.Key(scenario)
	data, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed",
			zap.String("op", "cache.Lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return mortgage.Result{}, false
	}
	if !found {
		return mortgage.Result{}, false
	}

	var result mortgage.Result
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "cache.Lookup"),
			zap.String("key", key),
			zap.Error(err),
		)
		return mortgage.Result{}, false
	}
	return result, true
}

// Store saves a result for the scenario. Failures are logged.
func (s *ResultStore) Store(ctx context.Context, scenario mortgage.Scenario, result mortgage.Result) {
	if !s.Enabled() {
		return
	}
	key := s.Key(scenario)
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to encode result for cache",
			zap.String("op", "cache.Store"),
			zap.Error(err),
		)
		return
	}
	if err := s.backend.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache store failed",
			zap.String("op", "cache.Store"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Calculate returns the cached result for the scenario or computes and
// caches it. The second return value reports a cache hit.
func (s *ResultStore) Calculate(ctx context.Context, calc *mortgage.Calculator, scenario mortgage.Scenario) (mortgage.Result, bool) {
	if result, ok := s.Lookup(ctx, scenario); ok {
		return result, true
	}
	if calc == nil {
		calc = mortgage.NewCalculator(nil)
	}
	result := calc.Calculate(scenario)
	s.Store(ctx, scenario, result)
	return result, false
}

// Close closes the backend, if any.
func (s *ResultStore) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.backend.Close()
}
