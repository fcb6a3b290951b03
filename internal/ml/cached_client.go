package ml

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/logger"
)

// Predictor is the remote call the cached client wraps
type Predictor interface {
	Name() string
	Probability(ctx context.Context, features ev.FeatureVector) (float64, error)
}

// CachedClient wraps a Predictor with prediction caching
type CachedClient struct {
	next   Predictor
	model  string
	cache  *PredictionCache
	logger *logger.MLLogger
}

// NewCachedClient dials the ML service and wraps it with a cache
func NewCachedClient(cfg *config.MLServiceConfig, log *logrus.Logger) (*CachedClient, error) {
	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}
	return WrapCached(client, client.Model(), cfg, log), nil
}

// WrapCached wraps any predictor with the configured cache
func WrapCached(next Predictor, model string, cfg *config.MLServiceConfig, log *logrus.Logger) *CachedClient {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClient{
		next:   next,
		model:  model,
		cache:  NewPredictionCache(ttl, cfg.CacheMaxSize),
		logger: logger.NewMLLogger(log),
	}
}

// Name returns the wrapped source name
func (c *CachedClient) Name() string { return c.next.Name() }

// Probability returns a cached prediction or asks the wrapped predictor
func (c *CachedClient) Probability(ctx context.Context, features ev.FeatureVector) (float64, error) {
	start := time.Now()
	key := CacheKey{Model: c.model, Features: features}

	if p, ok := c.cache.Get(key); ok {
		MLPredictionsTotal.WithLabelValues(c.model, "true").Inc()
		c.logger.LogPredictionRequest(c.Name(), len(features), true, ms(start))
		return p, nil
	}

	p, err := c.next.Probability(ctx, features)
	if err != nil {
		return 0, err
	}
	c.cache.Set(key, p)
	c.logger.LogPredictionRequest(c.Name(), len(features), false, ms(start))
	return p, nil
}

// ClearCache clears all cached predictions
func (c *CachedClient) ClearCache() {
	c.cache.Clear()
}

// GetCacheStats returns cache statistics
func (c *CachedClient) GetCacheStats() (hits, misses uint64, hitRatio float64) {
	return c.cache.Stats()
}

// Close closes the wrapped client when it holds a connection
func (c *CachedClient) Close() error {
	if closer, ok := c.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func ms(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
