package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/metrics"
	"github.com/raushankrgupta/product-page-extractor/models"
)

const keyPrefix = "pagex:report:"

type kvStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// ReportCache keeps recent full reports in Redis, keyed by page URL
type ReportCache struct {
	client kvStore
	ttl    time.Duration
}

// NewReportCache connects to cfg.Addr and pings it
func NewReportCache(ctx context.Context, cfg config.RedisConfig) (*ReportCache, error) {
	if cfg.Addr == "" {
		return nil, eris.New("redis: addr is not set")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "redis: ping")
	}

	zap.L().Info("connected to redis", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return &ReportCache{client: rdb, ttl: cfg.TTL}, nil
}

// Key hashes the URL so arbitrary query strings make safe keys
func Key(pageURL string) string {
	h := sha256.Sum256([]byte(pageURL))
	return keyPrefix + hex.EncodeToString(h[:])
}

// Get returns the cached report for pageURL. Redis errors count as a miss.
func (c *ReportCache) Get(ctx context.Context, pageURL string) (*models.PageReport, bool) {
	raw, err := c.client.Get(ctx, Key(pageURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ReportCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
		} else {
			metrics.ReportCacheLookups.WithLabelValues(metrics.CacheError).Inc()
			zap.L().Warn("report cache read failed", zap.String("url", pageURL), zap.Error(err))
		}
		return nil, false
	}

	var report models.PageReport
	if err := json.Unmarshal(raw, &report); err != nil {
		metrics.ReportCacheLookups.WithLabelValues(metrics.CacheError).Inc()
		zap.L().Warn("report cache entry unreadable", zap.String("url", pageURL), zap.Error(err))
		return nil, false
	}
	metrics.ReportCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
	return &report, true
}

// Set stores report for the configured TTL
func (c *ReportCache) Set(ctx context.Context, pageURL string, report *models.PageReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "redis: encode report")
	}
	if err := c.client.Set(ctx, Key(pageURL), raw, c.ttl).Err(); err != nil {
		return eris.Wrap(err, "redis: set report")
	}
	return nil
}

func (c *ReportCache) Close() error {
	return c.client.Close()
}
