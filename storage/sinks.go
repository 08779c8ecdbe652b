package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
)

// FromConfig returns the local file sink plus any remote sink that is
// configured. A remote sink that cannot be set up is logged and left out.
// The returned close function releases remote connections.
func FromConfig(ctx context.Context, cfg *config.Config) ([]Sink, func(context.Context)) {
	sinks := []Sink{NewFileStore(cfg.Output.Dir)}
	closers := []func(context.Context) error{}

	if cfg.S3.Bucket != "" {
		s, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			zap.L().Warn("s3 sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.Mongo.URI != "" {
		s, err := NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			zap.L().Warn("mongo sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, s)
			closers = append(closers, s.Close)
		}
	}

	if cfg.Postgres.DSN != "" {
		s, err := NewPostgresStore(ctx, cfg.Postgres)
		if err != nil {
			zap.L().Warn("postgres sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, s)
			closers = append(closers, s.Close)
		}
	}

	return sinks, func(ctx context.Context) {
		for _, c := range closers {
			if err := c(ctx); err != nil {
				zap.L().Warn("closing sink", zap.Error(err))
			}
		}
	}
}
