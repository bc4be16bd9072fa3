package main

import (
	"context"
	"fmt"
	"log/slog"
	"syscall"

	"github.com/glamsite/glamsite/internal/adapter/blobhttp"
	"github.com/glamsite/glamsite/internal/adapter/memblob"
	"github.com/glamsite/glamsite/internal/adapter/natskv"
	"github.com/glamsite/glamsite/internal/adapter/postgres"
	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/port/blob"
	"github.com/glamsite/glamsite/internal/resilience"
	"github.com/glamsite/glamsite/internal/secrets"
)

// openBlobStore connects the blob backend selected by cfg.Blob.Driver. The
// returned func releases its connections.
func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	switch cfg.Blob.Driver {
	case config.BlobDriverHTTP:
		c := blobhttp.NewClient(cfg.Blob.BaseURL, cfg.Blob.Token, cfg.Blob.Timeout)
		c.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		if cfg.Blob.TokenFile != "" {
			token, err := secrets.NewCredential(secrets.FileSource(cfg.Blob.TokenFile))
			if err != nil {
				return nil, nil, fmt.Errorf("blob token: %w", err)
			}
			c.SetTokenSource(token.Value)
			secrets.ReloadOn(ctx, token, "blob_token", syscall.SIGHUP)
		}
		slog.Info("blob store configured", "driver", cfg.Blob.Driver, "base_url", cfg.Blob.BaseURL, "writable", c.Writable())
		return c, func() {}, nil

	case config.BlobDriverNATS:
		s, err := natskv.Connect(ctx, cfg.Blob.NATSURL, cfg.Blob.NATSBucket)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.BlobDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		slog.Info("postgres connected")
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied")
		return postgres.NewStore(pool), pool.Close, nil

	case config.BlobDriverMemory:
		slog.Warn("using in-memory blob store; content is lost on restart")
		return memblob.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
}
