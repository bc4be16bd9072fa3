package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	gshttp "github.com/glamsite/glamsite/internal/adapter/http"
	cfotel "github.com/glamsite/glamsite/internal/adapter/otel"
	"github.com/glamsite/glamsite/internal/adapter/ristretto"
	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/logger"
	"github.com/glamsite/glamsite/internal/middleware"
	"github.com/glamsite/glamsite/internal/service"
)

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		err = runAdmin(os.Args[2:])
	} else {
		err = run()
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"blob_driver", cfg.Blob.Driver,
		"auth_enabled", cfg.Auth.Enabled,
		"trust_proxy", cfg.Server.TrustProxy,
	)
	if cfg.Auth.Enabled && cfg.Auth.SessionSecret == config.DevSessionSecret {
		slog.Warn("using the development session secret; set GLAMSITE_SESSION_SECRET in production")
	}
	if !cfg.Auth.Enabled {
		slog.Warn("admin sessions disabled; content writes are not gated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	shutdownOTEL, err := cfotel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTEL(flushCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	store, closeStore, err := openBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	defer closeStore()
	if !store.Writable() {
		slog.Warn("blob store has no write credential; content writes will fail", "driver", cfg.Blob.Driver)
	}

	revoked, err := ristretto.New(cfg.Auth.RevocationCacheBytes)
	if err != nil {
		return fmt.Errorf("revocation list: %w", err)
	}
	defer revoked.Close()

	// --- Services ---

	sessions := service.NewSessionService(cfg.Auth, revoked)
	content := service.NewContentService(
		cfotel.InstrumentBlob(store, cfg.Blob.Driver, metrics),
		sessions,
		contentOptions(cfg, metrics)...,
	)

	// --- HTTP ---

	handlers := &gshttp.Handlers{
		Content:    content,
		Session:    sessions,
		Cookie:     gshttp.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.SecureCookie},
		MaxBody:    cfg.Server.MaxBodyBytes,
		BlobDriver: cfg.Blob.Driver,
		Static:     gshttp.NewStaticHandler(cfg.Server.StaticDir),
	}

	loginLimiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	loginLimiter.StartCleanup(ctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(cfg, handlers, loginLimiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newRouter builds the middleware chain and mounts every route. Forwarded
// client addresses are honoured only with server.trust_proxy, since the login
// limiter keys on the client IP.
func newRouter(cfg *config.Config, h *gshttp.Handlers, login *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(cfotel.HTTPMiddleware(cfg.OTEL.Service))
	r.Use(gshttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(gshttp.SecurityHeaders)
	r.Use(chimw.Timeout(30 * time.Second))

	gshttp.MountRoutes(r, h, login)
	return r
}

func contentOptions(cfg *config.Config, metrics *cfotel.Metrics) []service.ContentOption {
	opts := []service.ContentOption{service.WithMetrics(metrics)}
	if cfg.Content.StrictShapes {
		opts = append(opts, service.WithStrictShapes())
	}
	return opts
}
