// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/polisci/internal/app"
	"github.com/briangreenhill/polisci/internal/config"
	"github.com/briangreenhill/polisci/internal/http/routes"
	"github.com/briangreenhill/polisci/internal/jobs"
	"github.com/briangreenhill/polisci/internal/saved"
)

func main() {
	bootLog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("config error")
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("invalid config")
	}

	// Logger
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	logger.Info().Str("port", cfg.Port).Str("provider", cfg.LLM.Provider).Msg("starting api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional unless the cache lives there
	var rdb redis.UniversalClient
	if cfg.Cache.Backend == "redis" {
		client := app.NewRedis(cfg.Redis)
		defer client.Close() //nolint:errcheck
		rdb = client
	}

	// Content
	gen, err := app.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal().Err(err).Msg("generator error")
	}
	store, err := app.NewContentStore(cfg.Cache, rdb, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cache error")
	}
	svc, err := app.NewService(cfg, gen, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("content service error")
	}

	// Saved items
	var savedStore saved.Store = saved.NewMemory()
	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db error")
		}
		defer pool.Close()
		pg := saved.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("db schema error")
		}
		savedStore = pg
	} else {
		logger.Warn().Msg("DATABASE_URL not set, saved items are kept in memory")
	}

	// Prefetch queue
	var queue jobs.Enqueuer
	if cfg.Cache.Backend == "redis" {
		client := asynq.NewClient(app.AsynqRedis(cfg.Redis))
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("close asynq client")
			}
		}()
		queue = client
	} else {
		logger.Info().Msg("prefetch queue disabled, it needs the redis cache backend")
	}

	// Sessions
	sess := scs.New()
	sess.Lifetime = cfg.Session.Lifetime
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = cfg.Session.SecureCookie

	// Router / server
	s := routes.New(routes.ServerOptions{
		Sess:    sess,
		Content: svc,
		Saved:   savedStore,
		Queue:   queue,
		Logger:  logger,
	})

	go s.Stacks.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("api stopped")
}
