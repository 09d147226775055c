package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/polisci/internal/app"
	"github.com/briangreenhill/polisci/internal/config"
	"github.com/briangreenhill/polisci/internal/jobs"
)

func main() {
	bootLog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("config error")
	}
	// the worker only warms the shared cache
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("invalid config")
	}

	logger := app.NewLogger(os.Stdout, cfg.LogLevel).With().Str("component", "worker").Logger()

	rdb := app.NewRedis(cfg.Redis)
	defer rdb.Close() //nolint:errcheck

	gen, err := app.NewGenerator(context.Background(), cfg.LLM)
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

	srv := asynq.NewServer(app.AsynqRedis(cfg.Redis), asynq.Config{
		Concurrency:    4,
		StrictPriority: false,
		Queues:         jobs.Queues,
		Logger:         asynqLogger{logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn().Err(err).Str("type", task.Type()).Msg("task failed")
		}),
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskPrefetchEntity, jobs.NewPrefetchHandler(svc, logger))

	logger.Info().Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}

// asynqLogger routes asynq's internal logs through zerolog
type asynqLogger struct {
	l zerolog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
