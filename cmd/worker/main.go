// Command worker is the helpdesk notification worker: it sweeps every
// registered chat on an interval, diffs upstream ticket state against
// the per-chat cache, and delivers the resulting notifications through
// the Telegram Bot API. It also runs the nightly state janitor and an
// ops HTTP server with Prometheus metrics and health probes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"helpdesk-notify/internal/config"
	"helpdesk-notify/internal/infra/helpdesk"
	"helpdesk-notify/internal/infra/store"
	"helpdesk-notify/internal/infra/telegram"
	"helpdesk-notify/internal/infra/worker"
	"helpdesk-notify/internal/observability/logging"
	"helpdesk-notify/internal/usecase/notify"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	workerCfg := worker.LoadConfigFromEnv(logger)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Error("could not open state directory",
			slog.String("dir", cfg.DataDir),
			slog.Any("error", err))
		os.Exit(1)
	}

	api := helpdesk.NewClient(helpdesk.Config{
		BaseURL:            cfg.Helpdesk.BaseURL,
		APIVersion:         cfg.Helpdesk.APIVersion,
		EncodedCredentials: cfg.Helpdesk.EncodedCredentials,
		CommentsPath:       cfg.Helpdesk.CommentsPath,
		LifetimePath:       cfg.Helpdesk.LifetimePath,
		Timeout:            cfg.Helpdesk.Timeout,
	})
	bot := telegram.NewBotAPI(telegram.Config{
		Token:   cfg.TelegramToken,
		Timeout: cfg.Helpdesk.Timeout,
	})

	engine := notify.NewService(api, st, bot, cfg.Helpdesk.WebBase, logger)
	loop := worker.NewLoop(engine, st, workerCfg, logger)
	ops := worker.NewOpsServer(workerCfg.OpsPort, logger)
	loop.OnFirstSweep(func() { ops.SetReady(true) })

	janitorCron := cron.New()
	janitor := worker.NewJanitor(st, logger)
	if _, err := janitor.Schedule(janitorCron, workerCfg.JanitorSchedule); err != nil {
		logger.Error("could not schedule janitor",
			slog.String("schedule", workerCfg.JanitorSchedule),
			slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := ops.Run(gctx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		janitorCron.Start()
		defer func() { <-janitorCron.Stop().Done() }()
		<-gctx.Done()
		return nil
	})
	g.Go(func() error {
		err := loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	logger.Info("worker started",
		slog.Duration("poll_interval", workerCfg.PollInterval),
		slog.Int("ops_port", workerCfg.OpsPort),
		slog.String("janitor_schedule", workerCfg.JanitorSchedule))

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
