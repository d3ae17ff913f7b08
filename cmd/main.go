package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pressgram/internal/bot"
	"pressgram/internal/config"
	"pressgram/internal/database"
	"pressgram/internal/ingest"
	"pressgram/internal/scheduler"
	"pressgram/internal/scraper"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DSN(), log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbHost", cfg.DBHost,
			"dbName", cfg.DBName)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbHost", cfg.DBHost,
		"dbName", cfg.DBName)

	fetcher := scraper.NewFetcher(log)
	coordinator := ingest.New(db, fetcher, scraper.Sites(), log)

	botInst, err := bot.New(cfg.Token, db, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err)

		return
	}
	log.InfoContext(ctx, "Bot is initialized")

	sched := scheduler.New(ctx, coordinator, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.IngestSpec)

		return
	}
	defer sched.Stop()
	sched.RunIngestionNow()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.IngestSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}
