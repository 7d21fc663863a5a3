package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"set_syncer/internal/config"
	"set_syncer/internal/publisher"
	"set_syncer/internal/scheduler"
	"set_syncer/internal/service"
	"set_syncer/internal/source/scryfall"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("syncer", flag.ContinueOnError)
	configPath := fs.StringP("config", "c", "config.yaml", "path to config file")
	verbose := fs.BoolP("verbose", "v", false, "log at debug level")
	daemon := fs.BoolP("daemon", "d", false, "keep running and sync on the configured interval")
	list := fs.BoolP("list", "l", false, "print the stored catalog and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	logger = setupLogger(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer st.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	if *list {
		if err := printCatalog(ctx, st.sets, os.Stdout); err != nil {
			logger.Error("failed to list sets", "error", err)
			return 1
		}
		return 0
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return 1
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	source := scryfall.New(scryfall.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout,
		UserAgent:    cfg.API.UserAgent,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
	}, logger)

	syncService := service.NewSyncService(
		source,
		st.sets,
		st.syncState,
		pub,
		logger,
		cfg.Sync,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync, logger)

	if *daemon {
		logger.Info("starting set syncer",
			"source", source.Name(),
			"interval", cfg.Sync.Interval,
			"workers", cfg.Sync.Workers,
		)
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
			return 1
		}
		return 0
	}

	if _, err := sched.RunOnce(ctx); err != nil {
		logger.Error("sync failed", "error", err)
		return 1
	}
	return 0
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
