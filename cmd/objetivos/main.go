package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/objetivos/internal/cli"
	"github.com/alexanderramin/objetivos/internal/config"
	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/repository"
	"github.com/alexanderramin/objetivos/internal/service"
	"github.com/alexanderramin/objetivos/internal/web"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// snapshotCapacity bounds how many open web editing sessions are kept.
const snapshotCapacity = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	var level slog.LevelVar
	logger := cfg.Logger(os.Stderr, &level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open database. An unreachable server is not fatal: every view
	// reports the connection failure when it loads.
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	database, err := db.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	if err := database.Verify(openCtx); err != nil {
		logger.Warn("database unreachable at startup", "dialect", database.Dialect.String(), "error", err)
	} else {
		logger.Debug("database opened", "dialect", database.Dialect.String())
	}
	cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Wire services
	areas := service.NewAreaService(
		repository.NewSQLAreaRepo(database, database.Dialect),
		db.NewUnitOfWork(database),
		database.Dialect,
		service.NewLogUseCaseObserver(logger),
		service.NewMetricsObserver(reg),
	)

	app := &cli.App{
		Areas: areas,
		Web: web.NewRouter(web.Options{
			Areas:   areas,
			DB:      database,
			Store:   web.NewSnapshotStore(cfg.SnapshotTTL, snapshotCapacity),
			Logger:  logger,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		}),
		Addr:     cfg.Addr,
		Logger:   logger,
		LogLevel: &level,
	}

	// Detect interactive terminal for the tui command.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
