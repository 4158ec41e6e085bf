package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/rajtiwarikmw/aethyrtech/adapter/bookshop"
	"github.com/rajtiwarikmw/aethyrtech/catalog"
	"github.com/rajtiwarikmw/aethyrtech/config"
	"github.com/rajtiwarikmw/aethyrtech/engine"
	"github.com/rajtiwarikmw/aethyrtech/models"
	"github.com/rajtiwarikmw/aethyrtech/report"
)

func main() {
	cfg := config.Load()

	storeFlag := flag.String("store", cfg.Store, "Catalog backend: postgres or memory")
	targetsFile := flag.String("targets", cfg.TargetsFile, "JSON file listing category targets")
	budgetFlag := flag.Duration("budget", cfg.MaxRunDuration, "Wall-clock budget for the whole run")
	maxRetries := flag.Int("max-retries", cfg.MaxRetries, "Maximum fetch attempts per URL")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	reportURL := flag.String("report-url", cfg.ReportURL, "Monitoring webhook for run reports")
	verbose := flag.Bool("v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	cfg.Store = *storeFlag
	cfg.TargetsFile = *targetsFile
	cfg.MaxRunDuration = *budgetFlag
	cfg.MaxRetries = *maxRetries
	cfg.MetricsAddr = *metricsAddr
	cfg.ReportURL = *reportURL
	cfg.Verbose = *verbose

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		slog.Error("loading targets", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("opening catalog store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("closing store", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	metrics := engine.NewMetrics()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting catalog run",
		slog.Int("targets", len(targets)),
		slog.Duration("budget", cfg.MaxRunDuration),
		slog.String("store", cfg.Store),
	)

	reports := engine.New(cfg, store, metrics).Run(ctx, targets)

	var pusher *report.Pusher
	if cfg.ReportURL != "" {
		pusher = report.NewPusher(cfg.ReportURL)
	}
	for _, r := range reports {
		report.Log(slog.Default(), r)
		if pusher != nil {
			pushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := pusher.Push(pushCtx, r); err != nil {
				slog.Error("report push failed", slog.String("platform", r.Platform), slog.Any("error", err))
			}
			cancel()
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(reports)
}

func openStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Store {
	case "memory":
		return catalog.NewMemoryStore(), nil
	case "postgres":
		return catalog.NewPostgresStore(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported store: %s", cfg.Store)
	}
}

func printSummary(reports []models.RunReport) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Catalog run complete")
	for _, r := range reports {
		fmt.Printf("  %s\n", r.Platform)
		fmt.Printf("    Found:        %d\n", r.Found)
		fmt.Printf("    Added:        %d\n", r.Added)
		fmt.Printf("    Updated:      %d\n", r.Updated)
		fmt.Printf("    Deactivated:  %d\n", r.Deactivated)
		fmt.Printf("    Errors:       %d\n", r.Errors)
		fmt.Printf("    Duration:     %v\n", r.Duration.Round(time.Millisecond))
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
