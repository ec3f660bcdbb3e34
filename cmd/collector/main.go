package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-tracker/config"
	"flight-tracker/metrics"
	"flight-tracker/scheduler"
	"flight-tracker/scraper/serpapi"
	"flight-tracker/services"
	"flight-tracker/utils"
)

func main() {
	once := flag.Bool("once", false, "Run a single collection and exit instead of scheduling daily runs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger().Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.LogLevel, File: cfg.LogFile})

	if cfg.SerpAPIKey == "" {
		logger.Error("API_KEY_SERPAPI is not set")
		os.Exit(1)
	}

	client := serpapi.NewClient(cfg.SerpAPIKey, &http.Client{Timeout: cfg.HTTPTimeout},
		cfg.MaxRetries, logger, metrics.NewCollector("flights_collector"))
	params := serpapi.SearchParams{
		DepartureID:  cfg.DepartureID,
		ArrivalID:    cfg.ArrivalID,
		OutboundDate: cfg.OutboundDate,
		ReturnDate:   cfg.ReturnDate,
		Currency:     cfg.Currency,
		Lang:         cfg.Lang,
	}
	collector := services.NewCollector(client, params, cfg.SnapshotDir, cfg.SnapshotPrefix, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		logger.Info("=== Flight price collection (single run) ===")
		path, n, err := collector.CollectOnce(ctx)
		if errors.Is(err, services.ErrNoFlights) {
			logger.Warn("No flights found, nothing written")
			return
		}
		if err != nil {
			logger.Error("Collection failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Done. %d legs → %s", n, path)
		return
	}

	// each run gets enough time for every retry plus back-off
	timeout := time.Duration(cfg.MaxRetries+1) * 2 * cfg.HTTPTimeout
	sched := scheduler.New(collector, cfg.CollectAt, time.Local, timeout, logger)
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler: %v", err)
		os.Exit(1)
	}
	defer sched.Stop()

	<-ctx.Done()
	logger.Info("Shutting down collector")
}
