package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"flight-tracker/config"
	"flight-tracker/dashboard"
	"flight-tracker/metrics"
	"flight-tracker/services"
	"flight-tracker/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger().Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	collector := metrics.NewCollector("flights")

	aggregator := services.NewAggregator(logger, collector, cfg.MaxConcurrency)
	stats := services.NewStatisticsService(logger, collector)
	loader := services.NewCachedLoader(cfg.SnapshotDir, aggregator, stats, logger, collector)

	// An empty snapshot directory is not fatal: the dashboard shows an empty state.
	if _, err := loader.Load(); err != nil {
		logger.Warn("Initial load of %s: %v", cfg.SnapshotDir, err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "flight-tracker-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	dashboard.RegisterRoutes(app, dashboard.Deps{
		Loader:    loader,
		Stats:     stats,
		Presenter: services.NewPresenter(cfg.Currency, cfg.Route()),
		Logger:    logger,
		Metrics:   collector,
		MaxRows:   500,
	})

	go func() {
		logger.Info("Dashboard listening on :%s", cfg.DashboardPort)
		if err := app.Listen(":" + cfg.DashboardPort); err != nil {
			logger.Error("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown: %v", err)
	}
}
