package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"flight-tracker/charts"
	"flight-tracker/config"
	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/services"
	"flight-tracker/storage"
	"flight-tracker/utils"
)

// exitNoValidInput is the exit status when no snapshot could be read at all.
const exitNoValidInput = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger().Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	collector := metrics.NewCollector("flights")
	ctx := context.Background()
	today := time.Now()

	logger.Info("=== Flight price merge starting ===")
	logger.Info("Config: route: %s | snapshots: %s | concurrency: %d",
		cfg.Route(), cfg.SnapshotDir, cfg.MaxConcurrency)

	timer := collector.StageTimer("merge")
	aggregator := services.NewAggregator(logger, collector, cfg.MaxConcurrency)
	merge, err := aggregator.MergeDir(cfg.SnapshotDir)
	timer.ObserveDuration()
	if err != nil {
		if services.IsFatal(err) {
			logger.Error("No usable snapshot in %s: %v", cfg.SnapshotDir, err)
			os.Exit(exitNoValidInput)
		}
		logger.Error("Merge failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Merge run %s: %d rows from %d files", merge.RunID, len(merge.Rows), merge.Stats.FilesRead)

	csvPath := cfg.MergedFileName(today, "csv")
	if err := writeMergedCSV(csvPath, merge.Rows); err != nil {
		logger.Error("CSV write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Merged table saved to %s", csvPath)

	parquetPath := cfg.MergedFileName(today, "parquet")
	if err := storage.WriteParquetFile(parquetPath, merge.Rows); err != nil {
		logger.Error("Parquet write failed: %v", err)
		parquetPath = ""
	} else {
		logger.Info("Merged table saved to %s", parquetPath)
	}

	rows := merge.Rows
	if cfg.PostgresEnabled {
		rows = syncPostgres(ctx, cfg, logger, merge.RunID, merge.Rows)
	}

	if cfg.S3Enabled() {
		uploadArtifacts(ctx, cfg, logger, today, csvPath, parquetPath)
	}

	stats := services.NewStatisticsService(logger, collector)
	analysis := stats.Analyze(rows)

	presenter := services.NewPresenter(cfg.Currency, cfg.Route())
	services.NewReportPrinter(presenter).Print(os.Stdout, merge, analysis)

	view := presenter.Build(rows, analysis, services.Airlines(rows), nil)
	if err := charts.WriteHTML(cfg.ChartPath, view); err != nil {
		logger.Error("Chart write failed: %v", err)
	} else {
		logger.Info("Chart saved to %s", cfg.ChartPath)
		if cfg.ChartPNGPath != "" {
			if err := charts.CapturePNG(ctx, cfg.ChartPath, cfg.ChartPNGPath, cfg.ChromeBin); err != nil {
				logger.Warn("PNG capture failed: %v", err)
			} else {
				logger.Info("Chart image saved to %s", cfg.ChartPNGPath)
			}
		}
	}

	fmt.Printf("  Done. Merged CSV → %s | Chart → %s\n\n", csvPath, cfg.ChartPath)
}

func writeMergedCSV(path string, rows []models.NormalizedFareRow) error {
	w, err := storage.NewMergedWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

// syncPostgres replaces the stored table with this run's rows and returns the
// rows read back from the database, or the in-memory rows when that fails.
func syncPostgres(ctx context.Context, cfg *config.Config, logger *utils.Logger, runID string, rows []models.NormalizedFareRow) []models.NormalizedFareRow {
	pg, err := storage.NewPostgresStore(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return rows
	}
	var store storage.RowStore = pg
	defer store.Close()

	if err := store.Write(ctx, runID, rows); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return rows
	}
	logger.Info("Merged rows stored in PostgreSQL (table: fare_rows)")

	stored, err := store.FetchAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch rows from DB for insights: %v", err)
		return rows
	}
	for i := range stored {
		stored[i].DurationHours = services.ParseDurationHours(stored[i].Duration)
	}
	if len(stored) != len(rows) {
		logger.Warn("PostgreSQL returned %d rows, expected %d", len(stored), len(rows))
	}
	return stored
}

func uploadArtifacts(ctx context.Context, cfg *config.Config, logger *utils.Logger, day time.Time, paths ...string) {
	s3u, err := storage.NewS3Uploader(ctx, storage.S3Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PathStyle:       cfg.S3PathStyle,
	})
	if err != nil {
		logger.Error("S3 setup failed: %v", err)
		return
	}
	var uploader storage.ArtifactUploader = s3u

	for _, p := range paths {
		if p == "" {
			continue
		}
		key := storage.MergedKey(day, p)
		if err := uploader.Upload(ctx, p, key); err != nil {
			logger.Error("S3 upload of %s failed: %v", p, err)
			continue
		}
		logger.Info("Uploaded %s to s3://%s/%s", p, cfg.S3Bucket, key)
	}
}
