// Command report renders the launch-strategy workbook from the CSV extracts
// without starting the server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"trendpulse/internal/config"
	"trendpulse/internal/dataset"
	"trendpulse/internal/exporter"
	"trendpulse/internal/infrastructure"
	"trendpulse/internal/services"
)

func main() {
	outputPath := flag.String("out", "strategy.xlsx", "output path for the strategy workbook")
	dataDir := flag.String("data", "", "directory holding the CSV extracts (defaults to the configured data dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := dataset.NewStore(dataset.NewLoader(cfg.Data.Dir, logger), logger)
	service := services.NewDashboardService(store, cfg, logger)

	logger.Info("Loading dataset", "dir", cfg.Data.Dir)
	strategy, err := service.StrategyView(ctx)
	if err != nil {
		logger.Error("Failed to assemble strategy view", "error", err)
		os.Exit(1)
	}
	keywords, err := service.KeywordView(ctx)
	if err != nil {
		logger.Error("Failed to assemble keyword view", "error", err)
		os.Exit(1)
	}
	price, err := service.PriceView(ctx, false)
	if err != nil {
		logger.Error("Failed to assemble price view", "error", err)
		os.Exit(1)
	}

	if err := exporter.WriteStrategyWorkbook(*outputPath, strategy, keywords, price); err != nil {
		logger.Error("Failed to write workbook", "error", err)
		os.Exit(1)
	}

	logger.Info("Strategy workbook written", "path", *outputPath)
}
