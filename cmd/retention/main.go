package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/config"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/infrastructure"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("starting student retention pipeline",
		slog.String("dataset_url", cfg.Dataset.URL),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("output_base_name", cfg.Output.BaseName))

	runner := pipeline.NewRunner(cfg, logger)
	if err := runner.Run(context.Background()); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
