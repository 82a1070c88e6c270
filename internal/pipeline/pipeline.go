package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/config"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataprocessing"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataset"
	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/exporter"
)

// Stage identifiers used in timing narration
const (
	stageLoad      = "load"
	stageAggregate = "aggregate"
	stageSave      = "save"
	stageVerify    = "verify"
)

// Runner sequences the pipeline stages: load, aggregate, save, verify.
// Each stage receives its input by value from the previous one; there is
// no shared mutable state and no cross-run state.
type Runner struct {
	cfg        *config.Config
	loader     *dataset.Loader
	aggregator *dataprocessing.Aggregator
	writer     *exporter.Writer
	logger     *slog.Logger
}

// NewRunner wires a runner from configuration
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:        cfg,
		loader:     dataset.NewLoader(cfg.Dataset.URL, cfg.Dataset.Timeout, logger),
		aggregator: dataprocessing.NewAggregator(logger),
		writer:     exporter.NewWriter(cfg.Output.Dir, logger),
		logger:     logger,
	}
}

// Run executes one pipeline pass. Expected failures (unreachable source,
// unparsable body, nothing left after filtering, write or verification
// problems) are logged and end the run normally; Run returns an error
// only for misuse the process should exit non-zero on.
func (r *Runner) Run(ctx context.Context) error {
	table, err := timed(r.logger, stageLoad, func() (*dataset.RawTable, error) {
		return r.loader.Load(ctx)
	})
	if err != nil || table.Len() == 0 {
		if err != nil {
			r.logger.ErrorContext(ctx, "pipeline aborted, no usable data loaded",
				slog.String("error", err.Error()))
		} else {
			r.logger.ErrorContext(ctx, "pipeline aborted, dataset has no rows")
		}
		return nil
	}

	summaries, err := timed(r.logger, stageAggregate, func() ([]dataprocessing.PeriodSummary, error) {
		return r.aggregator.Aggregate(ctx, table)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "aggregation failed",
			slog.String("error", err.Error()))
		return nil
	}

	_, err = timed(r.logger, stageSave, func() (struct{}, error) {
		return struct{}{}, r.writer.Write(ctx, r.cfg.Output.BaseName, summaries)
	})
	if err != nil {
		// Per-format write failures were already logged by the writer;
		// they never abort the run.
		r.logger.WarnContext(ctx, "one or more output formats failed to save",
			slog.String("error", err.Error()))
	}

	if len(summaries) > 0 {
		r.verify(ctx)
	}

	r.logger.InfoContext(ctx, "pipeline finished",
		slog.Int("group_count", len(summaries)),
		slog.Int64("total_retention_count", dataprocessing.TotalCount(summaries)))

	return nil
}

// verify reloads the Parquet output as a sanity check. Failure is logged,
// never fatal.
func (r *Runner) verify(ctx context.Context) {
	path := r.writer.ParquetPath(r.cfg.Output.BaseName)
	loaded, err := timed(r.logger, stageVerify, func() ([]dataprocessing.PeriodSummary, error) {
		return exporter.ReadParquet(path)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "verification read-back failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}

	r.logger.InfoContext(ctx, "verification read-back succeeded",
		slog.String("path", path),
		slog.Int("record_count", len(loaded)))
	for i, s := range loaded {
		if i >= 5 {
			break
		}
		attrs := []any{
			slog.String("five_year_period", s.FiveYearPeriod),
			slog.String("sex_category", s.SexCategory),
		}
		if s.RetentionCount != nil {
			attrs = append(attrs, slog.Int64("retention_count", *s.RetentionCount))
		}
		r.logger.InfoContext(ctx, "verified record", attrs...)
	}
}

// timed wraps a stage invocation with elapsed-time measurement
func timed[T any](logger *slog.Logger, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	logger.Info("stage finished",
		slog.String("stage", stage),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil))
	return result, err
}
