package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataprocessing"
)

// Writer persists the aggregated table under an output directory in both
// CSV and Parquet form.
type Writer struct {
	outputDir string
	logger    *slog.Logger
}

// NewWriter creates a writer rooted at outputDir. The directory is
// created on first write, not here.
func NewWriter(outputDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{outputDir: outputDir, logger: logger}
}

// CSVPath returns the CSV output path for a base name
func (w *Writer) CSVPath(baseName string) string {
	return filepath.Join(w.outputDir, baseName+".csv")
}

// ParquetPath returns the Parquet output path for a base name
func (w *Writer) ParquetPath(baseName string) string {
	return filepath.Join(w.outputDir, baseName+".parquet")
}

// Write persists the summaries as <base>.csv and <base>.parquet. An empty
// table writes nothing and produces no files. Each format is attempted
// independently; a failure in one is logged and does not stop the other.
// The joined per-format errors are returned for the caller to report, not
// to abort on.
func (w *Writer) Write(ctx context.Context, baseName string, summaries []dataprocessing.PeriodSummary) error {
	if len(summaries) == 0 {
		w.logger.WarnContext(ctx, "nothing to save, aggregated table is empty")
		return nil
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var csvErr, parquetErr error

	csvPath := w.CSVPath(baseName)
	if csvErr = writeCSV(csvPath, summaries); csvErr != nil {
		w.logger.ErrorContext(ctx, "failed to save CSV output",
			slog.String("path", csvPath),
			slog.String("error", csvErr.Error()))
	} else {
		w.logger.InfoContext(ctx, "saved CSV output",
			slog.String("path", csvPath),
			slog.Int("record_count", len(summaries)))
	}

	parquetPath := w.ParquetPath(baseName)
	if parquetErr = writeParquet(parquetPath, summaries); parquetErr != nil {
		w.logger.ErrorContext(ctx, "failed to save Parquet output",
			slog.String("path", parquetPath),
			slog.String("error", parquetErr.Error()))
	} else {
		w.logger.InfoContext(ctx, "saved Parquet output",
			slog.String("path", parquetPath),
			slog.Int("record_count", len(summaries)))
	}

	return errors.Join(csvErr, parquetErr)
}
