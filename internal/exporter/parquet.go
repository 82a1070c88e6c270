package exporter

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataprocessing"
)

// parquetRow mirrors PeriodSummary with the on-disk column names. The
// count is an optional int64 column so a null survives the round trip.
type parquetRow struct {
	FiveYearPeriod string `parquet:"five_year_period"`
	SexCategory    string `parquet:"sex_category"`
	RetentionCount *int64 `parquet:"retention_count,optional"`
}

// writeParquet writes the aggregated table as a typed columnar file with
// no index column.
func writeParquet(path string, summaries []dataprocessing.PeriodSummary) error {
	rows := make([]parquetRow, len(summaries))
	for i, s := range summaries {
		rows[i] = parquetRow{
			FiveYearPeriod: s.FiveYearPeriod,
			SexCategory:    s.SexCategory,
			RetentionCount: s.RetentionCount,
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[parquetRow](file)
	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadParquet loads a previously written Parquet file back into
// summaries. The orchestrator uses this as its verification read-back.
func ReadParquet(path string) ([]dataprocessing.PeriodSummary, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}

	summaries := make([]dataprocessing.PeriodSummary, len(rows))
	for i, row := range rows {
		summaries[i] = dataprocessing.PeriodSummary{
			FiveYearPeriod: row.FiveYearPeriod,
			SexCategory:    row.SexCategory,
			RetentionCount: row.RetentionCount,
		}
	}
	return summaries, nil
}
