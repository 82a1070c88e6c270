package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataprocessing"
)

// csvHeaders is the fixed output column order
var csvHeaders = []string{"five_year_period", "sex_category", "retention_count"}

// writeCSV writes the aggregated table as comma-separated text with a
// header row and no index column. A nil retention count renders as an
// empty cell.
func writeCSV(path string, summaries []dataprocessing.PeriodSummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, s := range summaries {
		record := []string{s.FiveYearPeriod, s.SexCategory, formatCount(s.RetentionCount)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV loads a previously written CSV back into summaries. Used for
// round-trip verification.
func ReadCSV(path string) ([]dataprocessing.PeriodSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}

	summaries := make([]dataprocessing.PeriodSummary, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(csvHeaders) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(record), len(csvHeaders))
		}
		summary := dataprocessing.PeriodSummary{
			FiveYearPeriod: record[0],
			SexCategory:    record[1],
		}
		if record[2] != "" {
			count, err := strconv.ParseInt(record[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d has non-integer count %q: %w", i+1, record[2], err)
			}
			summary.RetentionCount = &count
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func formatCount(count *int64) string {
	if count == nil {
		return ""
	}
	return strconv.FormatInt(*count, 10)
}
