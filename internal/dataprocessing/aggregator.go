package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/manjushamadhav2012-cell/retention-rate-aggregator/internal/dataset"
)

// Column names the aggregator needs, matched after header normalization
const (
	columnStatisticLabel = "statistic label"
	columnUnit           = "unit"
	columnYear           = "year"
	columnSex            = "sex"
	columnValue          = "value"
)

// Filter constants for first-year entrant records
const (
	labelSubstring = "first year"
	countUnit      = "number"
)

// periodSpan is the width of one aggregation bucket in calendar years
const periodSpan = 5

// PeriodSummary is one row of the aggregated output: the total first-year
// enrollment for a (five-year period, sex) group.
type PeriodSummary struct {
	FiveYearPeriod string
	SexCategory    string
	// RetentionCount is null-capable so an aggregation edge case that
	// produces no numeric result surfaces as an explicit absence instead
	// of a truncated or wrapped number.
	RetentionCount *int64
}

// Aggregator filters raw retention records and rolls them up into
// five-year period totals by sex.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger falls back to the
// process default.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate transforms the raw table into the period/sex summary. An
// input that leaves no rows after filtering yields an empty slice and a
// nil error; the numeric steps never run over an empty set. The method
// holds no state, so repeated calls over the same table are identical.
func (a *Aggregator) Aggregate(ctx context.Context, table *dataset.RawTable) ([]PeriodSummary, error) {
	a.logger.InfoContext(ctx, "starting transformation and aggregation",
		slog.Int("record_count", table.Len()))

	cols, err := locateColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	filtered := filterRows(table.Rows, cols)
	a.logger.InfoContext(ctx, "records after label and unit filters",
		slog.Int("record_count", len(filtered)))

	if len(filtered) == 0 {
		a.logger.WarnContext(ctx, "no records matched the first-year entrant filters")
		return []PeriodSummary{}, nil
	}

	rows := coerceRows(filtered, cols)
	a.logger.InfoContext(ctx, "records after numeric coercion",
		slog.Int("record_count", len(rows)),
		slog.Int("dropped", len(filtered)-len(rows)))

	if len(rows) == 0 {
		return []PeriodSummary{}, nil
	}

	minYear, maxYear := yearRange(rows)
	a.logger.InfoContext(ctx, "year range in filtered data",
		slog.Int("min_year", minYear),
		slog.Int("max_year", maxYear))

	type groupKey struct {
		period string
		sex    string
	}
	totals := make(map[groupKey]float64)
	for _, row := range rows {
		key := groupKey{period: periodLabel(row.year, minYear), sex: row.sex}
		totals[key] += row.value
	}

	summaries := make([]PeriodSummary, 0, len(totals))
	for key, total := range totals {
		count := int64(math.Round(total))
		summaries = append(summaries, PeriodSummary{
			FiveYearPeriod: key.period,
			SexCategory:    key.sex,
			RetentionCount: &count,
		})
	}

	// Sorted output keeps runs deterministic and diffs readable
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].FiveYearPeriod != summaries[j].FiveYearPeriod {
			return summaries[i].FiveYearPeriod < summaries[j].FiveYearPeriod
		}
		return summaries[i].SexCategory < summaries[j].SexCategory
	})

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("group_count", len(summaries)))

	return summaries, nil
}

// columnIndexes holds the positions of the required columns in the raw table
type columnIndexes struct {
	label, unit, year, sex, value int
}

// locateColumns normalizes headers (trim + lowercase) and resolves the
// required column positions, so lookups downstream are insensitive to the
// source's header casing and whitespace.
func locateColumns(headers []string) (columnIndexes, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := columnIndexes{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{columnStatisticLabel, &cols.label},
		{columnUnit, &cols.unit},
		{columnYear, &cols.year},
		{columnSex, &cols.sex},
		{columnValue, &cols.value},
	} {
		i, ok := index[want.name]
		if !ok {
			return columnIndexes{}, fmt.Errorf("required column %q not found in dataset headers", want.name)
		}
		*want.dst = i
	}
	return cols, nil
}

// filterRows keeps rows whose statistic label contains "first year"
// (substring, case-insensitive) and whose unit equals "number"
// (case-insensitive). Percentage-unit rows sharing the label are dropped
// here.
func filterRows(rows [][]string, cols columnIndexes) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) <= cols.label || len(row) <= cols.unit ||
			len(row) <= cols.year || len(row) <= cols.sex || len(row) <= cols.value {
			continue
		}
		label := strings.ToLower(row[cols.label])
		if !strings.Contains(label, labelSubstring) {
			continue
		}
		unit := strings.TrimSpace(row[cols.unit])
		if !strings.EqualFold(unit, countUnit) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// numericRow is a filtered row after successful type coercion
type numericRow struct {
	year  int
	sex   string
	value float64
}

// coerceRows converts year and value to numbers, dropping any row where
// either conversion fails. Runs only after the label/unit filters so a
// malformed excluded row can never cause a drop.
func coerceRows(rows [][]string, cols columnIndexes) []numericRow {
	out := make([]numericRow, 0, len(rows))
	for _, row := range rows {
		year, ok := parseYear(row[cols.year])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[cols.value]), 64)
		if err != nil {
			continue
		}
		out = append(out, numericRow{year: year, sex: row[cols.sex], value: value})
	}
	return out
}

// parseYear accepts integer years and integral-valued numeric text like
// "2010.0", rejecting everything else.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if year, err := strconv.Atoi(s); err == nil {
		return year, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func yearRange(rows []numericRow) (minYear, maxYear int) {
	minYear, maxYear = rows[0].year, rows[0].year
	for _, row := range rows[1:] {
		if row.year < minYear {
			minYear = row.year
		}
		if row.year > maxYear {
			maxYear = row.year
		}
	}
	return minYear, maxYear
}

// periodLabel maps a year onto its five-year bucket anchored at minYear.
// Bucket k covers [minYear+5k, minYear+5k+4], so every year at or above
// minYear lands in exactly one bucket and the lowest bucket always starts
// at minYear. A single-year dataset yields the one bucket
// "minYear-(minYear+4)".
func periodLabel(year, minYear int) string {
	start := minYear + ((year-minYear)/periodSpan)*periodSpan
	return fmt.Sprintf("%d-%d", start, start+periodSpan-1)
}

// TotalCount sums the retention counts over all groups; nil counts
// contribute nothing. Used by callers for narration and sanity checks.
func TotalCount(summaries []PeriodSummary) int64 {
	var total int64
	for _, s := range summaries {
		if s.RetentionCount != nil {
			total += *s.RetentionCount
		}
	}
	return total
}
