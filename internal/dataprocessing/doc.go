// Package dataprocessing implements the transform-and-aggregate core of
// the retention pipeline. It takes the raw CSO dataset table, keeps only
// first-year entrant counts, and rolls them up into five-year period
// totals by sex.
//
// # Steps
//
// The aggregation runs as a fixed sequence:
//
//  1. Normalize headers (trim + lowercase) so column lookups are
//     insensitive to the source's casing and whitespace.
//  2. Keep rows whose statistic label contains "first year" and whose
//     unit is "number"; percentage rows sharing the label are dropped.
//  3. Coerce year and value to numbers, dropping rows that fail.
//  4. Bin years into five-year periods anchored at the minimum year.
//  5. Group by (period, sex) and sum values.
//
// An input with no surviving rows yields an empty result without running
// the numeric steps.
//
// # Usage
//
//	aggregator := dataprocessing.NewAggregator(logger)
//	summaries, err := aggregator.Aggregate(ctx, table)
//
// The aggregator holds no state between calls, so repeated runs over the
// same table produce identical output.
package dataprocessing
