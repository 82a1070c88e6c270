// Package exporter persists the aggregated retention table.
//
// A Writer stores the table under an output directory in two
// interchangeable forms sharing a base name: <base>.csv (delimited text,
// header row, no index column) and <base>.parquet (typed columns, with a
// null-capable int64 count). An empty table writes nothing; a failure in
// one format never prevents attempting the other.
//
// ReadCSV and ReadParquet reload written files, used by the orchestrator's
// verification step and by round-trip tests.
package exporter
