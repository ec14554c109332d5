// Package telemetry records autopilot ticks to parquet files.
//
// A Writer buffers ticks in memory and writes them in batches to
// ticks_<nanos>_<seq>.parquet, going through a tmp/ directory so readers
// never see a partial file. ReadFile loads a batch back.
package telemetry
