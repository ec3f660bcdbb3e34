package models

import "time"

// FileStatus is the outcome of reading one snapshot file.
type FileStatus string

const (
	FileKept    FileStatus = "kept"
	FileEmpty   FileStatus = "empty"
	FileSkipped FileStatus = "skipped"
)

// FileDiagnostic reports what happened to a single snapshot during a merge.
type FileDiagnostic struct {
	File           string
	CollectionDate time.Time
	Status         FileStatus
	Reason         string
	RowsRead       int
	RowsKept       int
	InvalidPrices  int
	Duplicates     int
}

// MergeStats counts inputs and drops across one merge run.
type MergeStats struct {
	FilesSeen     int
	FilesRead     int
	FilesEmpty    int
	FilesSkipped  int
	RowsRead      int
	RowsKept      int
	InvalidPrices int
	Duplicates    int
}

// MergeResult is the output of the aggregator: the normalized table ordered by
// collection date, plus per-file diagnostics.
type MergeResult struct {
	RunID       string
	Rows        []NormalizedFareRow
	Diagnostics []FileDiagnostic
	Stats       MergeStats
}
