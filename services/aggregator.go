package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/utils"
)

// Aggregator merges snapshot files into one normalized fare table.
type Aggregator struct {
	reader      *SnapshotReader
	logger      *utils.Logger
	metrics     *metrics.Collector
	concurrency int
}

// NewAggregator creates an Aggregator. Snapshots are read on up to
// concurrency goroutines; the merged order never depends on read order.
func NewAggregator(logger *utils.Logger, collector *metrics.Collector, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		reader:      NewSnapshotReader(logger),
		logger:      logger,
		metrics:     collector,
		concurrency: concurrency,
	}
}

// ListSnapshots returns the .csv files of dir, lexically sorted.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("aggregator: list %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// MergeDir merges every snapshot found in dir.
func (a *Aggregator) MergeDir(dir string) (*models.MergeResult, error) {
	paths, err := ListSnapshots(dir)
	if err != nil {
		return nil, err
	}
	return a.Merge(paths)
}

type readOutcome struct {
	snap *models.Snapshot
	err  error
}

// Merge reads the given snapshot paths and builds the normalized table.
// Paths are processed in lexical order, which breaks ties between files of the
// same collection date. Unreadable files, files without a date and empty files
// are reported in the diagnostics and skipped; only a batch in which no file
// could be read at all fails, with ErrNoValidInput.
func (a *Aggregator) Merge(paths []string) (*models.MergeResult, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	outcomes := utils.OrderedMap(sorted, a.concurrency, func(p string) readOutcome {
		snap, err := a.reader.Read(p)
		return readOutcome{snap: snap, err: err}
	})

	result := &models.MergeResult{
		RunID:       uuid.NewString(),
		Diagnostics: make([]models.FileDiagnostic, 0, len(sorted)),
	}
	stats := &result.Stats
	stats.FilesSeen = len(sorted)

	seen := utils.NewSet[string]()
	for i, out := range outcomes {
		name := filepath.Base(sorted[i])

		if out.err != nil {
			stats.FilesSkipped++
			reason := SkipReason(out.err)
			a.metrics.RecordFileSkipped(reason)
			a.logger.Warn("[aggregator] Skipping %s: %v", name, out.err)
			result.Diagnostics = append(result.Diagnostics, models.FileDiagnostic{
				File:   name,
				Status: models.FileSkipped,
				Reason: out.err.Error(),
			})
			continue
		}

		snap := out.snap
		stats.FilesRead++
		a.metrics.RecordSnapshotRead()

		if snap.Empty() {
			stats.FilesEmpty++
			a.logger.Debug("[aggregator] %s: %v", name, ErrEmptySnapshot)
			result.Diagnostics = append(result.Diagnostics, models.FileDiagnostic{
				File:           name,
				CollectionDate: snap.CollectionDate,
				Status:         models.FileEmpty,
			})
			continue
		}

		diag := models.FileDiagnostic{
			File:           name,
			CollectionDate: snap.CollectionDate,
			Status:         models.FileKept,
			RowsRead:       len(snap.Rows),
		}
		for _, row := range snap.Rows {
			if !row.Price.Valid {
				diag.InvalidPrices++
				continue
			}
			normalized := normalize(snap.CollectionDate, row)
			if !seen.Add(normalized.Key()) {
				diag.Duplicates++
				continue
			}
			result.Rows = append(result.Rows, normalized)
			diag.RowsKept++
		}

		stats.RowsRead += diag.RowsRead
		stats.RowsKept += diag.RowsKept
		stats.InvalidPrices += diag.InvalidPrices
		stats.Duplicates += diag.Duplicates
		a.metrics.RecordRowsDropped("invalid_price", diag.InvalidPrices)
		a.metrics.RecordRowsDropped("duplicate", diag.Duplicates)

		a.logger.Info("[aggregator] %s: kept %d/%d rows (invalid price %d, duplicates %d)",
			name, diag.RowsKept, diag.RowsRead, diag.InvalidPrices, diag.Duplicates)
		result.Diagnostics = append(result.Diagnostics, diag)
	}

	if stats.FilesRead == 0 {
		return result, fmt.Errorf("aggregator: %w (%d files seen, %d skipped)",
			ErrNoValidInput, stats.FilesSeen, stats.FilesSkipped)
	}

	// Stable sort keeps file order for rows of the same collection date.
	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].CollectionDate.Before(result.Rows[j].CollectionDate)
	})

	a.metrics.RecordRowsMerged(len(result.Rows))
	a.logger.Info("[aggregator] Merged %d files → %d rows (skipped %d files, %d empty, dropped %d invalid prices, %d duplicates)",
		stats.FilesRead, stats.RowsKept, stats.FilesSkipped, stats.FilesEmpty, stats.InvalidPrices, stats.Duplicates)

	return result, nil
}

// IsFatal reports whether a merge error must halt the pipeline.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoValidInput)
}

// FilterAirlines returns the rows whose airline is in airlines. An empty
// filter keeps every row. The input is not modified.
func FilterAirlines(rows []models.NormalizedFareRow, airlines []string) []models.NormalizedFareRow {
	if len(airlines) == 0 {
		return append([]models.NormalizedFareRow(nil), rows...)
	}
	want := make(map[string]struct{}, len(airlines))
	for _, a := range airlines {
		want[a] = struct{}{}
	}

	out := make([]models.NormalizedFareRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := want[r.Airline]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Airlines lists the distinct airlines of rows, sorted, with the unknown
// sentinel last.
func Airlines(rows []models.NormalizedFareRow) []string {
	set := make(map[string]struct{})
	for _, r := range rows {
		set[r.Airline] = struct{}{}
	}

	out := make([]string, 0, len(set))
	hasUnknown := false
	for a := range set {
		if a == models.UnknownAirline {
			hasUnknown = true
			continue
		}
		out = append(out, a)
	}
	sort.Strings(out)
	if hasUnknown {
		out = append(out, models.UnknownAirline)
	}
	return out
}
