package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/utils"
)

// Dataset is one aggregation of the snapshot directory.
type Dataset struct {
	Merge       *models.MergeResult
	Analysis    *models.Analysis
	Airlines    []string
	Fingerprint string
	LoadedAt    time.Time
}

// CachedLoader keeps the latest Dataset and rebuilds it only when the
// snapshot directory changes (file added, removed, resized or touched).
type CachedLoader struct {
	dir        string
	aggregator *Aggregator
	stats      *StatisticsService
	logger     *utils.Logger
	metrics    *metrics.Collector

	mu      sync.Mutex
	current *Dataset
}

// NewCachedLoader creates a loader over dir.
func NewCachedLoader(dir string, aggregator *Aggregator, stats *StatisticsService, logger *utils.Logger, collector *metrics.Collector) *CachedLoader {
	return &CachedLoader{
		dir:        dir,
		aggregator: aggregator,
		stats:      stats,
		logger:     logger,
		metrics:    collector,
	}
}

// Load returns the cached Dataset, rebuilding it first if the directory
// fingerprint changed. Concurrent callers share one rebuild.
func (c *CachedLoader) Load() (*Dataset, error) {
	fp, paths, err := Fingerprint(c.dir)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.Fingerprint == fp {
		c.metrics.RecordCache(true)
		return c.current, nil
	}
	c.metrics.RecordCache(false)

	c.logger.Info("[cache] Snapshot directory changed, rebuilding dataset from %d files", len(paths))
	merge, err := c.aggregator.Merge(paths)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Merge:       merge,
		Analysis:    c.stats.Analyze(merge.Rows),
		Airlines:    Airlines(merge.Rows),
		Fingerprint: fp,
		LoadedAt:    time.Now(),
	}
	c.current = ds
	return ds, nil
}

// Fingerprint hashes the names, sizes and modification times of the snapshot
// files in dir and returns the hash with the sorted snapshot paths.
func Fingerprint(dir string) (string, []string, error) {
	paths, err := ListSnapshots(dir)
	if err != nil {
		return "", nil, err
	}

	h := sha256.New()
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", nil, fmt.Errorf("cache: stat %q: %w", p, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", filepath.Base(p), info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), paths, nil
}
