package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flight-tracker/models"
	"flight-tracker/scraper/serpapi"
	"flight-tracker/storage"
	"flight-tracker/utils"
)

// ErrNoFlights is returned when a search produced no flight legs.
var ErrNoFlights = errors.New("no flights found")

// FlightSearcher runs one upstream search.
type FlightSearcher interface {
	Search(ctx context.Context, p serpapi.SearchParams) (*serpapi.SearchResult, error)
}

// Collector turns one upstream search into one dated snapshot file.
type Collector struct {
	searcher FlightSearcher
	params   serpapi.SearchParams
	dir      string
	prefix   string
	logger   *utils.Logger
	now      func() time.Time
}

// NewCollector creates a Collector writing <dir>/<prefix>_<YYYY-MM-DD>.csv files.
func NewCollector(searcher FlightSearcher, params serpapi.SearchParams, dir, prefix string, logger *utils.Logger) *Collector {
	return &Collector{
		searcher: searcher,
		params:   params,
		dir:      dir,
		prefix:   prefix,
		logger:   logger,
		now:      time.Now,
	}
}

// CollectOnce searches, flattens the offers and writes today's snapshot.
// Existing snapshots are never overwritten: a second run on the same day gets
// a numbered file, which sorts after the first one.
func (c *Collector) CollectOnce(ctx context.Context) (string, int, error) {
	today := c.now()
	c.logger.Info("[collector] Searching %s → %s | outbound %s | return %s | run %s",
		c.params.DepartureID, c.params.ArrivalID, c.params.OutboundDate, c.params.ReturnDate,
		today.Format(models.DateLayout))

	result, err := c.searcher.Search(ctx, c.params)
	if err != nil {
		return "", 0, fmt.Errorf("collector: search: %w", err)
	}

	records := serpapi.Flatten(result)
	if len(records) == 0 {
		if result.Error != "" {
			c.logger.Warn("[collector] Upstream reported: %s", result.Error)
		}
		return "", 0, ErrNoFlights
	}
	c.logger.Info("[collector] %d flight legs found", len(records))
	c.preview(records)

	path, err := c.nextPath(today)
	if err != nil {
		return "", 0, err
	}

	w, err := storage.NewSnapshotWriter(path)
	if err != nil {
		return "", 0, fmt.Errorf("collector: %w", err)
	}
	if err := w.WriteRaw(records); err != nil {
		w.Abort()
		return "", 0, fmt.Errorf("collector: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("collector: %w", err)
	}

	c.logger.Info("[collector] Snapshot saved to %s", w.Path())
	return path, len(records), nil
}

func (c *Collector) nextPath(day time.Time) (string, error) {
	base := fmt.Sprintf("%s_%s", c.prefix, day.Format(models.DateLayout))
	path := filepath.Join(c.dir, base+".csv")
	for n := 2; ; n++ {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("collector: stat %q: %w", path, err)
		}
		if n > 99 {
			return "", fmt.Errorf("collector: too many snapshots for %s", day.Format(models.DateLayout))
		}
		path = filepath.Join(c.dir, fmt.Sprintf("%s_%02d.csv", base, n))
	}
}

func (c *Collector) preview(records []models.RawFareRecord) {
	n := len(records)
	if n > 5 {
		n = 5
	}
	for _, r := range records[:n] {
		c.logger.Info("[collector] ✈ %s | %s → %s (%s → %s) | duration %s min | price %s %s",
			orDash(r.Airline), orDash(r.DepartureAirport), orDash(r.ArrivalAirport),
			orDash(r.DepartureTime), orDash(r.ArrivalTime), orDash(r.Duration),
			orDash(r.Price), c.params.Currency)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
