package services

import (
	"testing"

	"flight-tracker/metrics"
)

func newTestLoader(dir string) *CachedLoader {
	logger := newTestLogger()
	collector := metrics.NewCollector("flights_test")
	return NewCachedLoader(dir, NewAggregator(logger, collector, 2), NewStatisticsService(logger, collector), logger, collector)
}

func TestCachedLoaderReusesDataset(t *testing.T) {
	loader := newTestLoader(twoDayDir(t))

	first, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("unchanged directory should return the cached dataset")
	}
	if len(first.Merge.Rows) != 4 || len(first.Airlines) != 2 || !first.Analysis.HasData() {
		t.Errorf("dataset: %+v", first)
	}
}

func TestCachedLoaderRebuildsOnChange(t *testing.T) {
	dir := twoDayDir(t)
	loader := newTestLoader(dir)

	first, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	writeSnapshot(t, dir, "flights_2025-01-03.csv", "AirlineC,90€")
	second, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if second == first || len(second.Merge.Rows) != 5 {
		t.Errorf("expected a rebuilt dataset with 5 rows, got %d", len(second.Merge.Rows))
	}
	if second.Analysis.CheapestFare.Airline != "AirlineC" {
		t.Errorf("cheapest fare: %+v", second.Analysis.CheapestFare)
	}

	third, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if third != second {
		t.Error("unchanged directory should reuse the cached dataset")
	}
}

func TestCachedLoaderNoInput(t *testing.T) {
	if _, err := newTestLoader(t.TempDir()).Load(); !IsFatal(err) {
		t.Errorf("empty directory: expected ErrNoValidInput, got %v", err)
	}
}

func TestFingerprintIgnoresOtherFiles(t *testing.T) {
	dir := twoDayDir(t)
	before, _, err := Fingerprint(dir)
	if err != nil {
		t.Fatal(err)
	}
	writeRaw(t, dir, "README.txt", "notes")
	after, paths, err := Fingerprint(dir)
	if err != nil {
		t.Fatal(err)
	}
	if before != after || len(paths) != 2 {
		t.Errorf("non-snapshot files changed the fingerprint")
	}
}
