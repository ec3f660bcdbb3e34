package services

import (
	"bytes"
	"strings"
	"testing"
)

func TestReportPrint(t *testing.T) {
	dir := twoDayDir(t)
	writeSnapshot(t, dir, "flights_latest.csv", "AirlineA,50€")

	merge, err := newTestAggregator().MergeDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	a := NewStatisticsService(newTestLogger(), nil).Analyze(merge.Rows)

	var buf bytes.Buffer
	NewReportPrinter(NewPresenter("EUR", "CDG → ABJ")).Print(&buf, merge, a)
	out := buf.String()

	for _, want := range []string{
		"CDG → ABJ",
		"Skipped files",
		"flights_latest.csv",
		"Minimum price : \033[1;32m100 €",
		"+20.00%",
		"[100.00, 120.00]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestReportPrintNoData(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "flights_2025-01-01.csv", snapshotHeader)

	merge, err := newTestAggregator().MergeDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	a := NewStatisticsService(newTestLogger(), nil).Analyze(merge.Rows)

	var buf bytes.Buffer
	NewReportPrinter(NewPresenter("EUR", "")).Print(&buf, merge, a)
	if !strings.Contains(buf.String(), "No price data available") {
		t.Errorf("expected empty-state line, got:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Air France", 24); got != "Air France" {
		t.Errorf("short: %q", got)
	}
	if got := truncate("Ethiopian Airlines Group", 10); got != "Ethiopi..." {
		t.Errorf("long: %q", got)
	}
}
