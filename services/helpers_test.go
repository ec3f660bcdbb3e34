package services

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flight-tracker/models"
	"flight-tracker/utils"
)

func newTestLogger() *utils.Logger {
	l := utils.NewLogger()
	l.SetOutput(io.Discard)
	return l
}

const snapshotHeader = "airline,price,departure_airport,arrival_airport,departure_time,arrival_time,duration,flight_number\n"

// writeSnapshot writes a snapshot CSV; each line is "airline,price".
func writeSnapshot(t *testing.T, dir, name string, fares ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(snapshotHeader)
	for _, f := range fares {
		parts := strings.SplitN(f, ",", 2)
		b.WriteString(parts[0] + `,"` + parts[1] + `",CDG,ABJ,2025-12-22 10:35,2025-12-22 16:50,390,AF 702` + "\n")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func fare(date, airline string, price float64) models.NormalizedFareRow {
	return models.NormalizedFareRow{CollectionDate: day(date), Airline: airline, Price: price}
}

// twoDayDir builds the two-day batch used across the tests.
func twoDayDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSnapshot(t, dir, "flights_2025-01-01.csv", "AirlineA,100€", "AirlineB,150€")
	writeSnapshot(t, dir, "flights_2025-01-02.csv", "AirlineA,120€", "AirlineB,140€")
	return dir
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
