package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"flight-tracker/models"
)

// MergedColumns is the header of the merged output and of CSV exports.
var MergedColumns = []string{
	"collection_date", "airline", "price", "departure_airport", "arrival_airport",
	"departure_time", "arrival_time", "duration", "flight_number",
}

// CSVWriter writes fare records to a CSV file. The data lands in a temporary
// sibling file and is renamed into place on Close, so an interrupted run never
// leaves a partially written .csv behind.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	tmp    string
	file   *os.File
	writer *csv.Writer
	closed bool
}

// NewCSVWriter creates the CSV file at the given path and writes the header
// row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{path: path, tmp: tmp, file: f, writer: w}, nil
}

// NewSnapshotWriter creates a writer for a raw collection file.
func NewSnapshotWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, SnapshotColumns)
}

// NewMergedWriter creates a writer for the merged, normalized table.
func NewMergedWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, MergedColumns)
}

// Path returns the final location of the file.
func (c *CSVWriter) Path() string {
	return c.path
}

// WriteRaw appends raw fare records in snapshot column order.
func (c *CSVWriter) WriteRaw(records []models.RawFareRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if err := c.writer.Write(rawRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteRows appends normalized rows in merged column order.
func (c *CSVWriter) WriteRows(rows []models.NormalizedFareRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range rows {
		if err := c.writer.Write(normalizedRow(&rows[i])); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes the data and moves the file into place.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		_ = os.Remove(c.tmp)
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := c.file.Close(); err != nil {
		_ = os.Remove(c.tmp)
		return fmt.Errorf("csv: close: %w", err)
	}
	if err := os.Rename(c.tmp, c.path); err != nil {
		return fmt.Errorf("csv: rename into place: %w", err)
	}
	return nil
}

// Abort discards everything written so far.
func (c *CSVWriter) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	_ = c.file.Close()
	_ = os.Remove(c.tmp)
}

// WriteRowsCSV streams normalized rows, header included, to w.
func WriteRowsCSV(w io.Writer, rows []models.NormalizedFareRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MergedColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(normalizedRow(&rows[i])); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func rawRow(r models.RawFareRecord) []string {
	return []string{
		r.Airline,
		r.Price,
		r.DepartureAirport,
		r.ArrivalAirport,
		r.DepartureTime,
		r.ArrivalTime,
		r.Duration,
		r.FlightNumber,
	}
}

func normalizedRow(r *models.NormalizedFareRow) []string {
	return []string{
		r.CollectionDate.Format(models.DateLayout),
		r.Airline,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		r.DepartureAirport,
		r.ArrivalAirport,
		r.DepartureTime,
		r.ArrivalTime,
		r.Duration,
		r.FlightNumber,
	}
}
