package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"flight-tracker/models"
)

// SnapshotColumns is the fixed column set of a collection file.
var SnapshotColumns = []string{
	"airline", "price", "departure_airport", "arrival_airport",
	"departure_time", "arrival_time", "duration", "flight_number",
}

// ErrMissingColumns is returned when a snapshot header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// ReadFareCSV decodes a snapshot CSV into raw records. Columns are matched by
// header name so their order does not matter; extra columns are ignored.
// Cell text is returned as written, surrounding spaces included. An
// input with no header at all yields no records and no error. Rows whose field
// count differs from the header (a truncated write, for instance) fail the
// whole read.
func ReadFareCSV(r io.Reader) ([]models.RawFareRecord, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	var missing []string
	for _, col := range SnapshotColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: %w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	field := func(row []string, col string) string {
		return row[index[col]]
	}

	var records []models.RawFareRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", len(records)+2, err)
		}
		records = append(records, models.RawFareRecord{
			Airline:          field(row, "airline"),
			Price:            field(row, "price"),
			DepartureAirport: field(row, "departure_airport"),
			ArrivalAirport:   field(row, "arrival_airport"),
			DepartureTime:    field(row, "departure_time"),
			ArrivalTime:      field(row, "arrival_time"),
			Duration:         field(row, "duration"),
			FlightNumber:     field(row, "flight_number"),
		})
	}
	return records, nil
}
