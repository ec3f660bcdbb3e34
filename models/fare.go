package models

import (
	"strconv"
	"time"
)

// UnknownAirline replaces an absent or blank airline name.
const UnknownAirline = "unknown"

// RawFareRecord is one leg of one offer exactly as it was collected.
// Every field is kept as text; nothing is validated at this stage.
type RawFareRecord struct {
	Airline          string
	Price            string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
	Duration         string
	FlightNumber     string
}

// Price is a coerced fare amount. Valid is false when the raw value had no
// digits to parse; such a price never takes part in any statistic.
type Price struct {
	Amount float64
	Valid  bool
}

// Hours is an optional flight duration in hours.
type Hours struct {
	Value float64
	Valid bool
}

// SnapshotRow pairs a raw record with its coerced price.
type SnapshotRow struct {
	Raw   RawFareRecord
	Price Price
}

// Snapshot is the content of one dated collection file.
type Snapshot struct {
	Path           string
	Name           string
	CollectionDate time.Time
	Rows           []SnapshotRow
}

// Empty reports whether the snapshot carries no data rows.
func (s *Snapshot) Empty() bool {
	return len(s.Rows) == 0
}

// NormalizedFareRow is a fare with a resolved collection date and a numeric price.
type NormalizedFareRow struct {
	CollectionDate   time.Time
	Airline          string
	Price            float64
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
	Duration         string
	DurationHours    Hours
	FlightNumber     string
}

// Key identifies a row for exact-duplicate detection.
func (r *NormalizedFareRow) Key() string {
	return r.CollectionDate.Format(DateLayout) + "\x1f" +
		r.Airline + "\x1f" +
		formatFloat(r.Price) + "\x1f" +
		r.DepartureAirport + "\x1f" +
		r.ArrivalAirport + "\x1f" +
		r.DepartureTime + "\x1f" +
		r.ArrivalTime + "\x1f" +
		r.Duration + "\x1f" +
		r.FlightNumber
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DateLayout is the layout of collection dates in file names and exports.
const DateLayout = "2006-01-02"
