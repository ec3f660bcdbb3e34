package services

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flight-tracker/models"
	"flight-tracker/storage"
	"flight-tracker/utils"
)

var (
	// dateTokenRegexp matches a date-shaped token anywhere in a file name.
	dateTokenRegexp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	// hoursRegexp captures "12h" or "12 h" style hour counts.
	hoursRegexp = regexp.MustCompile(`(\d+)\s*h`)
	// minutesRegexp captures a trailing "30min", "30mn" or "30 m" component.
	minutesRegexp = regexp.MustCompile(`(\d+)\s*m(?:in|n)?`)
	// bareMinutesRegexp matches a plain minute count such as "545".
	bareMinutesRegexp = regexp.MustCompile(`^\d+$`)
)

// SnapshotReader loads single collection files.
type SnapshotReader struct {
	logger *utils.Logger
}

// NewSnapshotReader creates a SnapshotReader with the given logger.
func NewSnapshotReader(logger *utils.Logger) *SnapshotReader {
	return &SnapshotReader{logger: logger}
}

// Read parses one snapshot file. The collection date comes from the file name
// and is checked before the file is opened. A file with zero data rows yields
// an empty Snapshot and no error.
func (sr *SnapshotReader) Read(path string) (*models.Snapshot, error) {
	name := filepath.Base(path)
	date, err := ParseCollectionDate(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{File: name, Err: err}
	}
	defer f.Close()

	records, err := storage.ReadFareCSV(f)
	if err != nil {
		return nil, &ReadError{File: name, Err: err}
	}

	snap := &models.Snapshot{
		Path:           path,
		Name:           name,
		CollectionDate: date,
		Rows:           make([]models.SnapshotRow, 0, len(records)),
	}
	for _, r := range records {
		price, err := CoercePrice(r.Price)
		if err != nil {
			sr.logger.Debug("[reader] %s: %v", name, err)
		}
		snap.Rows = append(snap.Rows, models.SnapshotRow{Raw: r, Price: price})
	}

	return snap, nil
}

// ParseCollectionDate extracts the collection date from a snapshot file name.
// The date must be the last YYYY-MM-DD token of the name, not glued to other
// digits, and must be a real calendar date.
func ParseCollectionDate(name string) (time.Time, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	locs := dateTokenRegexp.FindAllStringIndex(stem, -1)
	if len(locs) == 0 {
		return time.Time{}, &DateParseError{File: name}
	}

	last := locs[len(locs)-1]
	token := stem[last[0]:last[1]]
	if (last[0] > 0 && isDigit(stem[last[0]-1])) || (last[1] < len(stem) && isDigit(stem[last[1]])) {
		return time.Time{}, &DateParseError{File: name, Token: token}
	}

	date, err := time.Parse(models.DateLayout, token)
	if err != nil {
		return time.Time{}, &DateParseError{File: name, Token: token}
	}
	return date, nil
}

// CoercePrice strips every character that is not a decimal digit and parses
// what remains. "1 234 €" becomes 1234. When nothing is left the price is
// invalid and a *PriceParseError is returned alongside it.
func CoercePrice(raw string) (models.Price, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return models.Price{}, &PriceParseError{Raw: raw}
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return models.Price{}, &PriceParseError{Raw: raw}
	}
	amount := d.InexactFloat64()
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return models.Price{}, &PriceParseError{Raw: raw}
	}
	return models.Price{Amount: amount, Valid: true}, nil
}

// ParseDurationHours reads a flight duration in hours from free-form text.
// "12h 30min" and "12 h" use the embedded hour count; a bare number is taken
// as minutes, which is how the upstream search reports total durations.
func ParseDurationHours(raw string) models.Hours {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return models.Hours{}
	}

	if m := hoursRegexp.FindStringSubmatch(s); len(m) == 2 {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return models.Hours{}
		}
		hours := float64(h)
		rest := s[strings.Index(s, m[0])+len(m[0]):]
		if mm := minutesRegexp.FindStringSubmatch(rest); len(mm) == 2 {
			if mins, err := strconv.Atoi(mm[1]); err == nil {
				hours += float64(mins) / 60
			}
		}
		return models.Hours{Value: hours, Valid: true}
	}

	if bareMinutesRegexp.MatchString(s) {
		mins, err := strconv.Atoi(s)
		if err != nil {
			return models.Hours{}
		}
		return models.Hours{Value: float64(mins) / 60, Valid: true}
	}

	return models.Hours{}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// airlineName resolves blank airline names to the unknown sentinel. Any other
// value is kept exactly as collected.
func airlineName(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.UnknownAirline
	}
	return s
}

// normalize joins a snapshot row with its collection date. Text fields keep
// their collected form so that only rows equal in every field deduplicate.
// Callers drop rows without a valid price first.
func normalize(date time.Time, row models.SnapshotRow) models.NormalizedFareRow {
	return models.NormalizedFareRow{
		CollectionDate:   date,
		Airline:          airlineName(row.Raw.Airline),
		Price:            row.Price.Amount,
		DepartureAirport: row.Raw.DepartureAirport,
		ArrivalAirport:   row.Raw.ArrivalAirport,
		DepartureTime:    row.Raw.DepartureTime,
		ArrivalTime:      row.Raw.ArrivalTime,
		Duration:         row.Raw.Duration,
		DurationHours:    ParseDurationHours(row.Raw.Duration),
		FlightNumber:     row.Raw.FlightNumber,
	}
}
