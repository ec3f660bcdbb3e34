package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySnapshot classifies a snapshot with zero data rows. It is a
	// warning: such files are skipped silently.
	ErrEmptySnapshot = errors.New("snapshot has no data rows")

	// ErrNoValidInput is fatal: no snapshot could be read in the whole batch.
	ErrNoValidInput = errors.New("no snapshot could be read")
)

// DateParseError reports a snapshot whose file name carries no valid
// YYYY-MM-DD collection date.
type DateParseError struct {
	File  string
	Token string
}

func (e *DateParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("no YYYY-MM-DD date token in file name %q", e.File)
	}
	return fmt.Sprintf("invalid collection date %q in file name %q", e.Token, e.File)
}

// PriceParseError reports a price with no digits left after stripping.
type PriceParseError struct {
	Raw string
}

func (e *PriceParseError) Error() string {
	return fmt.Sprintf("price %q is not numeric", e.Raw)
}

// ReadError reports a snapshot file that exists but could not be decoded.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read snapshot %q: %v", e.File, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SkipReason classifies a per-file failure for diagnostics and metrics.
func SkipReason(err error) string {
	var dateErr *DateParseError
	var readErr *ReadError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySnapshot):
		return "empty"
	case errors.As(err, &dateErr):
		return "date_parse"
	case errors.As(err, &readErr):
		return "unreadable"
	default:
		return "other"
	}
}
