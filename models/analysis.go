package models

import "time"

// DatePoint is one value on a collection-date axis.
type DatePoint struct {
	Date  time.Time
	Value float64
}

// AirlineSeries is the mean price of one airline per collection date.
// Dates are strictly increasing.
type AirlineSeries struct {
	Airline string
	Points  []DatePoint
}

// PriceStats summarises a set of prices.
type PriceStats struct {
	Count int
	Min   float64
	Mean  float64
	Max   float64
}

// TrendSummary is the per-airline price summary. TrendPct compares the
// chronologically first and last daily means and is 0 with fewer than two dates.
type TrendSummary struct {
	Airline       string
	Min           float64
	Max           float64
	Mean          float64
	TrendPct      float64
	Observations  int
	DistinctDates int
}

// Distribution holds box-plot statistics for one airline.
type Distribution struct {
	Airline string
	Count   int
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
}

// Analysis is everything the statistics engine derives from a normalized table.
type Analysis struct {
	Global        PriceStats
	DailyMinimum  []DatePoint
	DailyMean     []DatePoint
	Airlines      []AirlineSeries
	Trends        []TrendSummary
	Distributions []Distribution
	CheapestFare  *NormalizedFareRow
	CheapestDay   *DatePoint
}

// HasData reports whether any priced row contributed to the analysis.
func (a *Analysis) HasData() bool {
	return a != nil && a.Global.Count > 0
}
