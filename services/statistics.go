package services

import (
	"math"
	"sort"
	"time"

	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/utils"
)

// StatisticsService derives price statistics from a normalized fare table.
type StatisticsService struct {
	logger  *utils.Logger
	metrics *metrics.Collector
}

// NewStatisticsService creates a StatisticsService.
func NewStatisticsService(logger *utils.Logger, collector *metrics.Collector) *StatisticsService {
	return &StatisticsService{logger: logger, metrics: collector}
}

// Analyze computes every statistic of the table. The input is not modified and
// may be in any order; all series are built in chronological order.
func (s *StatisticsService) Analyze(rows []models.NormalizedFareRow) *models.Analysis {
	timer := s.metrics.StageTimer("statistics")
	defer timer.ObserveDuration()

	analysis := &models.Analysis{}
	if len(rows) == 0 {
		s.logger.Warn("[stats] No priced rows to analyse")
		return analysis
	}

	analysis.Global = PriceSummary(rows)
	analysis.DailyMinimum = DailyMinimum(rows)
	analysis.DailyMean = DailyMean(rows)
	analysis.Airlines = AirlineMeanSeries(rows)
	analysis.Trends = Trends(rows)
	analysis.Distributions = Distributions(rows)
	analysis.CheapestFare = CheapestFare(rows)
	analysis.CheapestDay = CheapestDay(analysis.DailyMean)

	s.logger.Info("[stats] Analysed %d rows over %d collection dates and %d airlines",
		analysis.Global.Count, len(analysis.DailyMinimum), len(analysis.Trends))
	return analysis
}

// PriceSummary returns count, min, mean and max over rows.
func PriceSummary(rows []models.NormalizedFareRow) models.PriceStats {
	if len(rows) == 0 {
		return models.PriceStats{}
	}
	st := models.PriceStats{Count: len(rows), Min: rows[0].Price, Max: rows[0].Price}
	var total float64
	for _, r := range rows {
		total += r.Price
		if r.Price < st.Min {
			st.Min = r.Price
		}
		if r.Price > st.Max {
			st.Max = r.Price
		}
	}
	st.Mean = total / float64(len(rows))
	return st
}

type dateAccumulator struct {
	min   float64
	sum   float64
	count int
}

func byDate(rows []models.NormalizedFareRow) ([]time.Time, map[time.Time]*dateAccumulator) {
	acc := make(map[time.Time]*dateAccumulator)
	var dates []time.Time
	for _, r := range rows {
		a, ok := acc[r.CollectionDate]
		if !ok {
			a = &dateAccumulator{min: r.Price}
			acc[r.CollectionDate] = a
			dates = append(dates, r.CollectionDate)
		}
		if r.Price < a.min {
			a.min = r.Price
		}
		a.sum += r.Price
		a.count++
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, acc
}

// DailyMinimum returns the cheapest price per collection date, ascending by date.
func DailyMinimum(rows []models.NormalizedFareRow) []models.DatePoint {
	dates, acc := byDate(rows)
	out := make([]models.DatePoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DatePoint{Date: d, Value: acc[d].min})
	}
	return out
}

// DailyMean returns the mean price per collection date, ascending by date.
func DailyMean(rows []models.NormalizedFareRow) []models.DatePoint {
	dates, acc := byDate(rows)
	out := make([]models.DatePoint, 0, len(dates))
	for _, d := range dates {
		a := acc[d]
		out = append(out, models.DatePoint{Date: d, Value: a.sum / float64(a.count)})
	}
	return out
}

func groupByAirline(rows []models.NormalizedFareRow) ([]string, map[string][]models.NormalizedFareRow) {
	groups := make(map[string][]models.NormalizedFareRow)
	for _, r := range rows {
		groups[r.Airline] = append(groups[r.Airline], r)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, groups
}

// AirlineMeanSeries returns, per airline, one mean price per distinct
// collection date. Airlines are sorted by name.
func AirlineMeanSeries(rows []models.NormalizedFareRow) []models.AirlineSeries {
	names, groups := groupByAirline(rows)
	out := make([]models.AirlineSeries, 0, len(names))
	for _, name := range names {
		out = append(out, models.AirlineSeries{Airline: name, Points: DailyMean(groups[name])})
	}
	return out
}

// TrendPercent is the relative change between the first and last points of a
// chronological series. It is 0 for fewer than two points and when the first
// value is 0.
func TrendPercent(points []models.DatePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	first := points[0].Value
	last := points[len(points)-1].Value
	if first == 0 {
		return 0
	}
	trend := (last - first) / first * 100
	if math.IsNaN(trend) || math.IsInf(trend, 0) {
		return 0
	}
	return trend
}

// Trends returns the TrendSummary of every airline, sorted by airline name.
func Trends(rows []models.NormalizedFareRow) []models.TrendSummary {
	names, groups := groupByAirline(rows)
	out := make([]models.TrendSummary, 0, len(names))
	for _, name := range names {
		group := groups[name]
		summary := PriceSummary(group)
		series := DailyMean(group)
		out = append(out, models.TrendSummary{
			Airline:       name,
			Min:           summary.Min,
			Max:           summary.Max,
			Mean:          summary.Mean,
			TrendPct:      TrendPercent(series),
			Observations:  summary.Count,
			DistinctDates: len(series),
		})
	}
	return out
}

// Distributions returns box-plot statistics per airline, sorted by airline name.
func Distributions(rows []models.NormalizedFareRow) []models.Distribution {
	names, groups := groupByAirline(rows)
	out := make([]models.Distribution, 0, len(names))
	for _, name := range names {
		group := groups[name]
		prices := make([]float64, len(group))
		for i, r := range group {
			prices[i] = r.Price
		}
		sort.Float64s(prices)
		out = append(out, models.Distribution{
			Airline: name,
			Count:   len(prices),
			Min:     prices[0],
			Q1:      quantile(prices, 0.25),
			Median:  quantile(prices, 0.5),
			Q3:      quantile(prices, 0.75),
			Max:     prices[len(prices)-1],
		})
	}
	return out
}

// quantile interpolates linearly between the closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// CheapestFare returns the single cheapest row. Ties go to the earliest
// collection date, then to table order.
func CheapestFare(rows []models.NormalizedFareRow) *models.NormalizedFareRow {
	if len(rows) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(rows); i++ {
		r, b := rows[i], rows[best]
		if r.Price < b.Price || (r.Price == b.Price && r.CollectionDate.Before(b.CollectionDate)) {
			best = i
		}
	}
	row := rows[best]
	return &row
}

// CheapestDay returns the collection date with the lowest mean price from a
// chronological daily-mean series. Ties go to the earliest date.
func CheapestDay(dailyMean []models.DatePoint) *models.DatePoint {
	if len(dailyMean) == 0 {
		return nil
	}
	best := dailyMean[0]
	for _, p := range dailyMean[1:] {
		if p.Value < best.Value {
			best = p
		}
	}
	return &best
}
