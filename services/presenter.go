package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"flight-tracker/models"
)

// Presenter turns a normalized table and its analysis into renderable series
// and display strings. It formats values; it never derives statistics.
type Presenter struct {
	symbol string
	route  string
}

// NewPresenter creates a Presenter for an ISO currency code and a route label.
func NewPresenter(currency, route string) *Presenter {
	return &Presenter{symbol: currencySymbol(currency), route: route}
}

// Build assembles the dashboard view. airlines lists every airline available
// for filtering; selected is the active filter (empty means all).
func (p *Presenter) Build(rows []models.NormalizedFareRow, a *models.Analysis, airlines, selected []string) *models.DashboardView {
	view := &models.DashboardView{
		Title:    "Flight price tracker",
		Route:    p.route,
		Airlines: airlines,
		Selected: selected,
	}
	if !a.HasData() {
		view.EmptyMessage = "No priced fares match the current selection."
		return view
	}

	view.KPIs = []models.KPI{
		{Label: "Mean price", Value: p.FormatPrice(a.Global.Mean)},
		{Label: "Best price observed", Value: p.FormatPrice(a.Global.Min)},
		{Label: "Highest price observed", Value: p.FormatPrice(a.Global.Max)},
		{Label: "Fares", Value: strconv.Itoa(a.Global.Count)},
	}

	view.Trend = append(view.Trend, models.ChartSeries{
		Name:     "Best price (all airlines)",
		Points:   chartPoints(a.DailyMinimum),
		Emphasis: true,
	})
	for _, s := range a.Airlines {
		view.Trend = append(view.Trend, models.ChartSeries{Name: s.Airline, Points: chartPoints(s.Points)})
	}

	view.Boxes = a.Distributions

	for _, r := range rows {
		if r.DurationHours.Valid {
			view.Scatter = append(view.Scatter, models.ScatterPoint{
				Airline: r.Airline,
				Hours:   r.DurationHours.Value,
				Price:   r.Price,
			})
		}
	}

	for _, t := range a.Trends {
		view.Trends = append(view.Trends, models.TrendRow{
			Airline: t.Airline,
			Min:     p.FormatPrice(t.Min),
			Mean:    p.FormatPrice(t.Mean),
			Max:     p.FormatPrice(t.Max),
			Trend:   FormatTrend(t.TrendPct),
			Dates:   t.DistinctDates,
		})
	}

	view.Summary = p.Summary(a)
	view.Rows = p.TableRows(rows)
	return view
}

// Summary returns the headline sentences of an analysis.
func (p *Presenter) Summary(a *models.Analysis) []string {
	if !a.HasData() {
		return nil
	}
	var lines []string
	if a.CheapestDay != nil {
		lines = append(lines, fmt.Sprintf("Cheapest collection day: %s (mean %s)",
			a.CheapestDay.Date.Format(models.DateLayout), p.FormatPrice(a.CheapestDay.Value)))
	}
	if f := a.CheapestFare; f != nil {
		lines = append(lines, fmt.Sprintf("Cheapest fare: %s on %s, collected %s",
			p.FormatPrice(f.Price), f.Airline, f.CollectionDate.Format(models.DateLayout)))
	}
	for _, t := range a.Trends {
		lines = append(lines, fmt.Sprintf("%s: mean %s, trend %s over %d day(s)",
			t.Airline, p.FormatPrice(t.Mean), FormatTrend(t.TrendPct), t.DistinctDates))
	}
	return lines
}

// TableRows returns display rows, newest collection date first.
func (p *Presenter) TableRows(rows []models.NormalizedFareRow) []models.TableRow {
	ordered := append([]models.NormalizedFareRow(nil), rows...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CollectionDate.After(ordered[j].CollectionDate)
	})

	out := make([]models.TableRow, 0, len(ordered))
	for _, r := range ordered {
		out = append(out, models.TableRow{
			CollectionDate: r.CollectionDate.Format(models.DateLayout),
			Airline:        r.Airline,
			Price:          p.FormatPrice(r.Price),
			Route:          strings.TrimSpace(r.DepartureAirport + " → " + r.ArrivalAirport),
			DepartureTime:  r.DepartureTime,
			ArrivalTime:    r.ArrivalTime,
			Duration:       r.Duration,
			FlightNumber:   r.FlightNumber,
		})
	}
	return out
}

// FormatPrice renders a price rounded to the unit with space-grouped
// thousands, e.g. "1 234 €".
func (p *Presenter) FormatPrice(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + " " + p.symbol
}

// FormatTrend renders a trend percentage with an explicit sign.
func FormatTrend(pct float64) string {
	if pct == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

func chartPoints(points []models.DatePoint) []models.ChartPoint {
	out := make([]models.ChartPoint, 0, len(points))
	for _, pt := range points {
		out = append(out, models.ChartPoint{X: pt.Date.Format(models.DateLayout), Y: pt.Value})
	}
	return out
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "EUR", "":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	case "XOF":
		return "FCFA"
	default:
		return strings.ToUpper(code)
	}
}
