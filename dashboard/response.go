package dashboard

import (
	"flight-tracker/models"
	"flight-tracker/services"
)

type statsJSON struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
}

type trendJSON struct {
	Airline       string  `json:"airline"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	TrendPct      float64 `json:"trend_pct"`
	Observations  int     `json:"observations"`
	DistinctDates int     `json:"distinct_dates"`
}

type fareJSON struct {
	CollectionDate   string   `json:"collection_date"`
	Airline          string   `json:"airline"`
	Price            float64  `json:"price"`
	DepartureAirport string   `json:"departure_airport"`
	ArrivalAirport   string   `json:"arrival_airport"`
	DepartureTime    string   `json:"departure_time"`
	ArrivalTime      string   `json:"arrival_time"`
	Duration         string   `json:"duration"`
	DurationHours    *float64 `json:"duration_hours"`
	FlightNumber     string   `json:"flight_number"`
}

type dayJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type summaryResponse struct {
	Airlines     []string    `json:"airlines"`
	Stats        statsJSON   `json:"stats"`
	Headlines    []string    `json:"headlines"`
	Trends       []trendJSON `json:"trends"`
	CheapestFare *fareJSON   `json:"cheapest_fare"`
	CheapestDay  *dayJSON    `json:"cheapest_day"`
}

func newSummaryResponse(v *filteredView, p *services.Presenter) summaryResponse {
	a := v.analysis
	resp := summaryResponse{
		Airlines:  v.selected,
		Stats:     statsJSON(a.Global),
		Headlines: p.Summary(a),
		Trends:    make([]trendJSON, 0, len(a.Trends)),
	}
	if resp.Airlines == nil {
		resp.Airlines = v.dataset.Airlines
	}
	for _, t := range a.Trends {
		resp.Trends = append(resp.Trends, trendJSON(t))
	}
	if f := a.CheapestFare; f != nil {
		resp.CheapestFare = newFareJSON(f)
	}
	if d := a.CheapestDay; d != nil {
		resp.CheapestDay = &dayJSON{Date: d.Date.Format(models.DateLayout), Value: d.Value}
	}
	return resp
}

func newFareJSON(r *models.NormalizedFareRow) *fareJSON {
	f := &fareJSON{
		CollectionDate:   r.CollectionDate.Format(models.DateLayout),
		Airline:          r.Airline,
		Price:            r.Price,
		DepartureAirport: r.DepartureAirport,
		ArrivalAirport:   r.ArrivalAirport,
		DepartureTime:    r.DepartureTime,
		ArrivalTime:      r.ArrivalTime,
		Duration:         r.Duration,
		FlightNumber:     r.FlightNumber,
	}
	if r.DurationHours.Valid {
		h := r.DurationHours.Value
		f.DurationHours = &h
	}
	return f
}

type pointJSON struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type lineJSON struct {
	Name     string      `json:"name"`
	Emphasis bool        `json:"emphasis"`
	Points   []pointJSON `json:"points"`
}

type boxJSON struct {
	Airline string  `json:"airline"`
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

type scatterJSON struct {
	Airline string  `json:"airline"`
	Hours   float64 `json:"hours"`
	Price   float64 `json:"price"`
}

type seriesResponse struct {
	Trend   []lineJSON    `json:"trend"`
	Boxes   []boxJSON     `json:"boxes"`
	Scatter []scatterJSON `json:"scatter"`
}

func newSeriesResponse(view *models.DashboardView) seriesResponse {
	resp := seriesResponse{
		Trend:   make([]lineJSON, 0, len(view.Trend)),
		Boxes:   make([]boxJSON, 0, len(view.Boxes)),
		Scatter: make([]scatterJSON, 0, len(view.Scatter)),
	}
	for _, s := range view.Trend {
		line := lineJSON{Name: s.Name, Emphasis: s.Emphasis, Points: make([]pointJSON, 0, len(s.Points))}
		for _, p := range s.Points {
			line.Points = append(line.Points, pointJSON(p))
		}
		resp.Trend = append(resp.Trend, line)
	}
	for _, b := range view.Boxes {
		resp.Boxes = append(resp.Boxes, boxJSON(b))
	}
	for _, s := range view.Scatter {
		resp.Scatter = append(resp.Scatter, scatterJSON(s))
	}
	return resp
}
