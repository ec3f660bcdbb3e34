package serpapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SearchParams describes one round-trip search.
type SearchParams struct {
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   string
	Currency     string
	Lang         string
}

// SearchResult is the subset of the google_flights response the collector uses.
type SearchResult struct {
	BestFlights  []FlightGroup `json:"best_flights"`
	OtherFlights []FlightGroup `json:"other_flights"`
	Error        string        `json:"error"`
}

// FlightGroup is one priced offer made of one or more legs.
type FlightGroup struct {
	Price         Text  `json:"price"`
	TotalDuration Text  `json:"total_duration"`
	Flights       []Leg `json:"flights"`
}

// Leg is a single flight of an offer.
type Leg struct {
	Airline          Text     `json:"airline"`
	FlightNumber     Text     `json:"flight_number"`
	DepartureAirport *Airport `json:"departure_airport"`
	ArrivalAirport   *Airport `json:"arrival_airport"`
}

// Airport is an airport reference with the local time of the event.
type Airport struct {
	Name Text `json:"name"`
	ID   Text `json:"id"`
	Time Text `json:"time"`
}

// Text accepts a JSON string, number or null and keeps its textual form.
// Absent and null values decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(strings.TrimSpace(string(b)))
	return nil
}

func (t Text) String() string {
	return string(t)
}

func (a *Airport) code() string {
	if a == nil {
		return ""
	}
	return a.ID.String()
}

func (a *Airport) at() string {
	if a == nil {
		return ""
	}
	return a.Time.String()
}
