package models

// KPI is a labelled headline figure.
type KPI struct {
	Label string
	Value string
}

// ChartPoint is a point on a category (date) axis.
type ChartPoint struct {
	X string
	Y float64
}

// ChartSeries is a named line on the trend chart.
type ChartSeries struct {
	Name     string
	Points   []ChartPoint
	Emphasis bool
}

// ScatterPoint plots one fare against its flight duration.
type ScatterPoint struct {
	Airline string
	Hours   float64
	Price   float64
}

// TableRow is a display-ready fare row.
type TableRow struct {
	CollectionDate string
	Airline        string
	Price          string
	Route          string
	DepartureTime  string
	ArrivalTime    string
	Duration       string
	FlightNumber   string
}

// TrendRow is a display-ready TrendSummary.
type TrendRow struct {
	Airline string
	Min     string
	Mean    string
	Max     string
	Trend   string
	Dates   int
}

// DashboardView is the renderable form of an analysis.
type DashboardView struct {
	Title        string
	Route        string
	Airlines     []string
	Selected     []string
	KPIs         []KPI
	Trend        []ChartSeries
	Boxes        []Distribution
	Scatter      []ScatterPoint
	Trends       []TrendRow
	Summary      []string
	Rows         []TableRow
	EmptyMessage string
}
