package services

import (
	"strings"
	"testing"

	"flight-tracker/models"
)

func TestFormatPrice(t *testing.T) {
	p := NewPresenter("EUR", "CDG → ABJ")
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 €"},
		{99.4, "99 €"},
		{99.5, "100 €"},
		{1234, "1 234 €"},
		{1234567, "1 234 567 €"},
		{-1500, "-1 500 €"},
	}
	for _, tt := range tests {
		if got := p.FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := NewPresenter("usd", "").FormatPrice(10); got != "10 $" {
		t.Errorf("USD symbol: got %q", got)
	}
	if got := NewPresenter("CHF", "").FormatPrice(10); got != "10 CHF" {
		t.Errorf("unknown currency: got %q", got)
	}
}

func TestFormatTrend(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00%"},
		{20, "+20.00%"},
		{-6.666666666666667, "-6.67%"},
	}
	for _, tt := range tests {
		if got := FormatTrend(tt.in); got != tt.want {
			t.Errorf("FormatTrend(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildView(t *testing.T) {
	rows := twoDayRows()
	rows[0].DurationHours = models.Hours{Value: 6.5, Valid: true}
	a := NewStatisticsService(newTestLogger(), nil).Analyze(rows)

	p := NewPresenter("EUR", "CDG → ABJ")
	view := p.Build(rows, a, Airlines(rows), nil)

	if view.EmptyMessage != "" {
		t.Errorf("unexpected empty message %q", view.EmptyMessage)
	}
	if view.Route != "CDG → ABJ" {
		t.Errorf("route: %q", view.Route)
	}
	if len(view.KPIs) != 4 || view.KPIs[1].Value != "100 €" {
		t.Errorf("KPIs: %+v", view.KPIs)
	}
	// global best-price series plus one per airline
	if len(view.Trend) != 3 || !view.Trend[0].Emphasis {
		t.Fatalf("trend series: %+v", view.Trend)
	}
	if pts := view.Trend[0].Points; len(pts) != 2 || pts[0].X != "2025-01-01" || pts[0].Y != 100 || pts[1].Y != 120 {
		t.Errorf("best price points: %+v", pts)
	}
	if len(view.Boxes) != 2 {
		t.Errorf("boxes: %+v", view.Boxes)
	}
	if len(view.Scatter) != 1 || view.Scatter[0].Hours != 6.5 {
		t.Errorf("scatter should only hold rows with a duration: %+v", view.Scatter)
	}
	if len(view.Rows) != 4 || view.Rows[0].CollectionDate != "2025-01-02" {
		t.Errorf("table should list newest first: %+v", view.Rows)
	}
	if len(view.Trends) != 2 || view.Trends[0].Trend != "+20.00%" {
		t.Errorf("trend rows: %+v", view.Trends)
	}
}

func TestBuildEmptyView(t *testing.T) {
	a := NewStatisticsService(newTestLogger(), nil).Analyze(nil)
	view := NewPresenter("EUR", "").Build(nil, a, []string{"AirlineA"}, []string{"AirlineA"})

	if view.EmptyMessage == "" {
		t.Error("expected an empty-state message")
	}
	if len(view.KPIs) != 0 || len(view.Trend) != 0 || len(view.Rows) != 0 {
		t.Errorf("empty view should carry no data: %+v", view)
	}
	if len(view.Airlines) != 1 {
		t.Error("filter choices should survive an empty selection")
	}
}

func TestSummary(t *testing.T) {
	a := NewStatisticsService(newTestLogger(), nil).Analyze(twoDayRows())
	lines := NewPresenter("EUR", "").Summary(a)
	if len(lines) != 4 {
		t.Fatalf("summary lines: %v", lines)
	}
	if !strings.Contains(lines[0], "2025-01-01") || !strings.Contains(lines[0], "125 €") {
		t.Errorf("cheapest day line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "100 €") || !strings.Contains(lines[1], "AirlineA") {
		t.Errorf("cheapest fare line: %q", lines[1])
	}
}
