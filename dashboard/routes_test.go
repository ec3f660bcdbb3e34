package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"flight-tracker/metrics"
	"flight-tracker/services"
	"flight-tracker/utils"
)

const header = "airline,price,departure_airport,arrival_airport,departure_time,arrival_time,duration,flight_number\n"

func writeSnapshot(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := header + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, dir string) (*fiber.App, *metrics.Collector) {
	t.Helper()
	logger := utils.NewLogger()
	logger.SetOutput(io.Discard)
	collector := metrics.NewCollector("flights")

	agg := services.NewAggregator(logger, collector, 2)
	stats := services.NewStatisticsService(logger, collector)

	app := fiber.New()
	RegisterRoutes(app, Deps{
		Loader:    services.NewCachedLoader(dir, agg, stats, logger, collector),
		Stats:     stats,
		Presenter: services.NewPresenter("EUR", "CDG → ABJ"),
		Logger:    logger,
		Metrics:   collector,
	})
	return app, collector
}

func twoDayDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSnapshot(t, dir, "flights_2025-01-01.csv",
		`AirlineA,100€,CDG,ABJ,2025-12-22 10:35,2025-12-22 16:50,390,AF 702`,
		`AirlineB,150€,CDG,ABJ,2025-12-22 11:00,2025-12-22 21:10,10 h 10 min,AT 525`)
	writeSnapshot(t, dir, "flights_2025-01-02.csv",
		`AirlineA,120€,CDG,ABJ,2025-12-22 10:35,2025-12-22 16:50,390,AF 702`,
		`AirlineB,140€,CDG,ABJ,2025-12-22 11:00,2025-12-22 21:10,10 h 10 min,AT 525`)
	return dir
}

func get(t *testing.T, app *fiber.App, url string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, t.TempDir())
	resp, body := get(t, app, "/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("health: %d %s", resp.StatusCode, body)
	}
}

func TestAirlines(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	resp, body := get(t, app, "/api/v1/airlines")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		Airlines []string `json:"airlines"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Airlines) != 2 || out.Airlines[0] != "AirlineA" || out.Airlines[1] != "AirlineB" {
		t.Errorf("airlines: %v", out.Airlines)
	}
}

func TestSummaryRecomputesForFilter(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))

	tests := []struct {
		url       string
		count     int
		min, max  float64
		trends    int
		cheapDay  float64
		firstPct  float64
		firstName string
	}{
		{"/api/v1/summary", 4, 100, 150, 2, 125, 20, "AirlineA"},
		{"/api/v1/summary?airline=AirlineB", 2, 140, 150, 1, 140, -6.666666666666667, "AirlineB"},
	}
	for _, tt := range tests {
		resp, body := get(t, app, tt.url)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", tt.url, resp.StatusCode)
		}
		var out summaryResponse
		if err := json.Unmarshal([]byte(body), &out); err != nil {
			t.Fatal(err)
		}
		if out.Stats.Count != tt.count || out.Stats.Min != tt.min || out.Stats.Max != tt.max {
			t.Errorf("%s: stats %+v", tt.url, out.Stats)
		}
		if len(out.Trends) != tt.trends || out.Trends[0].Airline != tt.firstName {
			t.Fatalf("%s: trends %+v", tt.url, out.Trends)
		}
		if d := out.Trends[0].TrendPct - tt.firstPct; d > 1e-9 || d < -1e-9 {
			t.Errorf("%s: trend %v, want %v", tt.url, out.Trends[0].TrendPct, tt.firstPct)
		}
		if out.CheapestDay == nil || out.CheapestDay.Value != tt.cheapDay {
			t.Errorf("%s: cheapest day %+v", tt.url, out.CheapestDay)
		}
	}
}

func TestSummaryUnknownAirlineIsEmpty(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	resp, body := get(t, app, "/api/v1/summary?airline=Nobody")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out summaryResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if out.Stats.Count != 0 || out.CheapestFare != nil {
		t.Errorf("expected an empty summary, got %+v", out)
	}
}

func TestInvalidFilter(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	resp, _ := get(t, app, "/api/v1/summary?airline=")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty airline: status %d, want 400", resp.StatusCode)
	}
}

func TestSeries(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	_, body := get(t, app, "/api/v1/series")
	var out seriesResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Trend) != 3 || !out.Trend[0].Emphasis {
		t.Errorf("trend: %+v", out.Trend)
	}
	if len(out.Boxes) != 2 || out.Boxes[0].Median != 110 {
		t.Errorf("boxes: %+v", out.Boxes)
	}
	if len(out.Scatter) != 4 {
		t.Errorf("scatter: got %d points, want 4", len(out.Scatter))
	}
}

func TestExport(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	resp, body := get(t, app, "/api/v1/export.csv?airline=AirlineB")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, ExportFileName) {
		t.Errorf("Content-Disposition: %q", cd)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "collection_date,airline,price") {
		t.Errorf("export body:\n%s", body)
	}
	for _, l := range lines[1:] {
		if !strings.Contains(l, "AirlineB") {
			t.Errorf("row outside the filter: %s", l)
		}
	}
}

func TestPage(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	resp, body := get(t, app, "/?airline=AirlineA")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type: %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, "<svg") || !strings.Contains(body, `value="AirlineA" checked`) {
		t.Error("page is missing charts or the active filter")
	}
}

func TestNoDataYet(t *testing.T) {
	app, _ := newTestApp(t, t.TempDir())

	resp, body := get(t, app, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "No snapshot data available yet") {
		t.Errorf("page without data: %d", resp.StatusCode)
	}
	resp, _ = get(t, app, "/api/v1/summary")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("summary without data: status %d, want 503", resp.StatusCode)
	}
	resp, body = get(t, app, "/api/v1/airlines")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"airlines":[]`) {
		t.Errorf("airlines without data: %d %s", resp.StatusCode, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newTestApp(t, twoDayDir(t))
	get(t, app, "/api/v1/airlines")
	get(t, app, "/api/v1/airlines")

	resp, body := get(t, app, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	for _, want := range []string{
		`flights_http_requests_total{route="/api/v1/airlines",status="200"} 2`,
		`flights_dataset_cache_lookups_total{result="hit"} 1`,
		`flights_rows_merged_total 4`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
