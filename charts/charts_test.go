package charts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flight-tracker/models"
)

func sampleView() *models.DashboardView {
	return &models.DashboardView{
		Title:    "Flight price tracker",
		Route:    "CDG → ABJ",
		Airlines: []string{"AirlineA", "AirlineB"},
		Selected: []string{"AirlineB"},
		KPIs:     []models.KPI{{Label: "Mean price", Value: "128 €"}},
		Trend: []models.ChartSeries{
			{Name: "Best price (all airlines)", Emphasis: true, Points: []models.ChartPoint{{X: "2025-01-01", Y: 100}, {X: "2025-01-02", Y: 120}}},
			{Name: "AirlineA", Points: []models.ChartPoint{{X: "2025-01-01", Y: 100}, {X: "2025-01-02", Y: 120}}},
			{Name: "AirlineB", Points: []models.ChartPoint{{X: "2025-01-02", Y: 140}}},
		},
		Boxes: []models.Distribution{
			{Airline: "AirlineA", Count: 2, Min: 100, Q1: 105, Median: 110, Q3: 115, Max: 120},
			{Airline: "AirlineB", Count: 2, Min: 140, Q1: 142.5, Median: 145, Q3: 147.5, Max: 150},
		},
		Scatter: []models.ScatterPoint{{Airline: "AirlineA", Hours: 6.5, Price: 100}},
		Trends:  []models.TrendRow{{Airline: "AirlineA", Min: "100 €", Mean: "110 €", Max: "120 €", Trend: "+20.00%", Dates: 2}},
		Summary: []string{"Cheapest collection day: 2025-01-01 (mean 125 €)"},
		Rows: []models.TableRow{
			{CollectionDate: "2025-01-02", Airline: "AirlineA", Price: "120 €"},
			{CollectionDate: "2025-01-01", Airline: "AirlineA", Price: "100 €"},
		},
	}
}

func TestLineChart(t *testing.T) {
	svg := string(LineChart(sampleView().Trend))
	if got := strings.Count(svg, "<polyline"); got != 3 {
		t.Errorf("polylines: got %d, want 3", got)
	}
	if !strings.Contains(svg, "2025-01-01") || !strings.Contains(svg, "2025-01-02") {
		t.Error("missing date labels")
	}
	if !strings.Contains(svg, `stroke-dasharray`) {
		t.Error("emphasised series should be dashed")
	}
}

func TestChartsHandleDegenerateInput(t *testing.T) {
	for name, svg := range map[string]string{
		"line":    string(LineChart(nil)),
		"box":     string(BoxChart(nil)),
		"scatter": string(ScatterChart(nil)),
		"flat":    string(LineChart([]models.ChartSeries{{Name: "x", Points: []models.ChartPoint{{X: "2025-01-01", Y: 5}}}})),
	} {
		if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
			t.Errorf("%s: malformed svg", name)
		}
		if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
			t.Errorf("%s: non-finite coordinates", name)
		}
	}
}

func TestBoxChartEscapesNames(t *testing.T) {
	svg := string(BoxChart([]models.Distribution{{Airline: "<b>Air</b>", Count: 1, Min: 1, Q1: 1, Median: 1, Q3: 1, Max: 1}}))
	if strings.Contains(svg, "<b>") {
		t.Error("airline name was not escaped")
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, sampleView(), PageOptions{Interactive: true, MaxRows: 1}); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"CDG → ABJ",
		"128 €",
		`value="AirlineB" checked`,
		"/api/v1/export.csv?airline=AirlineB",
		"+20.00%",
		"Duration versus price",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, `value="AirlineA" checked`) {
		t.Error("unselected airline rendered as checked")
	}
	if strings.Count(out, "<td>2025-01-0") != 1 {
		t.Error("MaxRows should cap the fare table")
	}
}

func TestRenderEmptyPage(t *testing.T) {
	view := &models.DashboardView{Title: "Flight price tracker", EmptyMessage: "No priced fares match the current selection."}
	var buf bytes.Buffer
	if err := RenderPage(&buf, view, PageOptions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No priced fares") || strings.Contains(out, "<svg") {
		t.Error("empty page should show the message and no charts")
	}
	if strings.Contains(out, "<form") {
		t.Error("static page should not carry the filter form")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "prix_compagnies.html")
	if err := WriteHTML(path, sampleView()); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("chart document has no svg")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestExportURL(t *testing.T) {
	if got := exportURL(nil); got != "/api/v1/export.csv" {
		t.Errorf("no filter: %q", got)
	}
	if got := exportURL([]string{"Air France", "Corsair"}); got != "/api/v1/export.csv?airline=Air+France&airline=Corsair" {
		t.Errorf("filter: %q", got)
	}
}

func TestCapturePNG(t *testing.T) {
	chrome := os.Getenv("CHROME_BIN")
	if chrome == "" {
		t.Skip("CHROME_BIN not set")
	}
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "chart.html")
	if err := WriteHTML(htmlPath, sampleView()); err != nil {
		t.Fatal(err)
	}
	pngPath := filepath.Join(dir, "chart.png")

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	if err := CapturePNG(ctx, htmlPath, pngPath, chrome); err != nil {
		t.Fatalf("CapturePNG: %v", err)
	}
	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
