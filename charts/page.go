package charts

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"flight-tracker/models"
)

// PageOptions controls the parts of the page that only make sense when it is
// served by the dashboard.
type PageOptions struct {
	// Interactive adds the airline filter form and the CSV export link.
	Interactive bool
	// MaxRows caps the detailed table; 0 shows every row.
	MaxRows int
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"lineChart":    LineChart,
	"boxChart":     BoxChart,
	"scatterChart": ScatterChart,
	"selected":     contains,
	"exportURL":    exportURL,
	"limit":        limitRows,
}).Parse(pageHTML))

// RenderPage writes the full HTML document for a view.
func RenderPage(w io.Writer, view *models.DashboardView, opts PageOptions) error {
	data := struct {
		*models.DashboardView
		Opts PageOptions
	}{view, opts}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("charts: render page: %w", err)
	}
	return nil
}

// WriteHTML renders the static chart document to path.
func WriteHTML(path string, view *models.DashboardView) error {
	var buf bytes.Buffer
	if err := RenderPage(&buf, view, PageOptions{MaxRows: 200}); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("charts: create output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("charts: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("charts: rename into place: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func exportURL(selected []string) string {
	q := url.Values{}
	for _, a := range selected {
		q.Add("airline", a)
	}
	if len(q) == 0 {
		return "/api/v1/export.csv"
	}
	return "/api/v1/export.csv?" + q.Encode()
}

func limitRows(rows []models.TableRow, n int) []models.TableRow {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}{{if .Route}} · {{.Route}}{{end}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 24px; color: #222; background: #fafafa; }
h1 { margin-bottom: 4px; }
h2 { margin-top: 32px; font-size: 18px; }
.route { color: #666; margin-top: 0; }
.kpis { display: flex; gap: 16px; flex-wrap: wrap; }
.kpi { background: #fff; border: 1px solid #ddd; border-radius: 6px; padding: 12px 18px; min-width: 150px; }
.kpi .label { font-size: 12px; color: #666; }
.kpi .value { font-size: 22px; font-weight: 600; }
.chart { background: #fff; border: 1px solid #ddd; border-radius: 6px; padding: 8px; max-width: 800px; }
table { border-collapse: collapse; background: #fff; }
th, td { border: 1px solid #ddd; padding: 4px 8px; font-size: 13px; text-align: left; }
th { background: #f0f0f0; }
form label { margin-right: 12px; }
.empty { padding: 24px; background: #fff3cd; border: 1px solid #ffe08a; border-radius: 6px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Route}}<p class="route">{{.Route}}</p>{{end}}

{{if .Opts.Interactive}}
<form method="get" action="/">
  <strong>Airlines:</strong>
  {{range .Airlines}}<label><input type="checkbox" name="airline" value="{{.}}"{{if selected $.Selected .}} checked{{end}}> {{.}}</label>{{end}}
  <button type="submit">Apply</button>
  <a href="/">Reset</a>
  · <a href="{{exportURL .Selected}}" download="flights_filtered.csv">Download CSV</a>
</form>
{{end}}

{{if .EmptyMessage}}
<p class="empty">{{.EmptyMessage}}</p>
{{else}}
<div class="kpis">
{{range .KPIs}}<div class="kpi"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}
</div>

{{if .Summary}}
<h2>Highlights</h2>
<ul>{{range .Summary}}<li>{{.}}</li>{{end}}</ul>
{{end}}

<h2>Price trend by collection date</h2>
<div class="chart">{{lineChart .Trend}}</div>

<h2>Price distribution by airline</h2>
<div class="chart">{{boxChart .Boxes}}</div>

{{if .Scatter}}
<h2>Duration versus price</h2>
<div class="chart">{{scatterChart .Scatter}}</div>
{{end}}

<h2>Airlines</h2>
<table>
<tr><th>Airline</th><th>Min</th><th>Mean</th><th>Max</th><th>Trend</th><th>Days</th></tr>
{{range .Trends}}<tr><td>{{.Airline}}</td><td>{{.Min}}</td><td>{{.Mean}}</td><td>{{.Max}}</td><td>{{.Trend}}</td><td>{{.Dates}}</td></tr>
{{end}}
</table>

<h2>Fares</h2>
<table>
<tr><th>Collected</th><th>Airline</th><th>Price</th><th>Route</th><th>Departure</th><th>Arrival</th><th>Duration</th><th>Flight</th></tr>
{{range limit .Rows .Opts.MaxRows}}<tr><td>{{.CollectionDate}}</td><td>{{.Airline}}</td><td>{{.Price}}</td><td>{{.Route}}</td><td>{{.DepartureTime}}</td><td>{{.ArrivalTime}}</td><td>{{.Duration}}</td><td>{{.FlightNumber}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
