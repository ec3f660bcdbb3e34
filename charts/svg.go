package charts

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"

	"flight-tracker/models"
)

const (
	chartWidth   = 760
	chartHeight  = 340
	marginLeft   = 64
	marginRight  = 20
	marginTop    = 20
	marginBottom = 56
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// colour returns a stable colour for the i-th airline.
func colour(i int) string {
	return palette[i%len(palette)]
}

type plotArea struct {
	minY, maxY float64
}

func newPlotArea(values []float64) plotArea {
	if len(values) == 0 {
		return plotArea{0, 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = math.Max(1, math.Abs(hi)*0.05)
	}
	return plotArea{minY: lo - pad, maxY: hi + pad}
}

func (p plotArea) y(v float64) float64 {
	inner := float64(chartHeight - marginTop - marginBottom)
	return float64(marginTop) + inner*(1-(v-p.minY)/(p.maxY-p.minY))
}

// slotX places category i of n evenly across the plot width.
func slotX(i, n int) float64 {
	inner := float64(chartWidth - marginLeft - marginRight)
	if n <= 1 {
		return float64(marginLeft) + inner/2
	}
	return float64(marginLeft) + inner*float64(i)/float64(n-1)
}

func openSVG(b *strings.Builder, title string) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="100%%" role="img" aria-label="%s">`,
		chartWidth, chartHeight, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, chartWidth, chartHeight)
}

// yAxis draws five horizontal grid lines with their labels.
func yAxis(b *strings.Builder, p plotArea) {
	for i := 0; i <= 4; i++ {
		v := p.minY + (p.maxY-p.minY)*float64(i)/4
		y := p.y(v)
		fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e5e5e5"/>`,
			marginLeft, y, chartWidth-marginRight, y)
		fmt.Fprintf(b, `<text x="%d" y="%.1f" font-size="11" text-anchor="end" fill="#555">%.0f</text>`,
			marginLeft-6, y+4, v)
	}
}

func categoryLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="11" text-anchor="end" fill="#555" transform="rotate(-35 %.1f %d)">%s</text>`,
		x, chartHeight-marginBottom+16, x, chartHeight-marginBottom+16, template.HTMLEscapeString(label))
}

// LineChart renders the price trend: one polyline per series over the union of
// their dates. Emphasised series are drawn thicker and last.
func LineChart(series []models.ChartSeries) template.HTML {
	dates := map[string]struct{}{}
	var values []float64
	for _, s := range series {
		for _, p := range s.Points {
			dates[p.X] = struct{}{}
			values = append(values, p.Y)
		}
	}
	axis := make([]string, 0, len(dates))
	for d := range dates {
		axis = append(axis, d)
	}
	sort.Strings(axis)
	slot := make(map[string]int, len(axis))
	for i, d := range axis {
		slot[d] = i
	}

	area := newPlotArea(values)
	var b strings.Builder
	openSVG(&b, "Price trend")
	yAxis(&b, area)
	for i, d := range axis {
		categoryLabel(&b, slotX(i, len(axis)), d)
	}

	ordered := make([]int, 0, len(series))
	for i, s := range series {
		if !s.Emphasis {
			ordered = append(ordered, i)
		}
	}
	for i, s := range series {
		if s.Emphasis {
			ordered = append(ordered, i)
		}
	}

	airline := 0
	colours := make([]string, len(series))
	for i, s := range series {
		if s.Emphasis {
			colours[i] = "#111111"
			continue
		}
		colours[i] = colour(airline)
		airline++
	}

	for _, i := range ordered {
		s := series[i]
		width, dash := 2.0, ""
		if s.Emphasis {
			width, dash = 3.5, ` stroke-dasharray="6 3"`
		}
		pts := make([]string, 0, len(s.Points))
		for _, p := range s.Points {
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", slotX(slot[p.X], len(axis)), area.y(p.Y)))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="%.1f"%s points="%s"><title>%s</title></polyline>`,
			colours[i], width, dash, strings.Join(pts, " "), template.HTMLEscapeString(s.Name))
		for _, p := range s.Points {
			fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s %s: %.0f</title></circle>`,
				slotX(slot[p.X], len(axis)), area.y(p.Y), colours[i],
				template.HTMLEscapeString(s.Name), template.HTMLEscapeString(p.X), p.Y)
		}
	}

	legend(&b, series, colours)
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func legend(b *strings.Builder, series []models.ChartSeries, colours []string) {
	x := marginLeft + 8
	for i, s := range series {
		y := marginTop + 12 + i*15
		fmt.Fprintf(b, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`, x, y-9, colours[i])
		fmt.Fprintf(b, `<text x="%d" y="%d" font-size="11" fill="#222">%s</text>`, x+14, y, template.HTMLEscapeString(s.Name))
	}
}

// BoxChart renders one box per airline from precomputed quartiles.
func BoxChart(boxes []models.Distribution) template.HTML {
	var values []float64
	for _, d := range boxes {
		values = append(values, d.Min, d.Max)
	}
	area := newPlotArea(values)

	var b strings.Builder
	openSVG(&b, "Price distribution by airline")
	yAxis(&b, area)

	inner := float64(chartWidth - marginLeft - marginRight)
	slotWidth := inner / math.Max(1, float64(len(boxes)))
	boxWidth := math.Min(60, slotWidth*0.6)
	for i, d := range boxes {
		cx := float64(marginLeft) + slotWidth*(float64(i)+0.5)
		c := colour(i)
		fmt.Fprintf(&b, `<g><title>%s: min %.0f, q1 %.0f, median %.0f, q3 %.0f, max %.0f (%d fares)</title>`,
			template.HTMLEscapeString(d.Airline), d.Min, d.Q1, d.Median, d.Q3, d.Max, d.Count)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, cx, area.y(d.Max), cx, area.y(d.Q3), c)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`, cx, area.y(d.Q1), cx, area.y(d.Min), c)
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.35" stroke="%s"/>`,
			cx-boxWidth/2, area.y(d.Q3), boxWidth, math.Max(1, area.y(d.Q1)-area.y(d.Q3)), c, c)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
			cx-boxWidth/2, area.y(d.Median), cx+boxWidth/2, area.y(d.Median), c)
		for _, v := range []float64{d.Min, d.Max} {
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`,
				cx-boxWidth/4, area.y(v), cx+boxWidth/4, area.y(v), c)
		}
		b.WriteString(`</g>`)
		categoryLabel(&b, cx, d.Airline)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// ScatterChart plots price against flight duration, coloured by airline.
func ScatterChart(points []models.ScatterPoint) template.HTML {
	var prices, hours []float64
	airlines := map[string]int{}
	var names []string
	for _, p := range points {
		prices = append(prices, p.Price)
		hours = append(hours, p.Hours)
		if _, ok := airlines[p.Airline]; !ok {
			airlines[p.Airline] = 0
			names = append(names, p.Airline)
		}
	}
	sort.Strings(names)
	for i, n := range names {
		airlines[n] = i
	}

	area := newPlotArea(prices)
	xs := newPlotArea(hours)
	inner := float64(chartWidth - marginLeft - marginRight)
	xOf := func(h float64) float64 {
		return float64(marginLeft) + inner*(h-xs.minY)/(xs.maxY-xs.minY)
	}

	var b strings.Builder
	openSVG(&b, "Duration versus price")
	yAxis(&b, area)
	for i := 0; i <= 4; i++ {
		h := xs.minY + (xs.maxY-xs.minY)*float64(i)/4
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-size="11" text-anchor="middle" fill="#555">%.1fh</text>`,
			xOf(h), chartHeight-marginBottom+18, h)
	}
	for _, p := range points {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s" fill-opacity="0.7"><title>%s: %.1fh, %.0f</title></circle>`,
			xOf(p.Hours), area.y(p.Price), colour(airlines[p.Airline]),
			template.HTMLEscapeString(p.Airline), p.Hours, p.Price)
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
