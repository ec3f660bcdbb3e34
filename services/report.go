package services

import (
	"fmt"
	"io"
	"strings"

	"flight-tracker/models"
)

// ReportPrinter renders the merge diagnostics and the analysis to a terminal.
type ReportPrinter struct {
	presenter *Presenter
}

func NewReportPrinter(presenter *Presenter) *ReportPrinter {
	return &ReportPrinter{presenter: presenter}
}

func (rp *ReportPrinter) Print(w io.Writer, merge *models.MergeResult, a *models.Analysis) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)
	p := rp.presenter

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  ✈  FLIGHT PRICE INSIGHTS  %s\033[0m\n", p.route)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	st := merge.Stats
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Snapshot files         : \033[1m%d\033[0m (read %d, empty %d, skipped %d)\n",
		st.FilesSeen, st.FilesRead, st.FilesEmpty, st.FilesSkipped)
	fmt.Fprintf(w, "  Rows merged            : \033[1m%d\033[0m of %d\n", st.RowsKept, st.RowsRead)
	fmt.Fprintf(w, "  Dropped (bad price)    : %d\n", st.InvalidPrices)
	fmt.Fprintf(w, "  Dropped (duplicates)   : %d\n", st.Duplicates)
	fmt.Fprintln(w)

	if skipped := skippedFiles(merge.Diagnostics); len(skipped) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Skipped files\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for _, d := range skipped {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %-36s %s\n", truncate(d.File, 36), d.Reason)
		}
		fmt.Fprintln(w)
	}

	// Price Stats
	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if !a.HasData() {
		fmt.Fprintf(w, "  No price data available\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	fmt.Fprintf(w, "  Average price : \033[1;32m%s\033[0m\n", p.FormatPrice(a.Global.Mean))
	fmt.Fprintf(w, "  Minimum price : \033[1;32m%s\033[0m\n", p.FormatPrice(a.Global.Min))
	fmt.Fprintf(w, "  Maximum price : \033[1;32m%s\033[0m\n", p.FormatPrice(a.Global.Max))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Best Picks\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, line := range p.Summary(a)[:bestPickLines(a)] {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)

	// Daily minimum
	fmt.Fprintf(w, "\033[1;33m  Best Price per Collection Day\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, pt := range a.DailyMinimum {
		fmt.Fprintf(w, "  %s  %12s\n", pt.Date.Format(models.DateLayout), p.FormatPrice(pt.Value))
	}
	fmt.Fprintln(w)

	// Airlines
	fmt.Fprintf(w, "\033[1;33m  Airlines\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  %-24s %10s %10s %10s %9s\n", "Airline", "Min", "Mean", "Max", "Trend")
	for _, t := range a.Trends {
		colour := "32"
		if t.TrendPct > 0 {
			colour = "31"
		}
		fmt.Fprintf(w, "  %-24s %10s %10s %10s \033[1;%sm%9s\033[0m\n",
			truncate(t.Airline, 24), p.FormatPrice(t.Min), p.FormatPrice(t.Mean), p.FormatPrice(t.Max),
			colour, FormatTrend(t.TrendPct))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Mean Price per Airline and Day\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, s := range a.Airlines {
		values := make([]string, 0, len(s.Points))
		for _, pt := range s.Points {
			values = append(values, fmt.Sprintf("%.2f", pt.Value))
		}
		fmt.Fprintf(w, "  %-24s [%s]\n", truncate(s.Airline, 24), strings.Join(values, ", "))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// bestPickLines is the number of leading Summary lines about the cheapest
// day and fare.
func bestPickLines(a *models.Analysis) int {
	n := 0
	if a.CheapestDay != nil {
		n++
	}
	if a.CheapestFare != nil {
		n++
	}
	return n
}

func skippedFiles(diags []models.FileDiagnostic) []models.FileDiagnostic {
	var out []models.FileDiagnostic
	for _, d := range diags {
		if d.Status == models.FileSkipped {
			out = append(out, d)
		}
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
