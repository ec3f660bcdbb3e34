package dashboard

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"flight-tracker/charts"
	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/services"
	"flight-tracker/storage"
	"flight-tracker/utils"
)

var validate = validator.New()

// ExportFileName is the download name of the filtered CSV export.
const ExportFileName = "flights_filtered.csv"

// Deps are the collaborators of the dashboard handlers.
type Deps struct {
	Loader    *services.CachedLoader
	Stats     *services.StatisticsService
	Presenter *services.Presenter
	Logger    *utils.Logger
	Metrics   *metrics.Collector
	// MaxRows caps the fare table of the HTML page; 0 shows every row.
	MaxRows int
}

// RegisterRoutes wires the dashboard handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := &handler{Deps: d}

	app.Use(h.observe)

	app.Get("/", h.page)
	app.Get("/health", h.health)
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	v1 := app.Group("/api/v1")
	v1.Get("/airlines", h.airlines)
	v1.Get("/summary", h.summary)
	v1.Get("/series", h.series)
	v1.Get("/export.csv", h.export)
}

type handler struct {
	Deps
}

// airlineFilter holds the repeated ?airline= query parameter.
type airlineFilter struct {
	Airlines []string `validate:"max=64,dive,required,max=128"`
}

func parseAirlineFilter(c *fiber.Ctx) (airlineFilter, error) {
	var f airlineFilter
	for _, v := range c.Context().QueryArgs().PeekMulti("airline") {
		f.Airlines = append(f.Airlines, string(v))
	}
	if err := validate.Struct(f); err != nil {
		return f, err
	}
	return f, nil
}

// filteredView is one request's slice of the cached dataset.
type filteredView struct {
	dataset  *services.Dataset
	selected []string
	rows     []models.NormalizedFareRow
	analysis *models.Analysis
}

// load applies the airline filter to the current dataset. Statistics for a
// filtered selection are recomputed on the filtered rows.
func (h *handler) load(c *fiber.Ctx) (*filteredView, error) {
	filter, err := parseAirlineFilter(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ds, err := h.Loader.Load()
	if err != nil {
		if errors.Is(err, services.ErrNoValidInput) {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "no snapshot data available yet")
		}
		h.Logger.Error("[dashboard] Loading dataset: %v", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load flight data")
	}

	v := &filteredView{dataset: ds, selected: filter.Airlines}
	if len(filter.Airlines) == 0 {
		v.rows = ds.Merge.Rows
		v.analysis = ds.Analysis
		return v, nil
	}
	v.rows = services.FilterAirlines(ds.Merge.Rows, filter.Airlines)
	v.analysis = h.Stats.Analyze(v.rows)
	return v, nil
}

func (h *handler) page(c *fiber.Ctx) error {
	v, err := h.load(c)
	var view *models.DashboardView
	switch {
	case err == nil:
		view = h.Presenter.Build(v.rows, v.analysis, v.dataset.Airlines, v.selected)
	case isStatus(err, fiber.StatusServiceUnavailable):
		view = h.Presenter.Build(nil, nil, nil, nil)
		view.EmptyMessage = "No snapshot data available yet. Run the collector first."
	default:
		return err
	}

	var buf bytes.Buffer
	if err := charts.RenderPage(&buf, view, charts.PageOptions{Interactive: true, MaxRows: h.MaxRows}); err != nil {
		h.Logger.Error("[dashboard] %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "flight-tracker-dashboard",
	})
}

func (h *handler) airlines(c *fiber.Ctx) error {
	ds, err := h.Loader.Load()
	if err != nil {
		if errors.Is(err, services.ErrNoValidInput) {
			return c.JSON(fiber.Map{"airlines": []string{}})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load flight data")
	}
	return c.JSON(fiber.Map{"airlines": ds.Airlines})
}

func (h *handler) summary(c *fiber.Ctx) error {
	v, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(newSummaryResponse(v, h.Presenter))
}

func (h *handler) series(c *fiber.Ctx) error {
	v, err := h.load(c)
	if err != nil {
		return err
	}
	view := h.Presenter.Build(v.rows, v.analysis, v.dataset.Airlines, v.selected)
	return c.JSON(newSeriesResponse(view))
}

func (h *handler) export(c *fiber.Ctx) error {
	v, err := h.load(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := storage.WriteRowsCSV(&buf, v.rows); err != nil {
		h.Logger.Error("[dashboard] Export: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to export rows")
	}
	c.Attachment(ExportFileName)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// observe records one request in the HTTP metrics.
func (h *handler) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	route := c.Route().Path
	h.Metrics.RecordHTTPRequest(route, strconv.Itoa(status), time.Since(start))
	return err
}

func isStatus(err error, code int) bool {
	var fe *fiber.Error
	return errors.As(err, &fe) && fe.Code == code
}
