package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"flight-tracker/metrics"
	"flight-tracker/models"
	"flight-tracker/utils"
)

const defaultBaseURL = "https://serpapi.com/search.json"

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errNoAPIKey    = errors.New("serpapi api key is not configured")
)

// Client queries the google_flights engine of SerpApi.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	retry   *utils.RetryConfig
	logger  *utils.Logger
	metrics *metrics.Collector
}

// NewClient creates a ready-to-use Client.
func NewClient(apiKey string, httpClient *http.Client, maxRetries int, logger *utils.Logger, collector *metrics.Collector) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    httpClient,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "serpapi",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger:  logger,
		metrics: collector,
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// WithRetryDelay changes the initial back-off delay.
func (c *Client) WithRetryDelay(d time.Duration) *Client {
	c.retry.BaseDelay = d
	return c
}

// Search runs one round-trip search. Rate limiting and server errors are
// retried with back-off; other non-2xx statuses fail immediately.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, errNoAPIKey
	}

	start := time.Now()
	var result *SearchResult
	err := c.retry.Do(ctx, "serpapi search", func() error {
		out, err := c.circuit.Execute(func() (interface{}, error) {
			return c.doSearch(ctx, p)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return fmt.Errorf("circuit open: %v: %w", err, utils.ErrPermanent)
			}
			return err
		}
		result = out.(*SearchResult)
		return nil
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordSearch(outcome, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("serpapi: %w", err)
	}
	return result, nil
}

func (c *Client) doSearch(ctx context.Context, p SearchParams) (*SearchResult, error) {
	values := url.Values{}
	values.Set("engine", "google_flights")
	values.Set("departure_id", p.DepartureID)
	values.Set("arrival_id", p.ArrivalID)
	values.Set("outbound_date", p.OutboundDate)
	values.Set("return_date", p.ReturnDate)
	values.Set("currency", p.Currency)
	values.Set("hl", p.Lang)
	values.Set("type", "1")
	values.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %v: %w", err, utils.ErrPermanent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s: %w", resp.StatusCode, body, utils.ErrPermanent)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Flatten turns a search result into one record per leg, best offers first.
// The offer's price and total duration are copied onto each of its legs.
// Missing fields stay empty. Legs repeated across the two groups are kept.
func Flatten(result *SearchResult) []models.RawFareRecord {
	if result == nil {
		return nil
	}

	var records []models.RawFareRecord
	for _, section := range [][]FlightGroup{result.BestFlights, result.OtherFlights} {
		for _, group := range section {
			for _, leg := range group.Flights {
				records = append(records, models.RawFareRecord{
					Airline:          leg.Airline.String(),
					Price:            group.Price.String(),
					DepartureAirport: leg.DepartureAirport.code(),
					ArrivalAirport:   leg.ArrivalAirport.code(),
					DepartureTime:    leg.DepartureAirport.at(),
					ArrivalTime:      leg.ArrivalAirport.at(),
					Duration:         group.TotalDuration.String(),
					FlightNumber:     leg.FlightNumber.String(),
				})
			}
		}
	}
	return records
}
