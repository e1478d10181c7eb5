package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"flightpulse/internal/config"
	"flightpulse/pkg/contracts/domain"
)

// Record sources.
const (
	SourceAPI    = "api"
	SourceSample = "sample"
)

// FetchRequest narrows a data fetch to a city pair and date window.
// Zero dates default to a window one week out, three weeks long.
type FetchRequest struct {
	Origin      string
	Destination string
	DateFrom    time.Time
	DateTo      time.Time
}

// pinned reports whether the request names a specific city pair. Unpinned
// requests get market-wide sample data rather than a single default route.
func (r FetchRequest) pinned() bool {
	return r.Origin != "" || r.Destination != ""
}

func (r FetchRequest) withDefaults() FetchRequest {
	if r.Origin == "" {
		r.Origin = "SYD"
	}
	if r.Destination == "" {
		r.Destination = "MEL"
	}
	if r.DateFrom.IsZero() {
		r.DateFrom = time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	}
	if r.DateTo.IsZero() {
		r.DateTo = r.DateFrom.AddDate(0, 0, 23)
	}
	return r
}

// Client fetches raw booking records, trying the configured external API
// first and falling back to the synthetic generator. API calls are rate
// limited so bulk refreshes stay inside upstream quotas.
type Client struct {
	cfg     config.DataSourceConfig
	http    *http.Client
	limiter *rate.Limiter
	sample  *SampleGenerator
	logger  *slog.Logger
}

// NewClient creates a data source client. A nil http client gets a default
// bound to the configured timeout.
func NewClient(cfg config.DataSourceConfig, httpClient *http.Client, sample *SampleGenerator, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if sample == nil {
		sample = NewSampleGenerator(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		sample:  sample,
		logger:  logger.With(slog.String("component", "datasource")),
	}
}

// FetchFlights returns raw records for the request and which source
// produced them. The external API is only an error when the synthetic
// fallback is disabled too.
func (c *Client) FetchFlights(ctx context.Context, req FetchRequest) ([]domain.RawFlight, string, error) {
	pinned := req.pinned()
	req = req.withDefaults()

	if c.cfg.BaseURL != "" {
		records, err := c.fetchFromAPI(ctx, req)
		if err == nil && len(records) > 0 {
			return records, SourceAPI, nil
		}
		if err != nil {
			c.logger.WarnContext(ctx, "flight API unavailable",
				slog.String("error", err.Error()),
				slog.String("route", req.Origin+"-"+req.Destination),
			)
			if !c.cfg.SampleEnabled {
				return nil, "", err
			}
		}
	}

	if !c.cfg.SampleEnabled {
		return nil, "", fmt.Errorf("no data source configured: API URL empty and sample generation disabled")
	}

	if !pinned {
		return c.sample.GenerateNetwork(req.DateFrom, req.DateTo), SourceSample, nil
	}
	records := c.sample.Generate(req.Origin, req.Destination, req.DateFrom, req.DateTo)
	return records, SourceSample, nil
}

func (c *Client) fetchFromAPI(ctx context.Context, req FetchRequest) ([]domain.RawFlight, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("dep_iata", req.Origin)
	q.Set("arr_iata", req.Destination)
	q.Set("date_from", req.DateFrom.Format("2006-01-02"))
	q.Set("date_to", req.DateTo.Format("2006-01-02"))
	if c.cfg.APIKey != "" {
		q.Set("access_key", c.cfg.APIKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling flight API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []domain.RawFlight `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding flight API response: %w", err)
	}
	return payload.Data, nil
}

// AvailableRoutes lists every ordered city pair in the covered network.
func AvailableRoutes() []string {
	codes := make([]string, 0, len(config.Airports))
	for code := range config.Airports {
		codes = append(codes, code)
	}
	// Map iteration order is random; sort for a stable listing.
	sort.Strings(codes)

	var routes []string
	for _, origin := range codes {
		for _, dest := range codes {
			if origin != dest {
				routes = append(routes, origin+"-"+dest)
			}
		}
	}
	return routes
}
