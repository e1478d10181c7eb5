package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gonum.org/v1/gonum/stat"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/config"
	"flightpulse/pkg/contracts/domain"
)

// Result sources.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Result is the outcome of a narrative analysis. Source states whether the
// analysis came from the live service or the offline generator, and
// FallbackReason explains a fallback so callers never have to guess from
// the payload shape.
type Result struct {
	Analysis       map[string]interface{} `json:"analysis"`
	Source         string                 `json:"source"`
	FallbackReason string                 `json:"fallback_reason,omitempty"`
}

// Analyzer produces the market narrative for an enriched batch, preferring
// the configured chat-completions service and degrading to a deterministic
// offline narrative on any failure. Analyze never returns an error.
type Analyzer struct {
	cfg    config.NarrativeConfig
	client *http.Client
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil client gets a default one bound to
// the configured timeout.
func NewAnalyzer(cfg config.NarrativeConfig, client *http.Client, logger *slog.Logger) *Analyzer {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "narrative")),
	}
}

// Analyze returns the narrative analysis for the batch. Without an API key
// the offline narrative is returned directly; with one, any transport
// error, non-2xx status, or undecodable response degrades to the offline
// narrative with the reason recorded on the result.
func (a *Analyzer) Analyze(ctx context.Context, flights []domain.Flight) Result {
	stats := summarize(flights)

	if a.cfg.APIKey == "" {
		return Result{
			Analysis:       mockAnalysis(stats),
			Source:         SourceFallback,
			FallbackReason: "no API key configured",
		}
	}

	analysis, err := a.callService(ctx, stats)
	if err != nil {
		a.logger.WarnContext(ctx, "narrative service unavailable, using offline analysis",
			slog.String("error", err.Error()),
		)
		return Result{
			Analysis:       mockAnalysis(stats),
			Source:         SourceFallback,
			FallbackReason: err.Error(),
		}
	}

	return Result{Analysis: analysis, Source: SourceLive}
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *Analyzer) callService(ctx context.Context, stats batchStats) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       a.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(stats)}},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling narrative service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("narrative service returned status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("narrative service returned no choices")
	}

	content := cr.Choices[0].Message.Content

	// The service is asked for JSON but not guaranteed to comply.
	var analysis map[string]interface{}
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return map[string]interface{}{"analysis": content}, nil
	}
	return analysis, nil
}

func buildPrompt(stats batchStats) string {
	var b strings.Builder
	b.WriteString("Analyze this airline booking market data and provide business insights:\n\n")
	b.WriteString("Data Summary:\n")
	fmt.Fprintf(&b, "- Total flights: %d\n", stats.TotalFlights)
	if stats.DataPeriod != "" {
		fmt.Fprintf(&b, "- Date range: %s\n", stats.DataPeriod)
	}
	fmt.Fprintf(&b, "- Average price: $%.0f\n", stats.AvgPrice)
	fmt.Fprintf(&b, "- Price range: $%.0f - $%.0f\n", stats.MinPrice, stats.MaxPrice)
	fmt.Fprintf(&b, "- Popular routes: %s\n", formatEntries(stats.TopRoutes))
	fmt.Fprintf(&b, "- Popular airlines: %s\n", formatEntries(stats.TopAirlines))
	if stats.HasWeekendRatio {
		fmt.Fprintf(&b, "- Weekend flights: %.0f%%\n", stats.WeekendRatio*100)
	}
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Key market trends\n")
	b.WriteString("2. Pricing insights\n")
	b.WriteString("3. Demand patterns\n")
	b.WriteString("4. Strategic recommendations\n")
	b.WriteString("5. Risk factors to consider\n\n")
	b.WriteString("Format as JSON with sections: trends, pricing, demand, recommendations, risks")
	return b.String()
}

func formatEntries(entries []aggregate.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%.0f)", e.Key, e.Value)
	}
	return strings.Join(parts, ", ")
}

// batchStats are the figures the prompt and the offline narrative share.
type batchStats struct {
	TotalFlights    int
	AvgPrice        float64
	MinPrice        float64
	MaxPrice        float64
	DataPeriod      string
	TopRoutes       []aggregate.Entry
	TopAirlines     []aggregate.Entry
	WeekendRatio    float64
	HasWeekendRatio bool
}

func summarize(flights []domain.Flight) batchStats {
	stats := batchStats{TotalFlights: len(flights)}
	if len(flights) == 0 {
		// Defaults keep the offline narrative coherent with no data.
		stats.AvgPrice = 350
		stats.MinPrice = 200
		stats.MaxPrice = 800
		return stats
	}

	prices := make([]float64, len(flights))
	stats.MinPrice, stats.MaxPrice = flights[0].Price, flights[0].Price
	for i, f := range flights {
		prices[i] = f.Price
		if f.Price < stats.MinPrice {
			stats.MinPrice = f.Price
		}
		if f.Price > stats.MaxPrice {
			stats.MaxPrice = f.Price
		}
	}
	stats.AvgPrice = stat.Mean(prices, nil)

	stats.TopRoutes = aggregate.TopN(aggregate.GroupReduce(flights, routeKey, nil, aggregate.Count), 3)
	stats.TopAirlines = aggregate.TopN(aggregate.GroupReduce(flights, airlineKey, nil, aggregate.Count), 3)

	weekend, dated := 0, 0
	var first, last string
	for _, f := range flights {
		if !f.HasDate() {
			continue
		}
		dated++
		if f.IsWeekend {
			weekend++
		}
		d := f.Date.Format("2006-01-02")
		if first == "" || d < first {
			first = d
		}
		if d > last {
			last = d
		}
	}
	if dated > 0 {
		stats.WeekendRatio = float64(weekend) / float64(dated)
		stats.HasWeekendRatio = true
		stats.DataPeriod = first + " to " + last
	}

	return stats
}

func routeKey(f domain.Flight) (string, bool) {
	if f.Route == "" {
		return "", false
	}
	return f.Route, true
}

func airlineKey(f domain.Flight) (string, bool) {
	if f.Airline == "" {
		return "", false
	}
	return f.Airline, true
}
