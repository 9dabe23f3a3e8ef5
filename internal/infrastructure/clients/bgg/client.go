package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
	"github.com/meeplechat/boardgame-rules-assistant/backend/pkg/config"
	apperrors "github.com/meeplechat/boardgame-rules-assistant/backend/pkg/errors"
	"github.com/meeplechat/boardgame-rules-assistant/backend/pkg/retry"
)

const defaultBaseURL = "https://boardgamegeek.com/xmlapi2"

// Client talks to the BGG-style XML metadata API. Search calls are single
// attempts (the gateway fan-out tolerates partial failure); detail calls
// are sequential and carry min inter-call spacing, retry with backoff,
// and a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
	breaker    *gobreaker.CircuitBreaker

	mu         sync.Mutex
	minSpacing time.Duration
	lastCall   time.Time
}

// NewClient creates a new metadata API client.
func NewClient(cfg *config.BGGConfig) *Client {
	baseURL := defaultBaseURL
	timeout := 8 * time.Second
	minSpacing := time.Second
	retryCfg := retry.DefaultConfig()

	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.SearchTimeout > 0 {
			timeout = cfg.SearchTimeout
		}
		if cfg.MinCallSpacing > 0 {
			minSpacing = cfg.MinCallSpacing
		}
		if cfg.MaxRetries > 0 {
			retryCfg.MaxAttempts = cfg.MaxRetries
		}
		if cfg.RetryBaseDelay > 0 {
			retryCfg.InitialDelay = cfg.RetryBaseDelay
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "bgg-detail",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryCfg:   retryCfg,
		breaker:    breaker,
		minSpacing: minSpacing,
	}
}

// Search performs a single search call against the upstream API.
func (c *Client) Search(ctx context.Context, query string, exact bool) ([]entities.SearchResult, error) {
	parsed, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, apperrors.NewInternalError("invalid search url", err)
	}

	q := parsed.Query()
	q.Set("query", query)
	q.Set("type", "boardgame")
	if exact {
		q.Set("exact", "1")
	}
	parsed.RawQuery = q.Encode()

	body, err := c.doGet(ctx, "search", parsed.String())
	if err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewParsingError("malformed search response", err)
	}

	results := make([]entities.SearchResult, 0, len(envelope.Items))
	for _, item := range envelope.Items {
		if item.ID == 0 || item.Name.Value == "" {
			continue
		}
		results = append(results, entities.SearchResult{
			ExternalID:    item.ID,
			Name:          item.Name.Value,
			YearPublished: item.YearPublished.Value,
		})
	}
	return results, nil
}

// GetGameInfo fetches the full detail record for a game id. Calls are
// spaced at least minSpacing apart and retried with exponential backoff
// on transient failures.
func (c *Client) GetGameInfo(ctx context.Context, id int) (*entities.GameDetail, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("game id must be positive")
	}

	log := observability.LoggerFromContext(ctx)

	var detail *entities.GameDetail
	err := retry.DoWithLog(ctx, c.retryCfg, "bgg", func() error {
		if err := c.waitForSpacing(ctx); err != nil {
			return apperrors.NewNetworkError("call spacing interrupted", err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchGameInfo(ctx, id)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return apperrors.NewNetworkError("metadata service circuit open", err)
			}
			return err
		}
		detail = result.(*entities.GameDetail)
		return nil
	}, apperrors.IsRetryable, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("game_id", id).
			Dur("backoff", nextDelay).
			Msg("detail fetch failed, retrying")
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (c *Client) fetchGameInfo(ctx context.Context, id int) (*entities.GameDetail, error) {
	endpoint := fmt.Sprintf("%s/thing?id=%d&stats=1", c.baseURL, id)

	body, err := c.doGet(ctx, "thing", endpoint)
	if err != nil {
		return nil, err
	}

	var envelope thingEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewParsingError("malformed detail response", err)
	}
	if len(envelope.Items) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("game %d not found", id))
	}

	item := envelope.Items[0]
	detail := &entities.GameDetail{
		ExternalID:    item.ID,
		Name:          item.primaryName(),
		Description:   strings.TrimSpace(item.Description),
		YearPublished: item.YearPublished.Value,
		MinPlayers:    item.MinPlayers.Value,
		MaxPlayers:    item.MaxPlayers.Value,
		PlayingTime:   item.PlayingTime.Value,
		MinAge:        item.MinAge.Value,
	}
	if item.Statistics != nil {
		detail.AverageRating = item.Statistics.Ratings.Average.Value
		detail.UsersRated = item.Statistics.Ratings.UsersRated.Value
	}
	for _, link := range item.Links {
		switch link.Type {
		case "boardgamecategory":
			detail.Categories = append(detail.Categories, link.Value)
		case "boardgamemechanic":
			detail.Mechanics = append(detail.Mechanics, link.Value)
		}
	}
	return detail, nil
}

// doGet issues the request and classifies transport and status failures.
func (c *Client) doGet(ctx context.Context, operation, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build request", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordUpstreamMetric(ctx, operation, 0, time.Since(start), err)
		return nil, apperrors.NewNetworkError("metadata request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		recordUpstreamMetric(ctx, operation, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return nil, apperrors.NewRateLimitError("metadata service rate limit exceeded")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordUpstreamMetric(ctx, operation, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return nil, apperrors.NewAPIError(fmt.Sprintf("metadata service returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordUpstreamMetric(ctx, operation, resp.StatusCode, time.Since(start), err)
		return nil, apperrors.NewNetworkError("failed to read response body", err)
	}

	recordUpstreamMetric(ctx, operation, resp.StatusCode, time.Since(start), nil)
	return body, nil
}

func (c *Client) waitForSpacing(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.minSpacing - now.Sub(c.lastCall)
	if c.lastCall.IsZero() || wait <= 0 {
		c.lastCall = now
		c.mu.Unlock()
		return nil
	}
	// Reserve the slot before sleeping so concurrent callers queue up
	// behind each other instead of all waiting for the same instant.
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

type bggMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var (
	bggMetricsOnce  sync.Once
	bggMetricsState *bggMetrics
)

// bggMetricsInstance lazily registers the instruments. Search calls are
// fanned out concurrently, so initialization must be race-free; a nil
// return means registration failed and recording is skipped.
func bggMetricsInstance() *bggMetrics {
	bggMetricsOnce.Do(initBGGMetrics)
	return bggMetricsState
}

func initBGGMetrics() {
	meter := otel.Meter("github.com/meeplechat/boardgame-rules-assistant/backend/bgg")

	requestCount, err := meter.Int64Counter(
		"bgg.request.count",
		metric.WithDescription("Number of metadata API requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"bgg.request.duration",
		metric.WithDescription("Metadata API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"bgg.request.errors",
		metric.WithDescription("Number of metadata API request errors"),
	)
	if err != nil {
		return
	}

	bggMetricsState = &bggMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
}

func recordUpstreamMetric(ctx context.Context, operation string, statusCode int, duration time.Duration, err error) {
	m := bggMetricsInstance()
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("bgg.operation", operation),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	m.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
