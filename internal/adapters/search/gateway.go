package search

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/providers"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
	apperrors "github.com/meeplechat/boardgame-rules-assistant/backend/pkg/errors"
)

const (
	defaultCallTimeout = 8 * time.Second
	maxDispatchJitter  = 500 * time.Millisecond
	maxRankedResults   = 10
)

// Gateway resolves a human-entered game name into ranked candidates by
// fanning pattern-variant searches out against the metadata service.
// Individual pattern failures never fail the batch.
type Gateway struct {
	client      providers.GameMetadataProvider
	patterns    *PatternGenerator
	callTimeout time.Duration
	maxResults  int
	metrics     *observability.Metrics
}

var _ providers.GameSearchGateway = (*Gateway)(nil)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithCallTimeout overrides the per-pattern call timeout.
func WithCallTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.callTimeout = d
		}
	}
}

// WithMaxResults overrides the ranked-result cap.
func WithMaxResults(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.maxResults = n
		}
	}
}

// WithMetrics attaches application metrics to the gateway.
func WithMetrics(m *observability.Metrics) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// NewGateway creates a gateway over the given metadata client.
func NewGateway(client providers.GameMetadataProvider, patterns *PatternGenerator, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:      client,
		patterns:    patterns,
		callTimeout: defaultCallTimeout,
		maxResults:  maxRankedResults,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// patternCall is a single dispatched search: one pattern in one upstream
// request mode.
type patternCall struct {
	pattern string
	exact   bool
}

// callOutcome is the settled result of one pattern call.
type callOutcome struct {
	call    patternCall
	results []entities.SearchResult
	err     error
}

// SearchGame generates pattern variants for name, searches them all
// concurrently with settle-all semantics, then merges, deduplicates and
// ranks the successful results against the original name.
func (g *Gateway) SearchGame(ctx context.Context, name string) ([]entities.SearchResult, error) {
	log := observability.LoggerFromContext(ctx)

	patterns := g.patterns.Generate(name)
	if len(patterns) == 0 {
		return nil, apperrors.NewValidationError("game name is empty")
	}

	calls := make([]patternCall, 0, len(patterns)*2)
	for _, p := range patterns {
		calls = append(calls, patternCall{pattern: p, exact: true})
		calls = append(calls, patternCall{pattern: p, exact: false})
	}

	if g.metrics != nil {
		g.metrics.SearchFanoutSize.Record(ctx, int64(len(calls)))
	}
	log.Debug().
		Str("game", name).
		Int("patterns", len(patterns)).
		Int("calls", len(calls)).
		Msg("dispatching pattern fan-out")

	outcomes := g.executeParallelSearch(ctx, calls)

	var merged []entities.SearchResult
	failed := 0
	for _, outcome := range outcomes {
		if outcome.err != nil {
			failed++
			log.Debug().
				Err(outcome.err).
				Str("pattern", outcome.call.pattern).
				Bool("exact", outcome.call.exact).
				Msg("pattern search failed, skipping")
			continue
		}
		merged = append(merged, outcome.results...)
	}

	if failed > 0 {
		log.Info().
			Int("failed", failed).
			Int("total", len(outcomes)).
			Str("game", name).
			Msg("partial pattern fan-out failure")
	}

	return rankAndDeduplicate(merged, name, g.maxResults), nil
}

// executeParallelSearch starts every call before awaiting any, then joins
// them all. A failing call only loses its own slot in the outcome list.
func (g *Gateway) executeParallelSearch(ctx context.Context, calls []patternCall) []callOutcome {
	outcomes := make([]callOutcome, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call patternCall) {
			defer wg.Done()
			outcomes[i] = g.runCall(ctx, call)
		}(i, call)
	}
	wg.Wait()

	return outcomes
}

func (g *Gateway) runCall(ctx context.Context, call patternCall) callOutcome {
	// Jitter the dispatch so a large fan-out does not hammer the
	// upstream service in a single burst.
	jitter := time.Duration(rand.Int63n(int64(maxDispatchJitter)))
	select {
	case <-ctx.Done():
		return callOutcome{call: call, err: apperrors.NewNetworkError("search cancelled", ctx.Err())}
	case <-time.After(jitter):
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	results, err := g.client.Search(callCtx, call.pattern, call.exact)
	if err != nil {
		return callOutcome{call: call, err: err}
	}
	return callOutcome{call: call, results: results}
}

// GetGameInfo fetches the full detail record for a game id.
func (g *Gateway) GetGameInfo(ctx context.Context, id int) (*entities.GameDetail, error) {
	return g.client.GetGameInfo(ctx, id)
}
