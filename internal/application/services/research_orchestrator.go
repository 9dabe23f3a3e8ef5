package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/providers"
	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/infrastructure/observability"
)

const sourceURLFormat = "https://boardgamegeek.com/boardgame/%d"

// ProgressFunc receives coarse stage transitions while a question is
// being answered.
type ProgressFunc func(stage entities.ResearchStage)

// AskOptions carries the optional per-request knobs of the ask contract.
type AskOptions struct {
	// OnResearchStart fires at most once, exactly when network research
	// begins (post-decision, pre-network). A cache hit does not fire it.
	OnResearchStart func()

	// OnProgress reports stage transitions: analyzing, searching,
	// processing, completed.
	OnProgress ProgressFunc

	// UseV2Analysis selects the extended complexity heuristics.
	UseV2Analysis bool
}

// ResearchOrchestrator decides whether a question needs external
// research, consults the cache and limiter, runs the gateway on a miss,
// and composes the enriched prompt for the answer provider. A research
// failure never fails the question; it degrades to the general-knowledge
// path.
type ResearchOrchestrator struct {
	analyzer   *ComplexityAnalyzer
	limiter    *ResearchLimiter
	cache      providers.ResearchCacheProvider
	gateway    providers.GameSearchGateway
	answers    providers.AnswerProvider
	metrics    *observability.Metrics
	cacheTTL   time.Duration
	maxSources int
}

// OrchestratorOption configures a ResearchOrchestrator.
type OrchestratorOption func(*ResearchOrchestrator)

// WithOrchestratorMetrics attaches application metrics.
func WithOrchestratorMetrics(m *observability.Metrics) OrchestratorOption {
	return func(o *ResearchOrchestrator) {
		o.metrics = m
	}
}

// WithCacheTTL overrides the TTL used when storing research results.
func WithCacheTTL(ttl time.Duration) OrchestratorOption {
	return func(o *ResearchOrchestrator) {
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithMaxSources caps the source list included in prompts and responses.
func WithMaxSources(n int) OrchestratorOption {
	return func(o *ResearchOrchestrator) {
		if n > 0 {
			o.maxSources = n
		}
	}
}

// NewResearchOrchestrator wires the orchestrator from its collaborators.
func NewResearchOrchestrator(
	analyzer *ComplexityAnalyzer,
	limiter *ResearchLimiter,
	cache providers.ResearchCacheProvider,
	gateway providers.GameSearchGateway,
	answers providers.AnswerProvider,
	opts ...OrchestratorOption,
) *ResearchOrchestrator {
	o := &ResearchOrchestrator{
		analyzer:   analyzer,
		limiter:    limiter,
		cache:      cache,
		gateway:    gateway,
		answers:    answers,
		cacheTTL:   24 * time.Hour,
		maxSources: 5,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AskGameQuestion answers a rules question, researching externally when
// the complexity heuristic (or the force directive) and the limiter
// allow it.
func (o *ResearchOrchestrator) AskGameQuestion(ctx context.Context, gameTitle, question string, opts *AskOptions) (*entities.AskResponse, error) {
	if opts == nil {
		opts = &AskOptions{}
	}
	log := observability.LoggerFromContext(ctx)

	progress(opts, entities.StageAnalyzing)

	stripped, forced := StripForceDirective(question)
	question = stripped

	// Record before checking so a burst of identical requests cannot
	// each pass the quota check.
	o.limiter.RecordQuestionAsked()

	var score *entities.ComplexityScore
	var shouldResearch bool
	if forced {
		shouldResearch = o.limiter.CanPerformResearch()
		log.Debug().Bool("allowed", shouldResearch).Msg("force-research directive present, skipping scoring")
	} else {
		if opts.UseV2Analysis {
			score = o.analyzer.AnalyzeV2(question, gameTitle)
		} else {
			score = o.analyzer.Analyze(question, gameTitle)
		}
		shouldResearch = score.ShouldTriggerResearch && o.limiter.CanPerformResearch()
	}

	var research *entities.ResearchResult
	fromCache := false
	if shouldResearch {
		if cached, ok := o.cache.Get(gameTitle, question); ok {
			research = cached
			fromCache = true
			if o.metrics != nil {
				observability.RecordCacheHit(ctx, o.metrics)
			}
			log.Debug().Str("game", gameTitle).Msg("research cache hit")
		} else {
			if o.metrics != nil {
				observability.RecordCacheMiss(ctx, o.metrics)
			}
			if opts.OnResearchStart != nil {
				opts.OnResearchStart()
			}
			progress(opts, entities.StageSearching)

			result, err := o.performResearch(ctx, gameTitle)
			if err != nil {
				// Degrade silently: the user still gets an answer, just
				// without research attribution.
				log.Warn().Err(err).Str("game", gameTitle).Msg("research failed, answering without it")
			} else {
				research = result
				o.cache.Set(gameTitle, question, result, o.cacheTTL)
			}
		}
	}

	if o.metrics != nil {
		if research != nil {
			o.metrics.ResearchTriggered.Add(ctx, 1)
		} else {
			o.metrics.ResearchSkipped.Add(ctx, 1)
		}
	}

	progress(opts, entities.StageProcessing)

	prompt := o.composePrompt(question, research)
	answer, err := o.answers.AskGameQuestion(ctx, gameTitle, prompt)
	if err != nil {
		return nil, err
	}

	progress(opts, entities.StageCompleted)

	resp := &entities.AskResponse{
		Answer:       answer,
		ResearchUsed: research != nil,
		FromCache:    fromCache,
		Complexity:   score,
	}
	if research != nil {
		resp.Sources = capSources(research.Sources, o.maxSources)
	}
	return resp, nil
}

// performResearch runs the multi-pattern search and enriches the best
// match with its detail record. A detail failure degrades to the
// search-only summary rather than failing the research.
func (o *ResearchOrchestrator) performResearch(ctx context.Context, gameTitle string) (*entities.ResearchResult, error) {
	log := observability.LoggerFromContext(ctx)

	results, err := o.gateway.SearchGame(ctx, gameTitle)
	if err != nil {
		return nil, err
	}

	result := &entities.ResearchResult{
		CreatedAt: time.Now(),
		Sources:   make([]string, 0, len(results)),
	}
	for _, r := range results {
		result.Sources = append(result.Sources, fmt.Sprintf(sourceURLFormat, r.ExternalID))
	}

	if len(results) == 0 {
		result.Summary = fmt.Sprintf("No catalog entry found for %q in the game metadata service.", gameTitle)
		return result, nil
	}

	var detail *entities.GameDetail
	detail, err = o.gateway.GetGameInfo(ctx, results[0].ExternalID)
	if err != nil {
		log.Debug().Err(err).Int("id", results[0].ExternalID).Msg("detail fetch failed, using search results only")
		detail = nil
	}

	result.Summary = buildSummary(gameTitle, results, detail)
	return result, nil
}

func buildSummary(gameTitle string, results []entities.SearchResult, detail *entities.GameDetail) string {
	var b strings.Builder

	top := results[0]
	fmt.Fprintf(&b, "Catalog match for %q: %s", gameTitle, top.Name)
	if top.YearPublished != 0 {
		fmt.Fprintf(&b, " (%d)", top.YearPublished)
	}
	b.WriteString(".")

	if detail != nil {
		if detail.MinPlayers > 0 && detail.MaxPlayers > 0 {
			fmt.Fprintf(&b, " %d-%d players.", detail.MinPlayers, detail.MaxPlayers)
		}
		if detail.PlayingTime > 0 {
			fmt.Fprintf(&b, " Playing time about %d minutes.", detail.PlayingTime)
		}
		if detail.AverageRating > 0 {
			fmt.Fprintf(&b, " Community rating %.1f from %d ratings.", detail.AverageRating, detail.UsersRated)
		}
		if len(detail.Categories) > 0 {
			fmt.Fprintf(&b, " Categories: %s.", strings.Join(detail.Categories, ", "))
		}
		if len(detail.Mechanics) > 0 {
			fmt.Fprintf(&b, " Mechanics: %s.", strings.Join(detail.Mechanics, ", "))
		}
	}

	if len(results) > 1 {
		other := make([]string, 0, len(results)-1)
		for _, r := range results[1:] {
			other = append(other, r.Name)
		}
		fmt.Fprintf(&b, " Other candidates: %s.", strings.Join(other, ", "))
	}

	return b.String()
}

func (o *ResearchOrchestrator) composePrompt(question string, research *entities.ResearchResult) string {
	var b strings.Builder

	if research != nil {
		b.WriteString("Use the following researched game information when it is relevant, and attribute facts drawn from it to the listed sources.\n\n")
		b.WriteString("Research summary:\n")
		b.WriteString(research.Summary)
		b.WriteString("\n")
		sources := capSources(research.Sources, o.maxSources)
		if len(sources) > 0 {
			b.WriteString("\nSources:\n")
			for _, s := range sources {
				b.WriteString("- ")
				b.WriteString(s)
				b.WriteString("\n")
			}
		}
		b.WriteString("\nQuestion: ")
	} else {
		b.WriteString("Answer from your general knowledge of the game's published rules.\n\nQuestion: ")
	}

	b.WriteString(question)
	return b.String()
}

func capSources(sources []string, max int) []string {
	if len(sources) <= max {
		return sources
	}
	return sources[:max]
}

func progress(opts *AskOptions, stage entities.ResearchStage) {
	if opts.OnProgress != nil {
		opts.OnProgress(stage)
	}
}
