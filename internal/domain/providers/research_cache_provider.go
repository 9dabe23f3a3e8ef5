package providers

import (
	"time"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
)

// ResearchCacheProvider memoizes research results by a normalized
// (gameTitle, question) fingerprint. Expired entries must never be
// returned as hits.
type ResearchCacheProvider interface {
	// Get returns a non-expired entry for the fingerprint, or ok=false.
	Get(gameTitle, question string) (*entities.ResearchResult, bool)

	// Set stores or overwrites the entry with the given time-to-live.
	Set(gameTitle, question string, result *entities.ResearchResult, ttl time.Duration)
}
