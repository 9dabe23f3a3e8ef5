package providers

import (
	"context"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
)

// GameMetadataProvider is the low-level contract against the external
// game metadata service (BGG-style XML API).
type GameMetadataProvider interface {
	// Search performs a single search call. exact requests the upstream
	// exact-match mode; the flexible mode otherwise.
	Search(ctx context.Context, query string, exact bool) ([]entities.SearchResult, error)

	// GetGameInfo fetches the full detail record for a game id.
	GetGameInfo(ctx context.Context, id int) (*entities.GameDetail, error)
}

// GameSearchGateway resolves a human-entered game name into ranked,
// deduplicated candidates via a multi-pattern parallel search.
type GameSearchGateway interface {
	SearchGame(ctx context.Context, name string) ([]entities.SearchResult, error)
	GetGameInfo(ctx context.Context, id int) (*entities.GameDetail, error)
}
