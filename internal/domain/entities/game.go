package entities

// SearchResult is a single candidate game returned by the external
// metadata service. Relevance scoring during ranking is transient and
// never leaves the gateway.
type SearchResult struct {
	ExternalID    int    `json:"externalId"`
	Name          string `json:"name"`
	YearPublished int    `json:"yearPublished,omitempty"`
}

// GameDetail is the full external-service record for a game. It is not
// derivable from SearchResult; it requires a separate detail call.
type GameDetail struct {
	ExternalID    int      `json:"externalId"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	YearPublished int      `json:"yearPublished,omitempty"`
	MinPlayers    int      `json:"minPlayers,omitempty"`
	MaxPlayers    int      `json:"maxPlayers,omitempty"`
	PlayingTime   int      `json:"playingTimeMinutes,omitempty"`
	MinAge        int      `json:"minAge,omitempty"`
	AverageRating float64  `json:"averageRating,omitempty"`
	UsersRated    int      `json:"usersRated,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Mechanics     []string `json:"mechanics,omitempty"`
}
