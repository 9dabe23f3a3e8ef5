package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/meeplechat/boardgame-rules-assistant/backend/internal/domain/entities"
)

const (
	scoreExactMatch  = 100.0
	scorePrefixMatch = 80.0
	scoreSubstring   = 60.0
	scoreWordOverlap = 40.0

	// Results whose name is less similar than this to the original query
	// are dropped outright.
	similarityFloor = 0.3
)

type scoredResult struct {
	result entities.SearchResult
	score  float64
}

// rankAndDeduplicate merges pattern results into a single ranked list:
// duplicates collapse by external id (first occurrence wins), each result
// gets a relevance score against the original query, near-miss names
// below the similarity floor are excluded, and the list is capped. The
// transient score never leaves this function.
func rankAndDeduplicate(results []entities.SearchResult, originalQuery string, maxResults int) []entities.SearchResult {
	if len(results) == 0 {
		return nil
	}

	query := strings.ToLower(strings.TrimSpace(originalQuery))

	seen := make(map[int]struct{}, len(results))
	scored := make([]scoredResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.ExternalID]; ok {
			continue
		}
		seen[r.ExternalID] = struct{}{}

		score, keep := relevanceScore(strings.ToLower(r.Name), query)
		if !keep {
			continue
		}
		scored = append(scored, scoredResult{result: r, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		// Ties prefer the shorter name, then a known publication year.
		li, lj := len(scored[i].result.Name), len(scored[j].result.Name)
		if li != lj {
			return li < lj
		}
		return scored[i].result.YearPublished != 0 && scored[j].result.YearPublished == 0
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	ranked := make([]entities.SearchResult, len(scored))
	for i, s := range scored {
		ranked[i] = s.result
	}
	return ranked
}

// relevanceScore scores a lowercased candidate name against the
// lowercased query. keep=false means the candidate is too dissimilar to
// appear at all.
func relevanceScore(name, query string) (float64, bool) {
	if name == "" || query == "" {
		return 0, false
	}

	if name == query {
		return scoreExactMatch, true
	}
	if strings.HasPrefix(name, query) {
		return scorePrefixMatch, true
	}
	if strings.Contains(name, query) {
		return scoreSubstring, true
	}

	if similarity(name, query) < similarityFloor {
		return 0, false
	}

	queryWords := strings.Fields(query)
	if len(queryWords) == 0 {
		return 0, false
	}
	matched := 0
	for _, w := range queryWords {
		if strings.Contains(name, w) {
			matched++
		}
	}
	if matched == 0 {
		return 0, false
	}
	return scoreWordOverlap * float64(matched) / float64(len(queryWords)), true
}

// similarity is the normalized edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
