package search

import (
	"encoding/json"
	"os"
	"strings"
)

const (
	// Names longer than this also get keyword sub-patterns.
	keywordLengthThreshold = 10
	keywordPrefixLength    = 8
	minKeywordWordLength   = 3
)

// defaultTranslations maps non-English game names (as players type them)
// to upstream-searchable variants: English titles and respaced forms.
var defaultTranslations = map[string][]string{
	"스위트랜드":  {"Sweet Land", "스위트 랜드"},
	"아크노바":   {"Ark Nova", "아크 노바"},
	"윙스팬":    {"Wingspan"},
	"카탄":     {"Catan", "The Settlers of Catan"},
	"글룸헤이븐":  {"Gloomhaven"},
	"테라포밍마스": {"Terraforming Mars", "테라포밍 마스"},
	"스플렌더":   {"Splendor"},
	"아그리콜라":  {"Agricola"},
	"도미니언":   {"Dominion"},
	"카르카손":   {"Carcassonne"},
	"팬데믹":    {"Pandemic"},
	"아줄":     {"Azul"},
	"티츄":     {"Tichu"},
	"루미큐브":   {"Rummikub"},
	"다빈치코드":  {"The Da Vinci Code", "다빈치 코드"},
	"부루마불":   {"Blue Marble"},
	"할리갈리":   {"Halli Galli"},
	"뱅":      {"Bang!"},
	"시타델":    {"Citadels"},
	"스컬킹":    {"Skull King"},
	"보난자":    {"Bohnanza"},
	"세븐원더스":  {"7 Wonders", "세븐 원더스"},
	"킹오브도쿄":  {"King of Tokyo", "킹 오브 도쿄"},
	"티켓투라이드": {"Ticket to Ride", "티켓 투 라이드"},
	"딕싯":     {"Dixit"},
	"코드네임":   {"Codenames"},
	"러브레터":   {"Love Letter", "러브 레터"},
	"스파이폴":   {"Spyfall"},
	"어콰이어":   {"Acquire"},
}

// PatternGenerator derives the set of query strings dispatched for a
// single game-name search: translations, spacing, pluralization, casing
// and keyword variants, deduplicated in insertion order.
type PatternGenerator struct {
	translations map[string][]string
}

// NewPatternGenerator creates a generator with the built-in translation
// dictionary.
func NewPatternGenerator() *PatternGenerator {
	return &PatternGenerator{translations: defaultTranslations}
}

// NewPatternGeneratorFromFile creates a generator whose translation
// dictionary is loaded from a JSON file of the shape {"name": ["variant"]}.
// Entries merge over the built-in dictionary.
func NewPatternGeneratorFromFile(path string) (*PatternGenerator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	merged := make(map[string][]string, len(defaultTranslations)+len(raw))
	for k, v := range defaultTranslations {
		merged[k] = v
	}
	for k, v := range raw {
		merged[strings.TrimSpace(k)] = v
	}
	return &PatternGenerator{translations: merged}, nil
}

// Generate produces the deduplicated search patterns for a game name.
// An empty or whitespace-only name yields no patterns.
func (g *PatternGenerator) Generate(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var patterns []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}

	add(trimmed)

	for _, translated := range g.lookupTranslations(trimmed) {
		add(translated)
	}

	if strings.Contains(trimmed, " ") {
		add(strings.ReplaceAll(trimmed, " ", ""))
		add(strings.ReplaceAll(trimmed, " ", "-"))
	}

	for _, variant := range pluralVariants(trimmed) {
		add(variant)
	}

	add(strings.ToUpper(trimmed))
	add(strings.ToLower(trimmed))

	if len([]rune(trimmed)) > keywordLengthThreshold {
		runes := []rune(trimmed)
		if len(runes) > keywordPrefixLength {
			add(string(runes[:keywordPrefixLength]))
		}
		for _, word := range strings.Fields(trimmed) {
			if len([]rune(word)) >= minKeywordWordLength {
				add(word)
			}
		}
	}

	return patterns
}

func (g *PatternGenerator) lookupTranslations(name string) []string {
	if v, ok := g.translations[name]; ok {
		return v
	}
	// dictionary keys are stored without internal spaces for Korean titles
	compact := strings.ReplaceAll(name, " ", "")
	if v, ok := g.translations[compact]; ok {
		return v
	}
	if v, ok := g.translations[strings.ToLower(name)]; ok {
		return v
	}
	return nil
}

// knownSuffixSwaps covers word endings the upstream catalog is known to
// vary on; generic English pluralization handles the rest.
var knownSuffixSwaps = [][2]string{
	{"lands", "land"},
	{"land", "lands"},
	{"games", "game"},
	{"game", "games"},
	{"cards", "card"},
	{"card", "cards"},
}

func pluralVariants(name string) []string {
	lower := strings.ToLower(name)
	var variants []string

	for _, swap := range knownSuffixSwaps {
		if strings.HasSuffix(lower, swap[0]) {
			variants = append(variants, name[:len(name)-len(swap[0])]+swap[1])
		}
	}
	if len(variants) > 0 {
		return variants
	}

	// Only sensible for ASCII names; leave non-Latin scripts alone.
	if !isASCII(name) {
		return nil
	}

	switch {
	case strings.HasSuffix(lower, "ies"):
		variants = append(variants, name[:len(name)-3]+"y")
	case strings.HasSuffix(lower, "es"):
		variants = append(variants, name[:len(name)-2])
	case strings.HasSuffix(lower, "s"):
		variants = append(variants, name[:len(name)-1])
	case strings.HasSuffix(lower, "y"):
		variants = append(variants, name[:len(name)-1]+"ies")
	default:
		variants = append(variants, name+"s", name+"es")
	}
	return variants
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
