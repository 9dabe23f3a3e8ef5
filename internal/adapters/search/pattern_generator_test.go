package search

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_EmptyNameYieldsNoPatterns(t *testing.T) {
	g := NewPatternGenerator()

	assert.Empty(t, g.Generate(""))
	assert.Empty(t, g.Generate("   "))
}

func TestGenerate_ContainsNoDuplicates(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Ark Nova")

	seen := make(map[string]struct{})
	for _, p := range patterns {
		_, dup := seen[p]
		assert.False(t, dup, "duplicate pattern %q", p)
		seen[p] = struct{}{}
	}
}

func TestGenerate_OriginalComesFirst(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Ark Nova")

	require.NotEmpty(t, patterns)
	assert.Equal(t, "Ark Nova", patterns[0])
}

func TestGenerate_SpacingAndCaseVariants(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Ark Nova")

	assert.Contains(t, patterns, "ArkNova")
	assert.Contains(t, patterns, "Ark-Nova")
	assert.Contains(t, patterns, "ARK NOVA")
	assert.Contains(t, patterns, "ark nova")
}

func TestGenerate_KoreanNameIncludesTranslationAndSpacedVariant(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("스위트랜드")

	assert.Contains(t, patterns, "Sweet Land")
	assert.Contains(t, patterns, "스위트 랜드")
}

func TestGenerate_KnownSuffixSwap(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Sweet Lands")
	assert.Contains(t, patterns, "Sweet Land")

	patterns = g.Generate("Sweet Land")
	assert.Contains(t, patterns, "Sweet Lands")
}

func TestGenerate_GenericPluralization(t *testing.T) {
	g := NewPatternGenerator()

	assert.Contains(t, g.Generate("Wingspan"), "Wingspans")
	assert.Contains(t, g.Generate("Mysteries"), "Mystery")
	assert.Contains(t, g.Generate("Colony"), "Colonies")
}

func TestGenerate_LongNamesGetKeywordVariants(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Terraforming Mars Ares Expedition")

	assert.Contains(t, patterns, "Terrafor", "leading prefix keyword")
	assert.Contains(t, patterns, "Terraforming")
	assert.Contains(t, patterns, "Mars")
	assert.Contains(t, patterns, "Ares")
	assert.Contains(t, patterns, "Expedition")
}

func TestGenerate_ShortNamesGetNoKeywordVariants(t *testing.T) {
	g := NewPatternGenerator()

	patterns := g.Generate("Azul")

	assert.NotContains(t, patterns, "Azu")
}

func TestNewPatternGeneratorFromFile_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	data, err := json.Marshal(map[string][]string{
		"다빈치코드": {"Davinci Code Custom"},
		"새게임":   {"New Game"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	g, err := NewPatternGeneratorFromFile(path)
	require.NoError(t, err)

	assert.Contains(t, g.Generate("새게임"), "New Game")
	assert.Contains(t, g.Generate("다빈치코드"), "Davinci Code Custom")
	// untouched defaults survive the merge
	assert.Contains(t, g.Generate("스위트랜드"), "Sweet Land")
}

func TestNewPatternGeneratorFromFile_MissingFile(t *testing.T) {
	_, err := NewPatternGeneratorFromFile("/nonexistent/translations.json")
	assert.Error(t, err)
}
