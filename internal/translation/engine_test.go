package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase and trim",
			input:    "  Anasü  ",
			expected: "anasü",
		},
		{
			name:     "strip punctuation",
			input:    "¿Kasa pünülia?",
			expected: "kasa pünülia",
		},
		{
			name:     "collapse internal whitespace",
			input:    "buenos   días,  amigo",
			expected: "buenos días amigo",
		},
		{
			name:     "only punctuation",
			input:    "...!?",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{
			name:     "identical strings",
			a:        "wayuu",
			b:        "wayuu",
			expected: 0,
		},
		{
			name:     "single substitution",
			a:        "anasü",
			b:        "anasu",
			expected: 1,
		},
		{
			name:     "insertion and deletion",
			a:        "kasa",
			b:        "kasaa",
			expected: 1,
		},
		{
			name:     "empty against word",
			a:        "",
			b:        "süi",
			expected: 3,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 0,
		},
		{
			name:     "completely different",
			a:        "abc",
			b:        "xyz",
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	// (6-1)/6 for two six-rune words one substitution apart.
	assert.InDelta(t, 5.0/6.0, Similarity("anasüü", "anasuü"), 1e-9)
	// Two empty strings are identical.
	assert.Equal(t, 1.0, Similarity("", ""))
	// Strictly decreasing as edit distance grows.
	assert.Greater(t, Similarity("wayuu", "wayux"), Similarity("wayuu", "wayxx"))
}

func TestEngine_FindExact(t *testing.T) {
	entries := []DictionaryEntry{
		{GucWord: "aa", SpaWord: "sí"},
		{GucWord: "anasü", SpaWord: "bueno"},
		{GucWord: "anasü", SpaWord: "bonito"},
		{GucWord: "wüin", SpaWord: "agua dulce"},
	}
	engine := NewEngine("wayuu-spanish-dictionary")

	tests := []struct {
		name                 string
		query                string
		direction            Direction
		expectedText         string
		expectedAlternatives []string
		expectedContextInfo  string
		expectNoMatch        bool
	}{
		{
			name:         "punctuated query normalizes to exact match",
			query:        "Aa.",
			direction:    DirectionWayuuToSpanish,
			expectedText: "sí",
		},
		{
			name:                 "duplicate source words become alternatives",
			query:                "anasü",
			direction:            DirectionWayuuToSpanish,
			expectedText:         "bueno",
			expectedAlternatives: []string{"bonito"},
			expectedContextInfo:  "1 alternative translations found",
		},
		{
			name:         "spanish word inside multi-word gloss",
			query:        "agua",
			direction:    DirectionSpanishToWayuu,
			expectedText: "wüin",
		},
		{
			name:         "spanish substring match",
			query:        "dulce",
			direction:    DirectionSpanishToWayuu,
			expectedText: "wüin",
		},
		{
			name:          "no match in wayuu direction",
			query:         "zzz",
			direction:     DirectionWayuuToSpanish,
			expectNoMatch: true,
		},
		{
			name:          "empty query",
			query:         "  . ",
			direction:     DirectionWayuuToSpanish,
			expectNoMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.FindExact(entries, tt.query, tt.direction)
			if tt.expectNoMatch {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expectedText, result.TranslatedText)
			assert.Equal(t, 1.0, result.Confidence)
			assert.Equal(t, "wayuu-spanish-dictionary", result.SourceDataset)
			assert.Equal(t, tt.expectedAlternatives, result.Alternatives)
			assert.Equal(t, tt.expectedContextInfo, result.ContextInfo)
		})
	}
}

func TestEngine_FindFuzzy(t *testing.T) {
	engine := NewEngine("wayuu-spanish-dictionary")

	t.Run("close misspelling matches above threshold", func(t *testing.T) {
		entries := []DictionaryEntry{
			{GucWord: "anasu", SpaWord: "bueno"},
		}

		result := engine.FindFuzzy(entries, "anasü", DirectionWayuuToSpanish)
		require.NotNil(t, result)
		assert.Equal(t, "bueno", result.TranslatedText)
		assert.InDelta(t, 4.0/5.0, result.Confidence, 1e-9)
		assert.Contains(t, result.ContextInfo, "similarity")
	})

	t.Run("threshold is exclusive at 0.6", func(t *testing.T) {
		// "abcdefghij" vs candidates with controlled edit distances:
		// distance 4 over length 10 scores 0.6 exactly and must be dropped,
		// distance 3 scores 0.7 and must be kept.
		entries := []DictionaryEntry{
			{GucWord: "abcdefgXXX", SpaWord: "excluded"}, // distance 3 -> 0.7
			{GucWord: "abcdefXXXX", SpaWord: "dropped"},  // distance 4 -> 0.6
		}

		result := engine.FindFuzzy(entries, "abcdefghij", DirectionWayuuToSpanish)
		require.NotNil(t, result)
		assert.Equal(t, "excluded", result.TranslatedText)
		assert.InDelta(t, 0.7, result.Confidence, 1e-9)
		assert.Empty(t, result.Alternatives)
	})

	t.Run("candidates ranked by similarity with ties in dataset order", func(t *testing.T) {
		entries := []DictionaryEntry{
			{GucWord: "wayuXX", SpaWord: "tercero"}, // distance 2
			{GucWord: "wayuuX", SpaWord: "primero"}, // distance 1
			{GucWord: "wayuuY", SpaWord: "segundo"}, // distance 1, later in dataset
		}

		result := engine.FindFuzzy(entries, "wayuu", DirectionWayuuToSpanish)
		require.NotNil(t, result)
		assert.Equal(t, "primero", result.TranslatedText)
		assert.Equal(t, []string{"segundo", "tercero"}, result.Alternatives)
	})

	t.Run("at most five candidates kept", func(t *testing.T) {
		var entries []DictionaryEntry
		for i := 0; i < 8; i++ {
			entries = append(entries, DictionaryEntry{GucWord: "wayuuX", SpaWord: "gloss"})
		}

		result := engine.FindFuzzy(entries, "wayuu", DirectionWayuuToSpanish)
		require.NotNil(t, result)
		assert.Len(t, result.Alternatives, 4)
	})

	t.Run("spanish direction scores each gloss word", func(t *testing.T) {
		entries := []DictionaryEntry{
			{GucWord: "wüin", SpaWord: "agua de lluvia fresca"},
		}

		// Whole-phrase similarity to "aguas" is far below the threshold, but
		// the single word "agua" is one edit away.
		result := engine.FindFuzzy(entries, "aguas", DirectionSpanishToWayuu)
		require.NotNil(t, result)
		assert.Equal(t, "wüin", result.TranslatedText)
		assert.InDelta(t, 4.0/5.0, result.Confidence, 1e-9)
	})

	t.Run("no candidate above threshold", func(t *testing.T) {
		entries := []DictionaryEntry{
			{GucWord: "aa", SpaWord: "sí"},
		}

		assert.Nil(t, engine.FindFuzzy(entries, "wattachon", DirectionWayuuToSpanish))
	})
}
