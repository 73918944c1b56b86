package translation

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// fuzzyThreshold is exclusive: candidates must score strictly above it.
	fuzzyThreshold = 0.6
	// maxFuzzyCandidates bounds how many ranked fuzzy candidates are kept.
	maxFuzzyCandidates = 5
)

// Engine answers exact and fuzzy dictionary queries over a working set.
// Fuzzy matching is only meant to run after an exact lookup found nothing.
type Engine struct {
	sourceDataset string
}

// NewEngine creates an Engine reporting the given dataset name in results.
func NewEngine(sourceDataset string) *Engine {
	return &Engine{sourceDataset: sourceDataset}
}

// FindExact returns the first exact match for text in the given direction,
// with any further matches listed as alternatives, or nil when nothing
// matches. For spanish-to-wayuu, an entry matches when its Spanish phrase
// contains the query as a substring or one of its words equals the query,
// since Spanish glosses are often multi-word.
func (e *Engine) FindExact(entries []DictionaryEntry, text string, direction Direction) *LookupResult {
	query := Normalize(text)
	if query == "" {
		return nil
	}

	var translations []string
	for _, entry := range entries {
		switch direction {
		case DirectionSpanishToWayuu:
			spa := Normalize(entry.SpaWord)
			if strings.Contains(spa, query) || containsWord(spa, query) {
				translations = append(translations, entry.GucWord)
			}
		default:
			if Normalize(entry.GucWord) == query {
				translations = append(translations, entry.SpaWord)
			}
		}
	}
	if len(translations) == 0 {
		return nil
	}

	result := &LookupResult{
		TranslatedText: translations[0],
		Confidence:     1.0,
		SourceDataset:  e.sourceDataset,
		Alternatives:   translations[1:],
	}
	if len(result.Alternatives) > 0 {
		result.ContextInfo = fmt.Sprintf("%d alternative translations found", len(result.Alternatives))
	}
	return result
}

type fuzzyCandidate struct {
	translation string
	score       float64
}

// FindFuzzy ranks entries by edit-distance similarity against the query and
// returns the best match above the threshold, or nil when none qualifies.
// For spanish-to-wayuu the score is the maximum of the whole-phrase
// similarity and each individual word's similarity, so a close hit on one
// word of a multi-word gloss still counts.
func (e *Engine) FindFuzzy(entries []DictionaryEntry, text string, direction Direction) *LookupResult {
	query := Normalize(text)
	if query == "" {
		return nil
	}

	var candidates []fuzzyCandidate
	for _, entry := range entries {
		var score float64
		var translation string
		switch direction {
		case DirectionSpanishToWayuu:
			spa := Normalize(entry.SpaWord)
			score = Similarity(query, spa)
			for _, word := range strings.Fields(spa) {
				if wordScore := Similarity(query, word); wordScore > score {
					score = wordScore
				}
			}
			translation = entry.GucWord
		default:
			score = Similarity(query, Normalize(entry.GucWord))
			translation = entry.SpaWord
		}
		if score > fuzzyThreshold {
			candidates = append(candidates, fuzzyCandidate{translation: translation, score: score})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Stable sort keeps original dataset order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxFuzzyCandidates {
		candidates = candidates[:maxFuzzyCandidates]
	}

	alternatives := make([]string, 0, len(candidates)-1)
	for _, candidate := range candidates[1:] {
		alternatives = append(alternatives, candidate.translation)
	}

	return &LookupResult{
		TranslatedText: candidates[0].translation,
		Confidence:     candidates[0].score,
		SourceDataset:  e.sourceDataset,
		Alternatives:   alternatives,
		ContextInfo:    fmt.Sprintf("fuzzy match with %.1f%% similarity", candidates[0].score*100),
	}
}

func containsWord(phrase, word string) bool {
	for _, candidate := range strings.Fields(phrase) {
		if candidate == word {
			return true
		}
	}
	return false
}
