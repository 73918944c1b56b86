package audio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

// DurationRecord is one entry of the duration cache file, keyed by audio id.
type DurationRecord struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Calculated      bool    `json:"calculated"`
	Error           string  `json:"error,omitempty"`
}

// EnrichedEntry is an audio entry annotated with whether its duration came
// from the duration cache.
type EnrichedEntry struct {
	translation.AudioEntry
	Calculated bool
}

func (m *Manager) loadDurations() (map[string]DurationRecord, error) {
	data, err := os.ReadFile(m.cfg.DurationsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]DurationRecord{}, nil
		}
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", m.cfg.DurationsFile, err)
	}

	durations := map[string]DurationRecord{}
	if err := json.Unmarshal(data, &durations); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", m.cfg.DurationsFile, err)
	}
	return durations, nil
}

// EnrichWithDurations overlays cached durations onto the given entries.
// Entries without a usable cached duration keep their dataset value and are
// flagged calculated=false; they are candidates for a later recompute, not
// errors. An absent duration cache file yields no enrichment at all.
func (m *Manager) EnrichWithDurations(entries []translation.AudioEntry) ([]EnrichedEntry, error) {
	durations, err := m.loadDurations()
	if err != nil {
		return nil, fmt.Errorf("loadDurations() > %w", err)
	}

	enriched := make([]EnrichedEntry, len(entries))
	for i, entry := range entries {
		enriched[i] = EnrichedEntry{AudioEntry: entry}
		record, ok := durations[entry.ID]
		if !ok || !record.Calculated || record.Error != "" {
			continue
		}
		enriched[i].DurationSeconds = record.DurationSeconds
		enriched[i].Calculated = true
	}
	return enriched, nil
}
