// Package translation defines the bilingual dataset model and the
// exact/fuzzy lookup engine over the in-memory working set.
package translation

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Dataset identifies one of the locally cached dataset kinds.
type Dataset string

const (
	DatasetDictionary Dataset = "dictionary"
	DatasetAudio      Dataset = "audio"
)

// Set implements pflag.Value.
func (d *Dataset) Set(val string) error {
	for _, dataset := range AllDatasets {
		if val == string(dataset) {
			*d = dataset
			return nil
		}
	}
	return fmt.Errorf("invalid dataset: %s", val)
}

func (d Dataset) String() string {
	return string(d)
}

func (d *Dataset) Type() string {
	return "dataset"
}

var (
	_           pflag.Value = (*Dataset)(nil)
	AllDatasets             = []Dataset{DatasetDictionary, DatasetAudio}
)

// Direction selects the translation direction of a lookup.
type Direction string

const (
	DirectionWayuuToSpanish Direction = "wayuu-to-spanish"
	DirectionSpanishToWayuu Direction = "spanish-to-wayuu"
)

// Set implements pflag.Value.
func (d *Direction) Set(val string) error {
	for _, direction := range AllDirections {
		if val == string(direction) {
			*d = direction
			return nil
		}
	}
	return fmt.Errorf("invalid direction: %s", val)
}

func (d Direction) String() string {
	return string(d)
}

func (d *Direction) Type() string {
	return "direction"
}

var (
	_             pflag.Value = (*Direction)(nil)
	AllDirections             = []Direction{DirectionWayuuToSpanish, DirectionSpanishToWayuu}
)

// DictionaryEntry is one row of the bilingual lexicon. Entries are immutable
// once loaded; duplicates are allowed and keep their insertion order.
type DictionaryEntry struct {
	GucWord string `json:"guc" yaml:"guc"`
	SpaWord string `json:"es" yaml:"es"`
}

// DownloadPriority orders audio entries for bulk downloads.
type DownloadPriority string

const (
	PriorityHigh   DownloadPriority = "high"
	PriorityMedium DownloadPriority = "medium"
	PriorityLow    DownloadPriority = "low"
)

// Rank returns the sort rank of a priority, high first. Unknown values sort
// after low so malformed data never jumps the queue.
func (p DownloadPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// AudioEntry is one transcribed audio asset referenced by a dataset source.
// IsDownloaded, LocalPath and FileSizeBytes are the only fields mutated after
// creation, exclusively by the audio manager's download routine.
type AudioEntry struct {
	ID               string           `json:"id"`
	Transcription    string           `json:"transcription"`
	DurationSeconds  float64          `json:"duration_seconds"`
	RemoteURL        string           `json:"remote_url,omitempty"`
	LocalPath        string           `json:"local_path,omitempty"`
	IsDownloaded     bool             `json:"is_downloaded"`
	FileSizeBytes    *int64           `json:"file_size_bytes,omitempty"`
	DownloadPriority DownloadPriority `json:"download_priority"`
	BatchNumber      *int             `json:"batch_number,omitempty"`
	SourceID         string           `json:"source_id"`
}

// CacheMetadata describes a complete, successfully fetched dataset on disk.
// It is written only after the data file itself has been written.
type CacheMetadata struct {
	LastUpdated    time.Time `json:"last_updated"`
	TotalEntries   int       `json:"total_entries"`
	DatasetVersion string    `json:"dataset_version"`
	SourceID       string    `json:"source_id"`
	Checksum       string    `json:"checksum"`
}

// AudioCacheMetadata extends CacheMetadata with aggregate duration figures.
type AudioCacheMetadata struct {
	CacheMetadata
	TotalDurationSeconds   float64 `json:"total_duration_seconds"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`
}

// LookupResult is a query response. It is never persisted.
type LookupResult struct {
	TranslatedText string
	Confidence     float64
	SourceDataset  string
	Alternatives   []string
	ContextInfo    string
}
