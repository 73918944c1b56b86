package loader

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

//go:embed sample_dictionary.yaml
var sampleDictionaryYAML []byte

// sampleDictionary returns the small bundled lexicon used when both the disk
// cache and every remote source are unavailable, so the engine never serves
// zero dictionary data.
func sampleDictionary() ([]translation.DictionaryEntry, error) {
	var entries []translation.DictionaryEntry
	if err := yaml.Unmarshal(sampleDictionaryYAML, &entries); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(sample dictionary) > %w", err)
	}
	return entries, nil
}
