package translation

import "strings"

const strippedPunctuation = ".,;:!?¿¡\"'()"

// Normalize prepares a word or phrase for comparison: lowercase, trim,
// strip punctuation and collapse internal whitespace. It is applied to both
// the query and every candidate before matching.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if strings.ContainsRune(strippedPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
