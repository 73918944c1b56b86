// Package sources manages the registry of remote dataset sources consumed by
// the fetcher and the audio manager.
package sources

import (
	"time"
)

// Kind classifies what a remote source provides.
type Kind string

const (
	KindDictionary Kind = "dictionary"
	KindAudio      Kind = "audio"
	KindMixed      Kind = "mixed"
)

// Source is the configuration of one remote, paginated dataset source.
// Priority determines merge order when multiple active sources of the same
// kind exist; lower values win.
type Source struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Dataset   string    `db:"dataset"`
	Config    string    `db:"config"`
	Split     string    `db:"split"`
	Kind      Kind      `db:"kind"`
	IsActive  bool      `db:"is_active"`
	Priority  int       `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Matches reports whether a source serves the requested kind. Mixed sources
// serve both dictionary and audio loads.
func (s Source) Matches(kind Kind) bool {
	return s.Kind == kind || s.Kind == KindMixed
}

// Patch holds optional updates for a source; nil fields are left unchanged.
type Patch struct {
	Name     *string
	Dataset  *string
	Config   *string
	Split    *string
	Kind     *Kind
	IsActive *bool
	Priority *int
}
