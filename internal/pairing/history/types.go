// Package history owns the pairing event log and the symmetric affinity
// table learned from it. It is the only writer of that state: the match
// engine reads lookup tables from it and asks it to record new pairings.
package history

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNotFound is returned by a Persister that has nothing stored yet.
	ErrNotFound = errors.New("pairing history not found")
	// ErrCorrupt wraps decode failures of a stored document.
	ErrCorrupt = errors.New("pairing history corrupt")
)

// PairingEvent is one multi-screen assignment.
type PairingEvent struct {
	ID string `json:"id,omitempty"`
	// Wallpapers maps screen name to wallpaper path.
	Wallpapers map[string]string `json:"wallpapers"`
	// Timestamp is the Unix time the assignment was applied.
	Timestamp int64 `json:"timestamp"`
	// Duration is how long the assignment stayed, in seconds. Nil while
	// it is still on screen.
	Duration *int64 `json:"duration"`
	Manual   bool   `json:"manual"`
}

// Closed reports whether the event's duration is known.
func (e *PairingEvent) Closed() bool { return e.Duration != nil }

// Paths returns the distinct wallpaper paths of the event, sorted.
func (e *PairingEvent) Paths() []string {
	seen := make(map[string]struct{}, len(e.Wallpapers))
	out := make([]string, 0, len(e.Wallpapers))
	for _, p := range e.Wallpapers {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether path is shown on any screen in the event.
func (e *PairingEvent) Contains(path string) bool {
	for _, p := range e.Wallpapers {
		if p == path {
			return true
		}
	}
	return false
}

func (e PairingEvent) clone() PairingEvent {
	c := e
	c.Wallpapers = make(map[string]string, len(e.Wallpapers))
	for k, v := range e.Wallpapers {
		c.Wallpapers[k] = v
	}
	if e.Duration != nil {
		d := *e.Duration
		c.Duration = &d
	}
	return c
}

// AffinityScore is the learned relationship between two wallpapers.
// WallpaperA always sorts before WallpaperB.
type AffinityScore struct {
	WallpaperA      string  `json:"wallpaper_a"`
	WallpaperB      string  `json:"wallpaper_b"`
	Score           float64 `json:"score"`
	PairCount       int     `json:"pair_count"`
	AvgDurationSecs float64 `json:"avg_duration_secs"`
}

// Other returns the partner of path in the pair, or "" if path is not part
// of it.
func (a *AffinityScore) Other(path string) string {
	switch path {
	case a.WallpaperA:
		return a.WallpaperB
	case a.WallpaperB:
		return a.WallpaperA
	default:
		return ""
	}
}

// Document is the persisted form of the store.
type Document struct {
	Records        []PairingEvent  `json:"records"`
	AffinityScores []AffinityScore `json:"affinity_scores"`
}

// Affinity score shape.
const (
	// countSaturation is the pair count at which the count component
	// reaches 1.
	countSaturation = 10.0
	// durationSaturationSecs is the average duration at which the
	// duration component reaches 1.
	durationSaturationSecs = 1800.0

	countShare    = 0.7
	durationShare = 0.3
)

// BaseScore combines a pair count and an average co-display duration into
// an affinity score in [0,1]. The count component grows logarithmically.
func BaseScore(pairCount int, avgDurationSecs float64) float64 {
	if pairCount <= 0 {
		return 0
	}
	count := math.Log1p(float64(pairCount)) / math.Log1p(countSaturation)
	duration := math.Min(math.Max(avgDurationSecs, 0)/durationSaturationSecs, 1)
	return math.Min(count*countShare+duration*durationShare, 1)
}

// orderedPair returns a and b in canonical order.
func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

type pairKey struct{ a, b string }

func keyFor(a, b string) pairKey {
	a, b = orderedPair(a, b)
	return pairKey{a, b}
}
