// Package wallpaper holds the read-only wallpaper and screen records the
// pairing engine consumes. Palettes, tags and embeddings are produced by
// the scanner and arrive here precomputed.
package wallpaper

import (
	"fmt"
	"sort"
	"strings"
)

// AspectCategory is a coarse aspect-ratio bucket shared by wallpapers and
// screens.
type AspectCategory string

const (
	Ultrawide AspectCategory = "ultrawide"
	Landscape AspectCategory = "landscape"
	Portrait  AspectCategory = "portrait"
	Square    AspectCategory = "square"
)

// Aspect ratio thresholds.
const (
	ultrawideRatio = 2.0
	orientedRatio  = 1.2
)

// CategorizeAspect buckets a width/height pair.
func CategorizeAspect(width, height int) AspectCategory {
	if width <= 0 || height <= 0 {
		return Square
	}
	w, h := float64(width), float64(height)
	switch {
	case w/h >= ultrawideRatio:
		return Ultrawide
	case w/h >= orientedRatio:
		return Landscape
	case h/w >= orientedRatio:
		return Portrait
	default:
		return Square
	}
}

// MatchMode controls how strictly a wallpaper's aspect must agree with a
// screen's.
type MatchMode int

const (
	// MatchStrict requires the same aspect category.
	MatchStrict MatchMode = iota
	// MatchFlexible also allows crop-compatible categories.
	MatchFlexible
	// MatchAll ignores aspect entirely.
	MatchAll
)

// String returns the lowercase mode name.
func (m MatchMode) String() string {
	switch m {
	case MatchFlexible:
		return "flexible"
	case MatchAll:
		return "all"
	default:
		return "strict"
	}
}

// ParseMatchMode parses a mode name.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return MatchStrict, nil
	case "flexible":
		return MatchFlexible, nil
	case "all":
		return MatchAll, nil
	default:
		return MatchStrict, fmt.Errorf("unknown match mode %q", s)
	}
}

// Screen is a named display output. Name must be stable across runs; it
// keys the pairing history.
type Screen struct {
	Name           string         `json:"name"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	AspectCategory AspectCategory `json:"aspect_category"`
}

// AutoTag is a classifier-produced tag with its confidence.
type AutoTag struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// Wallpaper is one scanned image.
type Wallpaper struct {
	Path           string         `json:"path"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	AspectCategory AspectCategory `json:"aspect_category"`
	// Colors is the dominant palette as "#rrggbb", most dominant first.
	Colors []string `json:"colors"`
	// ColorWeights parallels Colors. Empty means uniform.
	ColorWeights []float64 `json:"color_weights,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	AutoTags     []AutoTag `json:"auto_tags,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// AllTags returns manual and auto tags merged, sorted and deduplicated.
func (w *Wallpaper) AllTags() []string {
	all := make([]string, 0, len(w.Tags)+len(w.AutoTags))
	all = append(all, w.Tags...)
	for _, t := range w.AutoTags {
		all = append(all, t.Name)
	}
	sort.Strings(all)

	out := all[:0]
	for i, t := range all {
		if i > 0 && t == all[i-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AutoTagsAbove returns the auto tags whose confidence is at least threshold.
func (w *Wallpaper) AutoTagsAbove(threshold float32) []AutoTag {
	var out []AutoTag
	for _, t := range w.AutoTags {
		if t.Confidence >= threshold {
			out = append(out, t)
		}
	}
	return out
}

// HasTag reports whether tag is among the manual or auto tags.
func (w *Wallpaper) HasTag(tag string) bool {
	for _, t := range w.Tags {
		if t == tag {
			return true
		}
	}
	for _, t := range w.AutoTags {
		if t.Name == tag {
			return true
		}
	}
	return false
}

// Aspect returns the stored aspect category, deriving it from the
// dimensions when the scanner left it blank.
func (w *Wallpaper) Aspect() AspectCategory {
	if w.AspectCategory != "" {
		return w.AspectCategory
	}
	return CategorizeAspect(w.Width, w.Height)
}

// MatchesScreen reports whether the wallpaper suits screen under mode.
func (w *Wallpaper) MatchesScreen(screen Screen, mode MatchMode) bool {
	wa := w.Aspect()
	sa := screen.AspectCategory
	if sa == "" {
		sa = CategorizeAspect(screen.Width, screen.Height)
	}

	switch mode {
	case MatchAll:
		return true
	case MatchFlexible:
		return flexibleMatch(wa, sa)
	default:
		return wa == sa
	}
}

func flexibleMatch(wallpaper, screen AspectCategory) bool {
	if wallpaper == screen {
		return true
	}
	switch {
	case wallpaper == Landscape && screen == Ultrawide,
		wallpaper == Ultrawide && screen == Landscape:
		return true
	case wallpaper == Square || screen == Square:
		// Square pairs with anything.
		return true
	default:
		return false
	}
}
