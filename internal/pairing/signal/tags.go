package signal

import "github.com/runger/frostwall/internal/pairing/style"

// TagOverlap counts the tags a candidate shares with the selected
// wallpaper, split by category.
type TagOverlap struct {
	// Shared is the exact-string overlap across all tags.
	Shared int
	// Content is the overlap with the selected content tags.
	Content int
	// Style is the overlap of canonical style tags.
	Style int
	// SpecificStyle is the overlap with the selected specific style tags.
	SpecificStyle int
}

// CompareTags measures candidateTags against the selected wallpaper's tag
// profile. Duplicate candidate tags count once. Style overlap is only
// computed when withStyle is set and the selection has style tags.
func CompareTags(selected style.Profile, candidateTags []string, withStyle bool) TagOverlap {
	var o TagOverlap

	seen := make(map[string]struct{}, len(candidateTags))
	unique := make([]string, 0, len(candidateTags))
	for _, tag := range candidateTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}

	for _, tag := range unique {
		if _, ok := selected.All[tag]; ok {
			o.Shared++
		}
		if _, ok := selected.Content[tag]; ok {
			o.Content++
		}
	}

	if !withStyle || len(selected.Styles) == 0 {
		return o
	}
	for t := range style.Collect(unique) {
		if _, ok := selected.Styles[t]; ok {
			o.Style++
		}
		if _, ok := selected.Specific[t]; ok {
			o.SpecificStyle++
		}
	}
	return o
}

// SharedTags counts the distinct tags present in both a and b.
func SharedTags(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			n++
			delete(set, t)
		}
	}
	return n
}
