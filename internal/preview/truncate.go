package preview

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// DisplayName returns the file name of path with control characters
// replaced, fitted into maxWidth columns.
func DisplayName(path string, maxWidth int) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, filepath.Base(path))
	return MiddleTruncate(name, maxWidth)
}

// MiddleTruncate shortens s to maxWidth display columns by replacing its
// middle with an ellipsis, so both the start of a file name and its
// extension stay visible. Wide runes count as two columns.
//
// Below 3 columns the string is cut from the right.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	const ellipsis = "…"
	if maxWidth < 3 {
		return truncateLeft(s, maxWidth)
	}

	remaining := maxWidth - 1
	head := truncateLeft(s, (remaining+1)/2)
	tail := truncateRight(s, remaining/2)
	return head + ellipsis + tail
}

// truncateLeft returns the longest prefix of s no wider than maxWidth.
func truncateLeft(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// truncateRight returns the longest suffix of s no wider than maxWidth.
func truncateRight(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
