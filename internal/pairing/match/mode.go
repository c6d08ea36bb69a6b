// Package match ranks candidate wallpapers for a target screen given the
// wallpaper chosen for another screen. It blends learned history with
// colour, tag and embedding signals, weighted by a style mode.
package match

import (
	"fmt"
	"strings"
)

// Mode controls how strongly style, content and semantic agreement can
// override history and colour.
type Mode int

const (
	// ModeOff scores additively with no style handling.
	ModeOff Mode = iota
	// ModeSoft nudges scores on style and content overlap.
	ModeSoft
	// ModeStrict rejects candidates that miss the selection's style,
	// content or quality floors.
	ModeStrict
)

// DefaultMode is the mode used when none is configured.
const DefaultMode = ModeSoft

// Next cycles Off, Soft, Strict, Off.
func (m Mode) Next() Mode {
	switch m {
	case ModeOff:
		return ModeSoft
	case ModeSoft:
		return ModeStrict
	default:
		return ModeOff
	}
}

// DisplayName returns the capitalized mode name.
func (m Mode) DisplayName() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeStrict:
		return "Strict"
	default:
		return "Soft"
	}
}

func (m Mode) String() string { return strings.ToLower(m.DisplayName()) }

// ParseMode parses "off", "soft" or "strict", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff, nil
	case "soft", "":
		return ModeSoft, nil
	case "strict":
		return ModeStrict, nil
	default:
		return DefaultMode, fmt.Errorf("unknown style mode %q (want off, soft or strict)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
