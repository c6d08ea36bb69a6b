package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/runger/frostwall/internal/pairing/match"
	"github.com/runger/frostwall/internal/preview"
	"github.com/runger/frostwall/internal/wallpaper"
)

// truncatePath fits path into width columns, keeping both ends visible.
func truncatePath(path string, width int) string {
	if width < 8 {
		width = 8
	}
	return preview.MiddleTruncate(path, width)
}

func sortedScreens(assignment map[string]string) []string {
	screens := make([]string, 0, len(assignment))
	for s := range assignment {
		screens = append(screens, s)
	}
	sort.Strings(screens)
	return screens
}

func printAssignment(assignment map[string]string) {
	width := terminalWidth()
	for _, s := range sortedScreens(assignment) {
		fmt.Printf("  %s%s%s: %s\n", colorCyan, s, colorReset, truncatePath(assignment[s], width-len(s)-4))
	}
}

// printMatches renders one screen's ranked matches as a table.
func printMatches(screen wallpaper.Screen, matches []match.Match, byPath map[string]*wallpaper.Wallpaper) {
	fmt.Printf("%s%s%s %s(%s, %dx%d)%s\n",
		colorBold, screen.Name, colorReset,
		colorDim, screen.AspectCategory, screen.Width, screen.Height, colorReset)

	if len(matches) == 0 {
		fmt.Printf("  %sno compatible wallpapers%s\n\n", colorDim, colorReset)
		return
	}

	// rank, score, confidence, harmony, palette take ~44 columns.
	nameWidth := max(terminalWidth()-44, 16)

	fmt.Printf("  %s%-3s %-6s %-5s %-20s %s%s\n", colorDim, "#", "score", "conf", "harmony", "wallpaper", colorReset)
	for i, m := range matches {
		name := runewidth.FillRight(preview.DisplayName(m.Path, nameWidth), nameWidth)
		fmt.Printf("  %-3d %-6.2f %-5s %-20s %s %s\n",
			i+1, m.Score, formatConfidence(m.Confidence()), harmonyLabel(m), name, palette(byPath[m.Path]))
	}
	fmt.Println()
}

func formatConfidence(c float64) string {
	s := fmt.Sprintf("%3.0f%%", c*100)
	switch {
	case c >= 0.7:
		return colorGreen + s + colorReset
	case c >= 0.4:
		return colorYellow + s + colorReset
	default:
		return colorRed + s + colorReset
	}
}

func harmonyLabel(m match.Match) string {
	if m.HarmonyStrength <= 0 {
		return "-"
	}
	return fmt.Sprintf("%s %.0f%%", m.Harmony.Name(), m.HarmonyStrength*100)
}

// palette renders up to four dominant colors as swatches.
func palette(wp *wallpaper.Wallpaper) string {
	if wp == nil {
		return ""
	}
	var b strings.Builder
	for i, c := range wp.Colors {
		if i == 4 {
			break
		}
		b.WriteString(swatch(c))
	}
	return b.String()
}

// matchJSON is the --json shape of one match.
type matchJSON struct {
	Path          string  `json:"path"`
	Score         float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	Affinity      float64 `json:"affinity"`
	ScreenContext float64 `json:"screen_context"`
	Visual        float64 `json:"visual"`
	Harmony       string  `json:"harmony"`
	HarmonyScore  float64 `json:"harmony_strength"`
	Semantic      float64 `json:"semantic,omitempty"`
	SharedTags    int     `json:"shared_tags"`
	Penalty       float64 `json:"penalty"`
}

func toMatchJSON(m match.Match) matchJSON {
	return matchJSON{
		Path:          m.Path,
		Score:         m.Score,
		Confidence:    m.Confidence(),
		Affinity:      m.Affinity,
		ScreenContext: m.ScreenContext,
		Visual:        m.Visual,
		Harmony:       m.Harmony.Name(),
		HarmonyScore:  m.HarmonyStrength,
		Semantic:      m.Semantic,
		SharedTags:    m.SharedTags,
		Penalty:       m.Penalty,
	}
}

func printMatchesJSON(selected string, perScreen map[string][]match.Match) error {
	out := struct {
		Selected string                 `json:"selected"`
		Screens  map[string][]matchJSON `json:"screens"`
	}{
		Selected: selected,
		Screens:  make(map[string][]matchJSON, len(perScreen)),
	}
	for screen, matches := range perScreen {
		list := make([]matchJSON, len(matches))
		for i, m := range matches {
			list[i] = toMatchJSON(m)
		}
		out.Screens[screen] = list
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
