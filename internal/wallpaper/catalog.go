package wallpaper

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrCatalogNotFound is returned when no catalog file exists yet.
var ErrCatalogNotFound = errors.New("wallpaper catalog not found")

// Catalog is the scanner's cache: every known wallpaper plus the screens
// seen at scan time.
type Catalog struct {
	SourceDir  string      `json:"source_dir,omitempty"`
	Wallpapers []Wallpaper `json:"wallpapers"`
	Screens    []Screen    `json:"screens,omitempty"`
}

// LoadCatalog reads a catalog from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// SaveToFile writes the catalog to path, creating parent directories.
func (c *Catalog) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Find returns the wallpaper at path.
func (c *Catalog) Find(path string) (*Wallpaper, bool) {
	for i := range c.Wallpapers {
		if c.Wallpapers[i].Path == path {
			return &c.Wallpapers[i], true
		}
	}
	return nil, false
}

// Screen returns the screen named name.
func (c *Catalog) Screen(name string) (Screen, bool) {
	for _, s := range c.Screens {
		if s.Name == name {
			return s, true
		}
	}
	return Screen{}, false
}

// ScreenNames returns the screen names in sorted order.
func (c *Catalog) ScreenNames() []string {
	names := make([]string, 0, len(c.Screens))
	for _, s := range c.Screens {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Pool returns the wallpapers compatible with screen under mode.
func (c *Catalog) Pool(screen Screen, mode MatchMode) []Wallpaper {
	var out []Wallpaper
	for i := range c.Wallpapers {
		if c.Wallpapers[i].MatchesScreen(screen, mode) {
			out = append(out, c.Wallpapers[i])
		}
	}
	return out
}

// Tags returns every tag used in the catalog, sorted and deduplicated.
func (c *Catalog) Tags() []string {
	seen := make(map[string]struct{})
	for i := range c.Wallpapers {
		for _, t := range c.Wallpapers[i].AllTags() {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
