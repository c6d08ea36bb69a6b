// Package style canonicalizes free-form wallpaper tags into a closed
// vocabulary of artistic style tags, and separates them from content and
// mood tags. The match engine uses these categories to drive style-aware
// filtering.
package style

import (
	"sort"
	"strings"
)

// Tag is a canonical style tag.
type Tag string

// Canonical style vocabulary.
const (
	Render3D         Tag = "3d_render"
	Abstract         Tag = "abstract"
	Anime            Tag = "anime"
	AnimeCharacter   Tag = "anime_character"
	ArtNouveau       Tag = "art_nouveau"
	Chibi            Tag = "chibi"
	ConceptArt       Tag = "concept_art"
	Cyberpunk        Tag = "cyberpunk"
	DigitalArt       Tag = "digital_art"
	Fantasy          Tag = "fantasy"
	FantasyLandscape Tag = "fantasy_landscape"
	Geometric        Tag = "geometric"
	Gothic           Tag = "gothic"
	Illustration     Tag = "illustration"
	LineArt          Tag = "line_art"
	Mecha            Tag = "mecha"
	MoodyFantasy     Tag = "moody_fantasy"
	OilPainting      Tag = "oil_painting"
	Painting         Tag = "painting"
	Painterly        Tag = "painterly"
	Photography      Tag = "photography"
	PixelArt         Tag = "pixel_art"
	Retro            Tag = "retro"
	SciFi            Tag = "sci_fi"
	Shoujo           Tag = "shoujo"
	Steampunk        Tag = "steampunk"
	Vaporwave        Tag = "vaporwave"
	Vintage          Tag = "vintage"
	Watercolor       Tag = "watercolor"
)

// Category is the coarse classification of a free-form tag.
type Category int

const (
	// CategoryContent is depicted subject matter (nature, ocean, city...).
	CategoryContent Category = iota
	// CategoryStyle is an artistic medium or genre from the vocabulary.
	CategoryStyle
	// CategoryMood is a mood or orientation word that carries no content.
	CategoryMood
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStyle:
		return "style"
	case CategoryMood:
		return "mood"
	default:
		return "content"
	}
}

// vocabulary is the closed set of canonical style tags.
var vocabulary = map[Tag]struct{}{
	Render3D: {}, Abstract: {}, Anime: {}, AnimeCharacter: {}, ArtNouveau: {},
	Chibi: {}, ConceptArt: {}, Cyberpunk: {}, DigitalArt: {}, Fantasy: {},
	FantasyLandscape: {}, Geometric: {}, Gothic: {}, Illustration: {},
	LineArt: {}, Mecha: {}, MoodyFantasy: {}, OilPainting: {}, Painting: {},
	Painterly: {}, Photography: {}, PixelArt: {}, Retro: {}, SciFi: {},
	Shoujo: {}, Steampunk: {}, Vaporwave: {}, Vintage: {}, Watercolor: {},
}

// aliases maps normalized spelling variants to their canonical tag.
// Entries here win over direct vocabulary membership, so "painterly"
// folds into Painting.
var aliases = map[string]Tag{
	"8bit":              PixelArt,
	"8_bit":             PixelArt,
	"pixelart":          PixelArt,
	"pixel_art":         PixelArt,
	"anime_character":   AnimeCharacter,
	"animecharacter":    AnimeCharacter,
	"concept_art":       ConceptArt,
	"conceptart":        ConceptArt,
	"digital_painting":  DigitalArt,
	"digital_art":       DigitalArt,
	"digitalpainting":   DigitalArt,
	"digitalart":        DigitalArt,
	"line_art":          LineArt,
	"lineart":           LineArt,
	"fantasy_landscape": FantasyLandscape,
	"fantasylandscape":  FantasyLandscape,
	"moody_fantasy":     MoodyFantasy,
	"moodyfantasy":      MoodyFantasy,
	"painted":           Painting,
	"painting":          Painting,
	"painterly":         Painting,
	"illustrated":       Illustration,
	"illustration":      Illustration,
	"3d":                Render3D,
	"3d_render":         Render3D,
	"3d_art":            Render3D,
	"cgi":               Render3D,
	"oil_painting":      OilPainting,
	"oilpainting":       OilPainting,
	"oil":               OilPainting,
	"watercolor":        Watercolor,
	"watercolour":       Watercolor,
	"aquarelle":         Watercolor,
	"art_nouveau":       ArtNouveau,
	"artnouveau":        ArtNouveau,
	"vaporwave":         Vaporwave,
	"vapor_wave":        Vaporwave,
	"steampunk":         Steampunk,
	"steam_punk":        Steampunk,
	"shoujo":            Shoujo,
	"shojo":             Shoujo,
	"mech":              Mecha,
	"mecha":             Mecha,
	"robot":             Mecha,
	"sci_fi":            SciFi,
	"scifi":             SciFi,
	"science_fiction":   SciFi,
	"photo":             Photography,
	"photograph":        Photography,
	"photography":       Photography,
}

// nonSpecific style tags are broad umbrellas; a wallpaper tagged only with
// these says little about its actual medium.
var nonSpecific = map[Tag]struct{}{
	Abstract: {},
	Anime:    {},
	Fantasy:  {},
}

// moodWords carry no subject matter and are never content tags.
var moodWords = map[string]struct{}{
	"bright":                {},
	"dark":                  {},
	"pastel":                {},
	"vibrant":               {},
	"minimal":               {},
	"landscape_orientation": {},
	"portrait":              {},
}

// normalize lowercases, trims and folds hyphens and spaces into underscores.
func normalize(tag string) string {
	n := strings.ToLower(strings.TrimSpace(tag))
	n = strings.NewReplacer("-", "_", " ", "_").Replace(n)
	return strings.Trim(n, "_")
}

// Canonical maps a free-form tag to its canonical style tag.
// The second return value is false when the tag is not a style tag.
func Canonical(tag string) (Tag, bool) {
	n := normalize(tag)
	if t, ok := aliases[n]; ok {
		return t, true
	}
	if _, ok := vocabulary[Tag(n)]; ok {
		return Tag(n), true
	}
	return "", false
}

// IsStyle reports whether tag canonicalizes to a style tag.
func IsStyle(tag string) bool {
	_, ok := Canonical(tag)
	return ok
}

// IsSpecific reports whether a canonical style tag is specific, i.e. not
// one of the broad umbrella styles (abstract, anime, fantasy).
func IsSpecific(t Tag) bool {
	_, broad := nonSpecific[t]
	return !broad
}

// IsContent reports whether tag describes subject matter: anything that is
// neither a style tag nor a mood/orientation word. Mood words are matched
// exactly.
func IsContent(tag string) bool {
	if IsStyle(tag) {
		return false
	}
	_, mood := moodWords[tag]
	return !mood
}

// Classify returns the category of a free-form tag.
func Classify(tag string) Category {
	if IsStyle(tag) {
		return CategoryStyle
	}
	if _, mood := moodWords[tag]; mood {
		return CategoryMood
	}
	return CategoryContent
}

// Extract canonicalizes the style tags found in tags, returning them sorted
// and deduplicated as plain strings.
func Extract(tags []string) []string {
	seen := make(map[Tag]struct{})
	for _, tag := range tags {
		if t, ok := Canonical(tag); ok {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Collect returns the set of canonical style tags found in tags.
func Collect(tags []string) map[Tag]struct{} {
	set := make(map[Tag]struct{})
	for _, tag := range tags {
		if t, ok := Canonical(tag); ok {
			set[t] = struct{}{}
		}
	}
	return set
}

// Vocabulary returns every canonical style tag, sorted.
func Vocabulary() []Tag {
	out := make([]Tag, 0, len(vocabulary))
	for t := range vocabulary {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Profile partitions a wallpaper's tags into the sets the match engine
// compares against.
type Profile struct {
	// All holds every tag verbatim (exact-string comparison).
	All map[string]struct{}
	// Content holds the content tags among All.
	Content map[string]struct{}
	// Styles holds the canonical style tags.
	Styles map[Tag]struct{}
	// Specific holds the specific subset of Styles.
	Specific map[Tag]struct{}
}

// NewProfile builds a Profile from raw tags. When styleTags is nil the
// style set is derived from tags; otherwise styleTags is canonicalized and
// used as given.
func NewProfile(tags, styleTags []string) Profile {
	p := Profile{
		All:      make(map[string]struct{}, len(tags)),
		Content:  make(map[string]struct{}),
		Specific: make(map[Tag]struct{}),
	}
	for _, tag := range tags {
		p.All[tag] = struct{}{}
		if IsContent(tag) {
			p.Content[tag] = struct{}{}
		}
	}
	if styleTags == nil {
		p.Styles = Collect(tags)
	} else {
		p.Styles = Collect(styleTags)
	}
	for t := range p.Styles {
		if IsSpecific(t) {
			p.Specific[t] = struct{}{}
		}
	}
	return p
}
