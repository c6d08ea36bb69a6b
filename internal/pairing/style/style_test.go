package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Tag
	}{
		{"8bit", PixelArt},
		{"8_bit", PixelArt},
		{"pixelart", PixelArt},
		{"pixel_art", PixelArt},
		{"pixel-art", PixelArt},
		{"pixel art", PixelArt},
		{"digital_painting", DigitalArt},
		{"digitalpainting", DigitalArt},
		{"digitalart", DigitalArt},
		{"painted", Painting},
		{"painterly", Painting},
		{"illustrated", Illustration},
		{"cgi", Render3D},
		{"3D", Render3D},
		{"watercolour", Watercolor},
		{"aquarelle", Watercolor},
		{"shojo", Shoujo},
		{"robot", Mecha},
		{"science fiction", SciFi},
		{"photo", Photography},
		{"  anime  ", Anime},
		{"ANIME", Anime},
		{"Retro", Retro},
		{"vintage", Vintage},
		{"geometric", Geometric},
		{"_gothic_", Gothic},
	}

	for _, tt := range tests {
		got, ok := Canonical(tt.in)
		assert.True(t, ok, "expected %q to be a style tag", tt.in)
		assert.Equal(t, tt.want, got, "Canonical(%q)", tt.in)
	}
}

func TestCanonical_NotStyle(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"nature", "ocean", "dark", "bright", "", "  "} {
		_, ok := Canonical(in)
		assert.False(t, ok, "expected %q not to be a style tag", in)
	}
}

func TestIsSpecific(t *testing.T) {
	t.Parallel()

	assert.False(t, IsSpecific(Abstract))
	assert.False(t, IsSpecific(Anime))
	assert.False(t, IsSpecific(Fantasy))
	assert.True(t, IsSpecific(PixelArt))
	assert.True(t, IsSpecific(AnimeCharacter))
	assert.True(t, IsSpecific(FantasyLandscape))
}

func TestIsContent(t *testing.T) {
	t.Parallel()

	assert.True(t, IsContent("nature"))
	assert.True(t, IsContent("ocean"))
	assert.True(t, IsContent("forest"))
	assert.False(t, IsContent("bright"))
	assert.False(t, IsContent("dark"))
	assert.False(t, IsContent("portrait"))
	assert.False(t, IsContent("anime"))
	assert.False(t, IsContent("pixel_art"))
	assert.False(t, IsContent("8bit"))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryStyle, Classify("Pixel-Art"))
	assert.Equal(t, CategoryMood, Classify("pastel"))
	assert.Equal(t, CategoryContent, Classify("mountain"))
	assert.Equal(t, "style", CategoryStyle.String())
	assert.Equal(t, "mood", CategoryMood.String())
	assert.Equal(t, "content", CategoryContent.String())
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("filters non-style tags", func(t *testing.T) {
		got := Extract([]string{"anime", "nature", "dark", "pixel_art"})
		assert.Equal(t, []string{"anime", "pixel_art"}, got)
	})

	t.Run("deduplicates variants", func(t *testing.T) {
		got := Extract([]string{"8bit", "pixel_art", "pixelart"})
		assert.Equal(t, []string{"pixel_art"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Extract(nil))
	})
}

func TestVocabulary_Sorted(t *testing.T) {
	t.Parallel()

	v := Vocabulary()
	assert.Len(t, v, 29)
	for i := 1; i < len(v); i++ {
		assert.Less(t, string(v[i-1]), string(v[i]))
	}
}

func TestNewProfile(t *testing.T) {
	t.Parallel()

	t.Run("derives styles from tags", func(t *testing.T) {
		p := NewProfile([]string{"pixel_art", "anime", "ocean", "dark"}, nil)

		assert.Len(t, p.All, 4)
		assert.Equal(t, map[string]struct{}{"ocean": {}}, p.Content)
		assert.Equal(t, map[Tag]struct{}{PixelArt: {}, Anime: {}}, p.Styles)
		assert.Equal(t, map[Tag]struct{}{PixelArt: {}}, p.Specific)
	})

	t.Run("explicit style tags override", func(t *testing.T) {
		p := NewProfile([]string{"pixel_art", "ocean"}, []string{"Watercolour"})

		assert.Equal(t, map[Tag]struct{}{Watercolor: {}}, p.Styles)
		assert.Equal(t, map[Tag]struct{}{Watercolor: {}}, p.Specific)
	})

	t.Run("explicit empty style tags", func(t *testing.T) {
		p := NewProfile([]string{"pixel_art"}, []string{})
		assert.Empty(t, p.Styles)
	})
}
