// Package signal holds the pure scoring signals the match engine blends:
// perceptual palette similarity, colour harmony, semantic embedding
// similarity and tag overlap. All functions are stateless and safe for
// concurrent use.
package signal

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// minColorWeight is the noise floor below which a palette entry is
	// ignored during palette matching.
	minColorWeight = 0.01

	// similarityExponent bends the CIEDE2000 distance curve so mid-range
	// distances are penalized less than a linear mapping would.
	similarityExponent = 0.7

	// Dominance boost: a match against a B colour of weight w is scaled by
	// dominanceBase + dominanceBoost*min(2w, 1).
	dominanceBase  = 0.7
	dominanceBoost = 0.3

	// Blend of the three visual components.
	paletteShare    = 0.60
	brightnessShare = 0.25
	saturationShare = 0.15

	// Substitutes used when a hex string cannot be parsed.
	unknownBrightness = 0.5
	unknownSaturation = 0.0

	minWeightSum = 0.001
)

// ParseHex parses "#rrggbb" or "rrggbb" into a colour.
func ParseHex(hex string) (colorful.Color, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// UniformWeights returns n equal weights that sum to one.
func UniformWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

// EffectiveWeights returns weights unchanged when present, or uniform
// weights over colors when the caller supplied none.
func EffectiveWeights(colors []string, weights []float64) []float64 {
	if len(weights) == 0 {
		return UniformWeights(len(colors))
	}
	return weights
}

// normalizedWeights rescales weights to sum to one, one entry per colour.
// Missing trailing weights count as zero. A non-positive sum falls back to
// uniform weights.
func normalizedWeights(n int, weights []float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return UniformWeights(n)
	}
	out := make([]float64, n)
	for i := 0; i < n && i < len(weights); i++ {
		out[i] = weights[i] / sum
	}
	return out
}

// ColorSimilarity compares two hex colours with CIEDE2000 and maps the
// distance onto [0,1], 1 meaning identical. Unparseable input scores 0.
func ColorSimilarity(hexA, hexB string) float64 {
	a, okA := ParseHex(hexA)
	b, okB := ParseHex(hexB)
	if !okA || !okB {
		return 0
	}
	return distanceToSimilarity(a.DistanceCIEDE2000(b))
}

// distanceToSimilarity maps a CIEDE2000 distance (go-colorful scale, where
// 1.0 corresponds to ΔE 100) onto a similarity.
func distanceToSimilarity(d float64) float64 {
	if d <= 0 {
		return 1
	}
	return math.Max(0, 1-math.Pow(d, similarityExponent))
}

// Brightness returns the perceived brightness of a hex colour in [0,1].
func Brightness(hex string) float64 {
	c, ok := ParseHex(hex)
	if !ok {
		return unknownBrightness
	}
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Saturation returns the HSV saturation of a hex colour in [0,1].
func Saturation(hex string) float64 {
	c, ok := ParseHex(hex)
	if !ok {
		return unknownSaturation
	}
	_, s, _ := c.Hsv()
	return s
}

// HSL returns hue in degrees [0,360), saturation and lightness in [0,1].
func HSL(hex string) (h, s, l float64, ok bool) {
	c, parsed := ParseHex(hex)
	if !parsed {
		return 0, 0, 0, false
	}
	h, s, l = c.Hsl()
	return h, s, l, true
}
