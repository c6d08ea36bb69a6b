package signal

import "math"

// Harmony is a colour-theory relationship between two dominant hues.
type Harmony int

const (
	HarmonyNone Harmony = iota
	Analogous
	Complementary
	Triadic
	SplitComplementary
)

// Hue qualification and classification bands, in degrees.
const (
	harmonyMinSaturation = 0.15
	harmonyMinLightness  = 0.1
	harmonyMaxLightness  = 0.9

	analogousMax     = 30.0
	complementaryLo  = 165.0
	complementaryHi  = 195.0
	complementaryMid = 180.0
	triadicLo        = 105.0
	triadicHi        = 135.0
	triadicMid       = 120.0
	splitLo          = 135.0
	splitHi          = 165.0
	splitMid         = 150.0
	bandFalloff      = 15.0
)

// Name returns a human-readable name.
func (h Harmony) Name() string {
	switch h {
	case Analogous:
		return "Analogous"
	case Complementary:
		return "Complementary"
	case Triadic:
		return "Triadic"
	case SplitComplementary:
		return "Split-Complementary"
	default:
		return "None"
	}
}

func (h Harmony) String() string { return h.Name() }

// Bonus is the score multiplier applied to a harmony's strength.
func (h Harmony) Bonus() float64 {
	switch h {
	case Analogous:
		return 1.0
	case Complementary:
		return 0.9
	case SplitComplementary:
		return 0.8
	case Triadic:
		return 0.7
	default:
		return 0
	}
}

// HueDifference returns the circular distance between two hues, 0–180.
func HueDifference(h1, h2 float64) float64 {
	diff := math.Abs(h1 - h2)
	if diff > 180 {
		return 360 - diff
	}
	return diff
}

// ClassifyHueDifference classifies a hue difference in degrees. Values
// outside every band, including anything above 195, yield HarmonyNone.
func ClassifyHueDifference(diff float64) (Harmony, float64) {
	var (
		kind     Harmony
		strength float64
	)
	switch {
	case diff < 0:
		return HarmonyNone, 0
	case diff < analogousMax:
		kind, strength = Analogous, 1-diff/analogousMax
	case diff >= complementaryLo && diff <= complementaryHi:
		kind, strength = Complementary, 1-math.Abs(diff-complementaryMid)/bandFalloff
	case diff >= triadicLo && diff <= triadicHi:
		kind, strength = Triadic, 1-math.Abs(diff-triadicMid)/bandFalloff
	case diff >= splitLo && diff < splitHi:
		kind, strength = SplitComplementary, 1-math.Abs(diff-splitMid)/bandFalloff
	default:
		return HarmonyNone, 0
	}
	return kind, math.Max(strength, 0)
}

// DominantHue picks the hue of the palette entry with the highest
// saturation*weight among sufficiently saturated, non-extreme colours.
// Missing weights default to uniform. ok is false if no colour qualifies.
func DominantHue(colors []string, weights []float64) (hue float64, ok bool) {
	if len(colors) == 0 {
		return 0, false
	}
	uniform := 1.0 / float64(len(colors))

	best := -1.0
	for i, c := range colors {
		h, s, l, parsed := HSL(c)
		if !parsed || s <= harmonyMinSaturation || l <= harmonyMinLightness || l >= harmonyMaxLightness {
			continue
		}
		w := uniform
		if i < len(weights) {
			w = weights[i]
		}
		if score := s * w; score >= best {
			best, hue, ok = score, h, true
		}
	}
	return hue, ok
}

// DetectHarmony classifies the relationship between the dominant hues of
// two palettes. If either palette has no qualifying hue (greys, near-black
// or near-white palettes) the result is HarmonyNone with strength 0.
func DetectHarmony(colorsA []string, weightsA []float64, colorsB []string, weightsB []float64) (Harmony, float64) {
	hueA, okA := DominantHue(colorsA, weightsA)
	hueB, okB := DominantHue(colorsB, weightsB)
	if !okA || !okB {
		return HarmonyNone, 0
	}
	return ClassifyHueDifference(HueDifference(hueA, hueB))
}
