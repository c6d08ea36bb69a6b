package signal

import "math"

// PaletteSimilarity matches every colour of palette A against its best
// perceptual counterpart in palette B. Matches against dominant B colours
// get up to a 30% boost, and each A colour contributes in proportion to its
// own weight. Colours under the 1% noise floor are skipped.
func PaletteSimilarity(colorsA []string, weightsA []float64, colorsB []string, weightsB []float64) float64 {
	if len(colorsA) == 0 || len(colorsB) == 0 {
		return 0
	}

	normA := normalizedWeights(len(colorsA), weightsA)
	normB := normalizedWeights(len(colorsB), weightsB)

	var total float64
	for i, ca := range colorsA {
		wa := normA[i]
		if wa < minColorWeight {
			continue
		}

		var best float64
		for j, cb := range colorsB {
			boost := math.Min(normB[j]*2, 1)
			sim := ColorSimilarity(ca, cb) * (dominanceBase + dominanceBoost*boost)
			if sim > best {
				best = sim
			}
		}
		total += best * wa
	}
	return clamp01(total)
}

// weightedMean averages f over colors using weights (zipped, truncated to
// the shorter of the two) divided by the total weight.
func weightedMean(colors []string, weights []float64, f func(string) float64) float64 {
	var sum, acc float64
	for _, w := range weights {
		sum += w
	}
	for i := 0; i < len(colors) && i < len(weights); i++ {
		acc += f(colors[i]) * weights[i]
	}
	return acc / math.Max(sum, minWeightSum)
}

// VisualSimilarity blends palette similarity (60%), weighted brightness
// similarity (25%) and weighted saturation similarity (15%) into a score
// in [0,1]. Empty weight slices are treated as uniform.
func VisualSimilarity(colorsA []string, weightsA []float64, colorsB []string, weightsB []float64) float64 {
	if len(colorsA) == 0 || len(colorsB) == 0 {
		return 0
	}
	weightsA = EffectiveWeights(colorsA, weightsA)
	weightsB = EffectiveWeights(colorsB, weightsB)

	palette := PaletteSimilarity(colorsA, weightsA, colorsB, weightsB)

	brightA := weightedMean(colorsA, weightsA, Brightness)
	brightB := weightedMean(colorsB, weightsB, Brightness)
	brightSim := 1 - math.Abs(brightA-brightB)

	satA := weightedMean(colorsA, weightsA, Saturation)
	satB := weightedMean(colorsB, weightsB, Saturation)
	satSim := 1 - math.Abs(satA-satB)

	return clamp01(palette*paletteShare + brightSim*brightnessShare + satSim*saturationShare)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}
