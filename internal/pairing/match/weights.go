package match

// Weights are the base weights of the scoring signals before the style
// mode rescales them.
type Weights struct {
	ScreenContext     float64
	Visual            float64
	Harmony           float64
	Tag               float64
	Semantic          float64
	RepetitionPenalty float64
}

// DefaultWeights returns the default base weights.
func DefaultWeights() Weights {
	return Weights{
		ScreenContext:     3.0,
		Visual:            5.0,
		Harmony:           3.0,
		Tag:               2.0,
		Semantic:          4.0,
		RepetitionPenalty: 1.0,
	}
}

// modeMultipliers rescale base weights per mode. Strict leans on what the
// image depicts and away from history.
var modeMultipliers = map[Mode]Weights{
	ModeOff: {1, 1, 1, 1, 1, 1},
	ModeSoft: {
		ScreenContext:     0.90,
		Visual:            1.05,
		Harmony:           1.0,
		Tag:               1.15,
		Semantic:          1.20,
		RepetitionPenalty: 1.0,
	},
	ModeStrict: {
		ScreenContext:     0.55,
		Visual:            1.20,
		Harmony:           1.10,
		Tag:               1.55,
		Semantic:          1.80,
		RepetitionPenalty: 1.15,
	},
}

// ForMode returns w rescaled for mode.
func (w Weights) ForMode(mode Mode) Weights {
	m, ok := modeMultipliers[mode]
	if !ok {
		return w
	}
	return Weights{
		ScreenContext:     w.ScreenContext * m.ScreenContext,
		Visual:            w.Visual * m.Visual,
		Harmony:           w.Harmony * m.Harmony,
		Tag:               w.Tag * m.Tag,
		Semantic:          w.Semantic * m.Semantic,
		RepetitionPenalty: w.RepetitionPenalty * m.RepetitionPenalty,
	}
}

// Tuning holds the engine's fixed heuristics.
type Tuning struct {
	// HistoryScale de-emphasizes history per mode.
	HistoryScaleOff    float64
	HistoryScaleSoft   float64
	HistoryScaleStrict float64

	// MaxSharedTags caps the plain shared-tag bonus.
	MaxSharedTags int

	// Soft mode style/content nudges, in multiples of the tag weight.
	SoftStyleBonus     float64
	SoftStylePenalty   float64
	SoftContentBonus   float64
	SoftContentPenalty float64
	SoftMaxStyle       int
	SoftMaxContent     int

	// Strict mode style/content adjustments, in multiples of the tag weight.
	StrictStyleBonus   float64
	StrictStylePenalty float64
	StrictContentBonus float64
	StrictMaxStyle     int
	StrictMaxContent   int

	// Strict mode rejection floors.
	StrictVisualMin         float64
	StrictSemanticMin       float64
	StrictQualityMin        float64
	StrictQualitySemantic   float64
	StrictStyleOverlapMin   float64
	StrictContentOverlapMin float64

	// Repetition penalty shape.
	RepetitionLookback int
	RepetitionScale    float64
	RepetitionCap      float64
}

// DefaultTuning returns the tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		HistoryScaleOff:    1.0,
		HistoryScaleSoft:   0.6,
		HistoryScaleStrict: 0.15,

		MaxSharedTags: 3,

		SoftStyleBonus:     1.5,
		SoftStylePenalty:   1.2,
		SoftContentBonus:   1.0,
		SoftContentPenalty: 0.6,
		SoftMaxStyle:       2,
		SoftMaxContent:     3,

		StrictStyleBonus:   4.0,
		StrictStylePenalty: 6.0,
		StrictContentBonus: 2.0,
		StrictMaxStyle:     2,
		StrictMaxContent:   3,

		StrictVisualMin:         0.62,
		StrictSemanticMin:       0.58,
		StrictQualityMin:        0.63,
		StrictQualitySemantic:   0.58,
		StrictStyleOverlapMin:   0.5,
		StrictContentOverlapMin: 0.34,

		RepetitionLookback: 20,
		RepetitionScale:    2.5,
		RepetitionCap:      8.0,
	}
}

// HistoryScale returns the history multiplier for mode.
func (t Tuning) HistoryScale(mode Mode) float64 {
	switch mode {
	case ModeStrict:
		return t.HistoryScaleStrict
	case ModeSoft:
		return t.HistoryScaleSoft
	default:
		return t.HistoryScaleOff
	}
}
