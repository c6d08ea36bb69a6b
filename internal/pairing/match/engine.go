package match

import (
	"log/slog"
	"math"
	"sort"

	"github.com/runger/frostwall/internal/pairing/signal"
	"github.com/runger/frostwall/internal/pairing/style"
	"github.com/runger/frostwall/internal/wallpaper"
)

// HistorySource supplies the learned lookup tables the engine reads. The
// engine never mutates it.
type HistorySource interface {
	// AffinitiesFor returns the affinity of every wallpaper paired with
	// path, keyed by partner path.
	AffinitiesFor(path string) map[string]float64
	// ScreenContextScores returns normalized co-occurrence scores of
	// wallpapers shown on target alongside selected.
	ScreenContextScores(selected, target string) map[string]float64
	// RecentScreenHistory returns what target showed in the last lookback
	// events, most recent first, "" where it was not covered.
	RecentScreenHistory(target string, lookback int) []string
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Weights Weights
	Tuning  Tuning
	Logger  *slog.Logger
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: DefaultWeights(),
		Tuning:  DefaultTuning(),
		Logger:  slog.Default(),
	}
}

// Context describes one ranking request.
type Context struct {
	// Selected is the wallpaper chosen for another screen.
	Selected wallpaper.Wallpaper
	// TargetScreen is the screen being filled.
	TargetScreen string
	// StyleTags are the selection's style tags. Nil derives them from
	// Selected's tags.
	StyleTags []string
	Mode      Mode
	// Weights overrides the engine's base weights when non-zero.
	Weights Weights
}

// Match is one ranked candidate.
type Match struct {
	Path  string
	Score float64

	// Signal breakdown.
	Affinity        float64
	ScreenContext   float64
	Visual          float64
	Harmony         signal.Harmony
	HarmonyStrength float64
	Semantic        float64
	HasSemantic     bool
	SharedTags      int
	Penalty         float64
}

// Confidence is the visual/semantic quality of the match in [0,1],
// independent of history and mode.
func (m Match) Confidence() float64 {
	if m.HasSemantic {
		return m.Semantic*0.58 + m.Visual*0.42
	}
	return m.Visual
}

// Engine ranks candidates. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	history HistorySource
	cfg     EngineConfig
}

// NewEngine creates an engine reading from history. A nil history ranks
// on colour, tags and embeddings alone.
func NewEngine(history HistorySource, cfg EngineConfig) *Engine {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Tuning == (Tuning{}) {
		cfg.Tuning = DefaultTuning()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{history: history, cfg: cfg}
}

// request is a Context resolved against the engine configuration.
type request struct {
	mode         Mode
	selected     *wallpaper.Wallpaper
	colors       []string
	colorWeights []float64
	profile      style.Profile
	weights      Weights
	historyScale float64

	affinity      map[string]float64
	screenContext map[string]float64
	recent        []string
}

func (e *Engine) resolve(mc *Context) *request {
	base := e.cfg.Weights
	if mc.Weights != (Weights{}) {
		base = mc.Weights
	}

	r := &request{
		mode:         mc.Mode,
		selected:     &mc.Selected,
		colors:       mc.Selected.Colors,
		colorWeights: signal.EffectiveWeights(mc.Selected.Colors, mc.Selected.ColorWeights),
		profile:      style.NewProfile(mc.Selected.AllTags(), mc.StyleTags),
		weights:      base.ForMode(mc.Mode),
		historyScale: e.cfg.Tuning.HistoryScale(mc.Mode),
	}

	if e.history != nil {
		r.affinity = e.history.AffinitiesFor(mc.Selected.Path)
		r.screenContext = e.history.ScreenContextScores(mc.Selected.Path, mc.TargetScreen)
		if r.weights.RepetitionPenalty > 0 {
			r.recent = e.history.RecentScreenHistory(mc.TargetScreen, e.cfg.Tuning.RepetitionLookback)
		}
	}
	return r
}

// TopMatches ranks pool for mc.TargetScreen and returns at most limit
// matches, best first, ties broken by path. The pool is expected to be
// aspect-compatible with the target already. The selected wallpaper is
// never returned. An empty pool or a non-positive limit yields nil.
func (e *Engine) TopMatches(mc Context, pool []wallpaper.Wallpaper, limit int) []Match {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}

	r := e.resolve(&mc)

	scored := make([]Match, 0, len(pool))
	rejected := 0
	for i := range pool {
		wp := &pool[i]
		if wp.Path == mc.Selected.Path {
			continue
		}
		m, ok := e.score(r, wp)
		if !ok {
			rejected++
			continue
		}
		scored = append(scored, m)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Path < scored[j].Path
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	e.cfg.Logger.Debug("pairing candidates ranked",
		"target", mc.TargetScreen,
		"mode", mc.Mode.String(),
		"pool", len(pool),
		"rejected", rejected,
		"returned", len(scored),
	)
	return scored
}

// BestMatch returns the top match, if any candidate survives.
func (e *Engine) BestMatch(mc Context, pool []wallpaper.Wallpaper) (Match, bool) {
	top := e.TopMatches(mc, pool, 1)
	if len(top) == 0 {
		return Match{}, false
	}
	return top[0], true
}

// TopMatchesPerScreen ranks every other screen's pool against
// mc.Selected, which is shown on selectedScreen. Screens with no
// surviving candidate are omitted. mc.TargetScreen is ignored.
func (e *Engine) TopMatchesPerScreen(mc Context, selectedScreen string, pools map[string][]wallpaper.Wallpaper, limit int) map[string][]Match {
	out := make(map[string][]Match, len(pools))
	for screen, pool := range pools {
		if screen == selectedScreen {
			continue
		}
		mc.TargetScreen = screen
		if top := e.TopMatches(mc, pool, limit); len(top) > 0 {
			out[screen] = top
		}
	}
	return out
}

// score computes one candidate's score. ok is false when strict mode
// rejects it.
func (e *Engine) score(r *request, wp *wallpaper.Wallpaper) (Match, bool) {
	t := &e.cfg.Tuning
	w := r.weights
	sel := &r.profile

	m := Match{
		Path:          wp.Path,
		Affinity:      r.affinity[wp.Path],
		ScreenContext: r.screenContext[wp.Path],
	}
	score := (m.Affinity*w.ScreenContext + m.ScreenContext*w.ScreenContext) * r.historyScale

	tags := signal.CompareTags(*sel, wp.AllTags(), r.mode != ModeOff)
	m.SharedTags = tags.Shared

	if len(r.selected.Embedding) > 0 && len(wp.Embedding) > 0 {
		m.Semantic = signal.SemanticSimilarity(r.selected.Embedding, wp.Embedding)
		m.HasSemantic = true
	}

	hasStyle := len(sel.Styles) > 0
	hasContent := len(sel.Content) > 0
	styleOverlap, styleBasis := tags.Style, len(sel.Styles)
	if len(sel.Specific) > 0 {
		styleOverlap, styleBasis = tags.SpecificStyle, len(sel.Specific)
	}

	if r.mode == ModeStrict {
		if hasStyle {
			if styleOverlap == 0 {
				return Match{}, false
			}
			if styleBasis >= 2 && float64(styleOverlap)/float64(styleBasis) < t.StrictStyleOverlapMin {
				return Match{}, false
			}
		}
		if hasContent {
			if tags.Content == 0 {
				return Match{}, false
			}
			if len(sel.Content) >= 3 && float64(tags.Content)/float64(len(sel.Content)) < t.StrictContentOverlapMin {
				return Match{}, false
			}
		}
		if m.HasSemantic && m.Semantic < t.StrictSemanticMin {
			return Match{}, false
		}
	}

	candWeights := signal.EffectiveWeights(wp.Colors, wp.ColorWeights)
	m.Visual = signal.VisualSimilarity(r.colors, r.colorWeights, wp.Colors, candWeights)
	score += m.Visual * w.Visual

	m.Harmony, m.HarmonyStrength = signal.DetectHarmony(r.colors, r.colorWeights, wp.Colors, candWeights)
	score += m.Harmony.Bonus() * m.HarmonyStrength * w.Harmony

	score += float64(min(tags.Shared, t.MaxSharedTags)) * w.Tag

	switch r.mode {
	case ModeSoft:
		if hasStyle {
			if tags.Style > 0 {
				score += float64(min(tags.Style, t.SoftMaxStyle)) * w.Tag * t.SoftStyleBonus
			} else {
				score -= w.Tag * t.SoftStylePenalty
			}
		}
		if hasContent {
			if tags.Content > 0 {
				score += float64(min(tags.Content, t.SoftMaxContent)) * w.Tag * t.SoftContentBonus
			} else {
				score -= w.Tag * t.SoftContentPenalty
			}
		}

	case ModeStrict:
		if hasStyle {
			if styleOverlap > 0 {
				score += float64(min(styleOverlap, t.StrictMaxStyle)) * w.Tag * t.StrictStyleBonus
			} else {
				score -= w.Tag * t.StrictStylePenalty
			}
		}
		if hasContent {
			score += float64(min(tags.Content, t.StrictMaxContent)) * w.Tag * t.StrictContentBonus
		} else if !hasStyle && m.Visual < t.StrictVisualMin {
			return Match{}, false
		}
		quality := m.Visual
		if m.HasSemantic {
			quality = m.Semantic*t.StrictQualitySemantic + m.Visual*(1-t.StrictQualitySemantic)
		}
		if quality < t.StrictQualityMin {
			return Match{}, false
		}
	}

	if m.HasSemantic {
		score += m.Semantic * w.Semantic
	}

	m.Penalty = repetitionPenalty(r.recent, wp.Path, w.RepetitionPenalty, t)
	m.Score = score - m.Penalty
	return m, true
}

// repetitionPenalty discourages re-suggesting what target showed recently.
// Each occurrence at recency index i adds 1/(i+1); the total is scaled by
// weight and capped.
func repetitionPenalty(recent []string, candidate string, weight float64, t *Tuning) float64 {
	if weight <= 0 {
		return 0
	}
	var raw float64
	for i, p := range recent {
		if p == candidate {
			raw += 1 / float64(i+1)
		}
	}
	return math.Min(raw*t.RepetitionScale*weight, t.RepetitionCap*weight)
}
