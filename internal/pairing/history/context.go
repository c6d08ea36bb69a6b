package history

import (
	"math"
	"time"
)

// ContextTuning shapes the screen-context table.
type ContextTuning struct {
	// HalfLife is the age at which an event counts half.
	HalfLife time.Duration
	// Lookback is how many recent events are scanned.
	Lookback int
	// DefaultDurationSecs stands in for an event that is still open.
	DefaultDurationSecs float64
	// DurationNormSecs maps a duration onto the duration factor.
	DurationNormSecs float64
	// DurationMin and DurationMax clamp the duration factor.
	DurationMin float64
	DurationMax float64
	// ManualBoost multiplies manually chosen events.
	ManualBoost float64
}

// DefaultContextTuning returns the tuned defaults.
func DefaultContextTuning() ContextTuning {
	return ContextTuning{
		HalfLife:            7 * 24 * time.Hour,
		Lookback:            600,
		DefaultDurationSecs: 90,
		DurationNormSecs:    900,
		DurationMin:         0.35,
		DurationMax:         1.6,
		ManualBoost:         1.1,
	}
}

// ScreenContextScores scores, for each wallpaper that has been shown on
// target alongside selected, how strongly recent history supports showing
// it there again. Contributions decay with age, grow with how long the
// pairing stayed, and favour manual choices. The table is normalized so
// its largest value is 1.
func (s *Store) ScreenContextScores(selected, target string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tuning
	now := s.now().Unix()
	halfLife := t.HalfLife.Seconds()

	raw := make(map[string]float64)
	scanned := 0
	for i := len(s.doc.Records) - 1; i >= 0 && scanned < t.Lookback; i-- {
		scanned++
		r := &s.doc.Records[i]

		onTarget, ok := r.Wallpapers[target]
		if !ok || onTarget == selected || !r.Contains(selected) {
			continue
		}

		age := float64(max(now-r.Timestamp, 0))
		recency := 1.0
		if halfLife > 0 {
			recency = 1 / (1 + age/halfLife)
		}

		secs := t.DefaultDurationSecs
		if r.Duration != nil {
			secs = float64(*r.Duration)
		}
		durationFactor := 1.0
		if t.DurationNormSecs > 0 {
			durationFactor = math.Min(math.Max(secs/t.DurationNormSecs, t.DurationMin), t.DurationMax)
		}

		manual := 1.0
		if r.Manual {
			manual = t.ManualBoost
		}
		raw[onTarget] += recency * durationFactor * manual
	}

	var peak float64
	for _, v := range raw {
		peak = math.Max(peak, v)
	}
	if peak > 0 {
		for k, v := range raw {
			raw[k] = v / peak
		}
	}
	return raw
}

// RecentScreenHistory returns what was shown on target in the last
// lookback events, most recent first. Events that did not cover target
// yield "" so positions stay aligned with event recency.
func (s *Store) RecentScreenHistory(target string, lookback int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(lookback, len(s.doc.Records))
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := len(s.doc.Records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.doc.Records[i].Wallpapers[target])
	}
	return out
}
