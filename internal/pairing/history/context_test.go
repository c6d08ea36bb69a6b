package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenContextScores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, clock := newTestStore(t, DefaultOptions())

	// y shown on HDMI next to sel, auto, 900s.
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/y"}, false))
	clock.Advance(900 * time.Second)
	// x shown on HDMI next to sel, manual, 900s.
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/x"}, true))
	clock.Advance(900 * time.Second)
	// sel itself on the target screen: ignored.
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/x", "HDMI-A-1": "/w/sel"}, true))
	clock.Advance(900 * time.Second)
	// sel absent: ignored.
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/q", "HDMI-A-1": "/w/z"}, true))
	clock.Advance(900 * time.Second)
	require.NoError(t, s.Flush(ctx))

	scores := s.ScreenContextScores("/w/sel", "HDMI-A-1")
	require.Len(t, scores, 2)

	halfLife := (7 * 24 * time.Hour).Seconds()
	recency := func(ageSecs float64) float64 { return 1 / (1 + ageSecs/halfLife) }
	x := recency(1800) * 1.0 * 1.1
	y := recency(3600) * 1.0 * 1.0

	assert.InDelta(t, 1.0, scores["/w/x"], 1e-9)
	assert.InDelta(t, y/x, scores["/w/y"], 1e-9)

	assert.Empty(t, s.ScreenContextScores("/w/sel", "eDP-1"))
	assert.Empty(t, s.ScreenContextScores("/w/unknown", "HDMI-A-1"))
}

func TestScreenContextScores_DurationClamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, clock := newTestStore(t, DefaultOptions())

	// Very short and very long pairings hit the clamp bounds.
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/short"}, false))
	clock.Advance(10 * time.Second)
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/long"}, false))
	clock.Advance(10 * time.Hour)
	require.NoError(t, s.Flush(ctx))

	halfLife := (7 * 24 * time.Hour).Seconds()
	recency := func(ageSecs float64) float64 { return 1 / (1 + ageSecs/halfLife) }
	long := recency(10*3600) * 1.6
	short := recency(10*3600+10) * 0.35

	scores := s.ScreenContextScores("/w/sel", "HDMI-A-1")
	assert.InDelta(t, 1.0, scores["/w/long"], 1e-9)
	assert.InDelta(t, short/long, scores["/w/short"], 1e-9)
}

func TestScreenContextScores_Lookback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	opts := DefaultOptions()
	opts.Context.Lookback = 1
	s, clock := newTestStore(t, opts)

	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/old"}, true))
	clock.Advance(time.Minute)
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/sel", "HDMI-A-1": "/w/new"}, true))

	scores := s.ScreenContextScores("/w/sel", "HDMI-A-1")
	assert.Equal(t, map[string]float64{"/w/new": 1}, scores)
}

func TestRecentScreenHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, DefaultOptions())

	assert.Nil(t, s.RecentScreenHistory("HDMI-A-1", 20))

	require.NoError(t, s.RecordPairing(ctx, map[string]string{"HDMI-A-1": "/w/a"}, true))
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"DP-1": "/w/b"}, true))
	require.NoError(t, s.RecordPairing(ctx, map[string]string{"HDMI-A-1": "/w/c", "DP-1": "/w/b"}, true))

	assert.Equal(t, []string{"/w/c", "", "/w/a"}, s.RecentScreenHistory("HDMI-A-1", 20))
	assert.Equal(t, []string{"/w/c", ""}, s.RecentScreenHistory("HDMI-A-1", 2))
	assert.Nil(t, s.RecentScreenHistory("HDMI-A-1", 0))
}
