package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRecords bounds the event log when Options leaves it unset.
const DefaultMaxRecords = 1000

// Options configures a Store.
type Options struct {
	// MaxRecords is the event log bound. Oldest events are pruned first.
	MaxRecords int
	// Persister stores the document. Nil keeps the store in memory.
	Persister Persister
	// Context tunes screen-context scoring.
	Context ContextTuning
	// Logger is the structured logger. Nil uses slog.Default().
	Logger *slog.Logger
	// Now is the clock. Nil uses time.Now.
	Now func() time.Time
}

// DefaultOptions returns options with the default record bound and
// context tuning.
func DefaultOptions() Options {
	return Options{
		MaxRecords: DefaultMaxRecords,
		Context:    DefaultContextTuning(),
	}
}

// Store is the pairing history and affinity table. It is safe for
// concurrent use.
type Store struct {
	mu sync.RWMutex

	doc   Document
	index map[pairKey]int

	// openStart is the Unix start of the pairing currently on screen.
	openStart *int64
	undo      *UndoState

	maxRecords int
	persister  Persister
	tuning     ContextTuning
	logger     *slog.Logger
	now        func() time.Time
}

// New returns an empty store. Nothing is loaded from the persister.
func New(opts Options) *Store {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	if opts.Context == (ContextTuning{}) {
		opts.Context = DefaultContextTuning()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		index:      make(map[pairKey]int),
		maxRecords: opts.MaxRecords,
		persister:  opts.Persister,
		tuning:     opts.Context,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

// Open loads the store from opts.Persister. The returned store is always
// usable: a missing document yields an empty store and a nil error, while
// an unreadable or corrupt one yields an empty store and the load error,
// which callers may log and ignore.
func Open(ctx context.Context, opts Options) (*Store, error) {
	s := New(opts)
	if s.persister == nil {
		return s, nil
	}

	doc, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s, nil
		}
		return s, fmt.Errorf("load pairing history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = *doc
	s.sanitize()
	s.prune()

	// A trailing event without a duration was still on screen when the
	// previous process exited.
	if n := len(s.doc.Records); n > 0 && !s.doc.Records[n-1].Closed() {
		start := s.doc.Records[n-1].Timestamp
		s.openStart = &start
	}

	s.logger.Debug("pairing history loaded",
		"records", len(s.doc.Records),
		"affinities", len(s.doc.AffinityScores),
	)
	return s, nil
}

// RecordPairing closes the pairing currently on screen, back-filling its
// duration and folding it into the affinity table, then appends assignment
// as the new open pairing. Affinities of the new pairing are only updated
// once it is closed in turn. The log is pruned and the document saved; a
// save error is returned after the in-memory state has been updated.
func (s *Store) RecordPairing(ctx context.Context, assignment map[string]string, manual bool) error {
	if len(assignment) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	s.closeCurrent(now)

	event := PairingEvent{
		ID:         uuid.NewString(),
		Wallpapers: make(map[string]string, len(assignment)),
		Timestamp:  now,
		Manual:     manual,
	}
	for screen, path := range assignment {
		event.Wallpapers[screen] = path
	}
	s.doc.Records = append(s.doc.Records, event)
	s.openStart = &now

	s.prune()

	s.logger.Debug("pairing recorded",
		"id", event.ID,
		"screens", len(event.Wallpapers),
		"manual", manual,
	)
	return s.save(ctx)
}

// Flush closes the open pairing, if any, and saves. Call it on shutdown so
// the last pairing's duration is not lost.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openStart == nil {
		return nil
	}
	s.closeCurrent(s.now().Unix())
	return s.save(ctx)
}

// Clear drops every event and affinity and saves the empty document.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = Document{}
	s.index = make(map[pairKey]int)
	s.openStart = nil
	return s.save(ctx)
}

// RebuildAffinity recomputes the affinity table by replaying every closed
// event in order. The result equals what incremental recording of the
// retained events produced.
func (s *Store) RebuildAffinity(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.AffinityScores = nil
	s.index = make(map[pairKey]int)
	for i := range s.doc.Records {
		r := &s.doc.Records[i]
		if !r.Closed() {
			continue
		}
		s.updatePairs(r.Paths(), *r.Duration)
	}

	s.logger.Info("affinity rebuilt",
		"records", len(s.doc.Records),
		"affinities", len(s.doc.AffinityScores),
	)
	return s.save(ctx)
}

// Affinity returns the learned score between a and b, or 0 when they have
// never been closed out together. Argument order does not matter.
func (s *Store) Affinity(a, b string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[keyFor(a, b)]; ok {
		return s.doc.AffinityScores[i].Score
	}
	return 0
}

// AffinitiesFor returns the affinity score of every wallpaper paired with
// path, keyed by the partner's path.
func (s *Store) AffinitiesFor(path string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64)
	for i := range s.doc.AffinityScores {
		a := &s.doc.AffinityScores[i]
		if other := a.Other(path); other != "" {
			out[other] = a.Score
		}
	}
	return out
}

// Affinities returns a copy of the affinity table ordered by score
// descending, ties by path.
func (s *Store) Affinities() []AffinityScore {
	s.mu.RLock()
	out := make([]AffinityScore, len(s.doc.AffinityScores))
	copy(out, s.doc.AffinityScores)
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].WallpaperA != out[j].WallpaperA {
			return out[i].WallpaperA < out[j].WallpaperA
		}
		return out[i].WallpaperB < out[j].WallpaperB
	})
	return out
}

// Records returns a copy of the event log, oldest first.
func (s *Store) Records() []PairingEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PairingEvent, len(s.doc.Records))
	for i, r := range s.doc.Records {
		out[i] = r.clone()
	}
	return out
}

// RecordCount returns the number of retained events.
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Records)
}

// AffinityCount returns the number of affinity pairs.
func (s *Store) AffinityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.AffinityScores)
}

// LastMultiScreenPairing returns the most recent assignment that covered
// more than one screen.
func (s *Store) LastMultiScreenPairing() (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.doc.Records) - 1; i >= 0; i-- {
		if len(s.doc.Records[i].Wallpapers) > 1 {
			return s.doc.Records[i].clone().Wallpapers, true
		}
	}
	return nil, false
}

// PairingStart returns when the pairing currently on screen was applied.
func (s *Store) PairingStart() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.openStart == nil {
		return time.Time{}, false
	}
	return time.Unix(*s.openStart, 0), true
}

// closeCurrent back-fills the open event's duration and updates its
// pairwise affinities. Caller holds mu.
func (s *Store) closeCurrent(now int64) {
	if s.openStart == nil {
		return
	}
	start := *s.openStart
	s.openStart = nil

	n := len(s.doc.Records)
	if n == 0 {
		return
	}
	last := &s.doc.Records[n-1]
	if last.Closed() {
		return
	}
	duration := max(now-start, 0)
	last.Duration = &duration
	s.updatePairs(last.Paths(), duration)
}

// updatePairs folds one closed co-display of paths into every pair.
func (s *Store) updatePairs(paths []string, duration int64) {
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			s.updateAffinity(paths[i], paths[j], duration)
		}
	}
}

// updateAffinity records one co-display of a and b lasting duration
// seconds. Caller holds mu.
func (s *Store) updateAffinity(a, b string, duration int64) {
	if a == b {
		return
	}
	k := keyFor(a, b)
	if i, ok := s.index[k]; ok {
		e := &s.doc.AffinityScores[i]
		e.PairCount++
		e.AvgDurationSecs += (float64(duration) - e.AvgDurationSecs) / float64(e.PairCount)
		e.Score = BaseScore(e.PairCount, e.AvgDurationSecs)
		return
	}
	s.doc.AffinityScores = append(s.doc.AffinityScores, AffinityScore{
		WallpaperA:      k.a,
		WallpaperB:      k.b,
		Score:           BaseScore(1, float64(duration)),
		PairCount:       1,
		AvgDurationSecs: float64(duration),
	})
	s.index[k] = len(s.doc.AffinityScores) - 1
}

// prune drops the oldest events beyond maxRecords and every affinity whose
// paths are no longer both referenced by a retained event. Caller holds mu.
func (s *Store) prune() {
	if excess := len(s.doc.Records) - s.maxRecords; excess > 0 {
		s.doc.Records = append([]PairingEvent(nil), s.doc.Records[excess:]...)
		s.logger.Debug("pairing history pruned", "dropped", excess)
	}

	active := make(map[string]struct{})
	for i := range s.doc.Records {
		for _, p := range s.doc.Records[i].Wallpapers {
			active[p] = struct{}{}
		}
	}

	kept := s.doc.AffinityScores[:0]
	for _, a := range s.doc.AffinityScores {
		_, okA := active[a.WallpaperA]
		_, okB := active[a.WallpaperB]
		if okA && okB {
			kept = append(kept, a)
		}
	}
	s.doc.AffinityScores = kept
	s.reindex()
}

// sanitize repairs a loaded document: events without wallpapers are
// dropped, affinity pairs are put in canonical order, and self-pairs and
// duplicates are removed. Caller holds mu.
func (s *Store) sanitize() {
	records := s.doc.Records[:0]
	for _, r := range s.doc.Records {
		if len(r.Wallpapers) == 0 {
			continue
		}
		records = append(records, r)
	}
	s.doc.Records = records

	seen := make(map[pairKey]struct{}, len(s.doc.AffinityScores))
	kept := s.doc.AffinityScores[:0]
	for _, a := range s.doc.AffinityScores {
		if a.WallpaperA == "" || a.WallpaperB == "" || a.WallpaperA == a.WallpaperB {
			continue
		}
		k := keyFor(a.WallpaperA, a.WallpaperB)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		a.WallpaperA, a.WallpaperB = k.a, k.b
		kept = append(kept, a)
	}
	s.doc.AffinityScores = kept
}

func (s *Store) reindex() {
	s.index = make(map[pairKey]int, len(s.doc.AffinityScores))
	for i, a := range s.doc.AffinityScores {
		s.index[pairKey{a.WallpaperA, a.WallpaperB}] = i
	}
}

// save writes the document. Caller holds mu.
func (s *Store) save(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, &s.doc); err != nil {
		return fmt.Errorf("save pairing history: %w", err)
	}
	return nil
}
