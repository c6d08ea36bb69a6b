// Package preview is the interactive pairing preview: it shows the best
// matches for every other screen, applies the chosen alternative and keeps
// a short undo window open afterwards.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	fwlog "github.com/runger/frostwall/internal/log"
	"github.com/runger/frostwall/internal/pairing/history"
	"github.com/runger/frostwall/internal/setter"
)

// ErrNothingToUndo is returned by Undo when no undo window is open.
var ErrNothingToUndo = errors.New("nothing to undo")

// SessionOptions configures a Session.
type SessionOptions struct {
	// Current is what each screen shows before the session starts.
	Current    map[string]string
	UndoWindow time.Duration
	Logger     *slog.Logger
}

// Session applies assignments through a setter, records them in the
// history store and owns the undo window.
type Session struct {
	mu      sync.Mutex
	store   *history.Store
	setter  setter.Setter
	current map[string]string
	window  time.Duration
	logger  *slog.Logger
}

// NewSession creates a session over store and s.
func NewSession(store *history.Store, s setter.Setter, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	current := make(map[string]string, len(opts.Current))
	for k, v := range opts.Current {
		current[k] = v
	}
	return &Session{
		store:   store,
		setter:  s,
		current: current,
		window:  opts.UndoWindow,
		logger:  opts.Logger,
	}
}

// Current returns a copy of what each screen shows.
func (s *Session) Current() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAssignment(s.current)
}

// Apply shows assignment. Screens whose setter call fails keep their
// previous wallpaper. When more than one screen is known afterwards the
// full assignment is recorded. The previous assignment becomes undoable.
func (s *Session) Apply(ctx context.Context, assignment map[string]string, manual bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := copyAssignment(s.current)
	var errs []error
	applied := 0
	for _, screen := range sortedScreens(assignment) {
		path := assignment[screen]
		if err := s.setter.Set(ctx, screen, path); err != nil {
			fwlog.LogSetterFailed(s.logger, screen, path, err)
			errs = append(errs, err)
			continue
		}
		s.current[screen] = path
		applied++
	}
	if applied == 0 {
		return errors.Join(errs...)
	}

	if len(prev) > 0 && s.window > 0 {
		s.store.BeginUndo(prev, fmt.Sprintf("Applied pairing to %d screens", applied), s.window)
	}

	fwlog.LogPairingApplied(s.logger, s.current, manual)
	if len(s.current) > 1 {
		if err := s.store.RecordPairing(ctx, copyAssignment(s.current), manual); err != nil {
			fwlog.LogSaveFailed(s.logger, "record", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Undo restores the assignment shown before the last Apply, if its window
// is still open, and returns it.
func (s *Session) Undo(ctx context.Context) (map[string]string, error) {
	prev, ok := s.store.DoUndo()
	if !ok {
		return nil, ErrNothingToUndo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, screen := range sortedScreens(prev) {
		if err := s.setter.Set(ctx, screen, prev[screen]); err != nil {
			fwlog.LogSetterFailed(s.logger, screen, prev[screen], err)
			errs = append(errs, err)
			continue
		}
		s.current[screen] = prev[screen]
	}
	return copyAssignment(prev), errors.Join(errs...)
}

// ClearExpiredUndo drops an expired undo window.
func (s *Session) ClearExpiredUndo() bool {
	return s.store.ClearExpiredUndo()
}

// UndoStatus returns the open undo message and its remaining time.
func (s *Session) UndoStatus() (string, time.Duration, bool) {
	msg, ok := s.store.UndoMessage()
	if !ok {
		return "", 0, false
	}
	remaining, ok := s.store.UndoRemaining()
	return msg, remaining, ok
}

func copyAssignment(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedScreens(assignment map[string]string) []string {
	screens := make([]string, 0, len(assignment))
	for screen := range assignment {
		screens = append(screens, screen)
	}
	sort.Strings(screens)
	return screens
}
