package history

import "time"

// UndoState is the assignment that was on screen before a preview was
// applied. It is never persisted.
type UndoState struct {
	Previous  map[string]string
	StartedAt time.Time
	Window    time.Duration
	Message   string
}

// ExpiresAt returns when the undo window closes.
func (u *UndoState) ExpiresAt() time.Time { return u.StartedAt.Add(u.Window) }

func (u *UndoState) activeAt(now time.Time) bool {
	return now.Sub(u.StartedAt) < u.Window
}

// BeginUndo opens an undo window for previous, replacing any earlier one.
func (s *Store) BeginUndo(previous map[string]string, message string, window time.Duration) {
	prev := make(map[string]string, len(previous))
	for k, v := range previous {
		prev[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = &UndoState{
		Previous:  prev,
		StartedAt: s.now(),
		Window:    window,
		Message:   message,
	}
}

// CanUndo reports whether an undo window is open.
func (s *Store) CanUndo() bool {
	_, ok := s.Undo()
	return ok
}

// Undo returns a copy of the open undo state.
func (s *Store) Undo() (UndoState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.undo == nil || !s.undo.activeAt(s.now()) {
		return UndoState{}, false
	}
	u := *s.undo
	u.Previous = make(map[string]string, len(s.undo.Previous))
	for k, v := range s.undo.Previous {
		u.Previous[k] = v
	}
	return u, true
}

// DoUndo consumes the open undo window and returns the assignment to
// restore. It returns false once the window has expired.
func (s *Store) DoUndo() (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil || !s.undo.activeAt(s.now()) {
		return nil, false
	}
	prev := s.undo.Previous
	s.undo = nil
	return prev, true
}

// ClearExpiredUndo drops the undo state once its window has passed and
// reports whether it did.
func (s *Store) ClearExpiredUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.undo == nil || s.undo.activeAt(s.now()) {
		return false
	}
	s.undo = nil
	return true
}

// UndoRemaining returns the time left in the open undo window.
func (s *Store) UndoRemaining() (time.Duration, bool) {
	u, ok := s.Undo()
	if !ok {
		return 0, false
	}
	return max(u.ExpiresAt().Sub(s.now()), 0), true
}

// UndoMessage returns the message of the open undo window.
func (s *Store) UndoMessage() (string, bool) {
	u, ok := s.Undo()
	if !ok {
		return "", false
	}
	return u.Message, true
}
