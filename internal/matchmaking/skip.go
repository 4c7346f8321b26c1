package matchmaking

import "time"

// SkipTracker remembers which partners a session skipped and for how long to avoid them.
// Entries live on the Session; expired ones are pruned when looked up.
type SkipTracker struct {
	registry *Registry
	window   time.Duration
	now      func() time.Time
}

// NewSkipTracker creates a tracker over registry with the given avoidance window.
func NewSkipTracker(registry *Registry, window time.Duration, now func() time.Time) *SkipTracker {
	if now == nil {
		now = time.Now
	}
	return &SkipTracker{registry: registry, window: window, now: now}
}

// RecordSkip marks peerID as skipped by sessionID as of now.
func (t *SkipTracker) RecordSkip(sessionID, peerID string) {
	s := t.registry.Get(sessionID)
	if s == nil {
		return
	}
	if s.skips == nil {
		s.skips = make(map[string]time.Time)
	}
	s.skips[peerID] = t.now()
}

// IsSkipped reports whether sessionID skipped peerID within the window.
// An expired entry is deleted as a side effect.
func (t *SkipTracker) IsSkipped(sessionID, peerID string) bool {
	s := t.registry.Get(sessionID)
	if s == nil || s.skips == nil {
		return false
	}
	at, ok := s.skips[peerID]
	if !ok {
		return false
	}
	if t.now().Sub(at) < t.window {
		return true
	}
	delete(s.skips, peerID)
	return false
}

// Blocked reports whether either session skipped the other within the window.
func (t *SkipTracker) Blocked(a, b string) bool {
	return t.IsSkipped(a, b) || t.IsSkipped(b, a)
}

// Forget clears the whole skip history of sessionID.
func (t *SkipTracker) Forget(sessionID string) {
	if s := t.registry.Get(sessionID); s != nil {
		s.skips = nil
	}
}
