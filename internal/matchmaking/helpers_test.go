package matchmaking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type delivered struct {
	Event   string
	Payload interface{}
}

// recorder is an Outbox that keeps everything it was handed.
type recorder struct {
	mu     sync.Mutex
	events []delivered
}

func (r *recorder) Deliver(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, delivered{Event: event, Payload: payload})
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

func (r *recorder) last(event string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Event == event {
			return r.events[i].Payload, true
		}
	}
	return nil, false
}

func (r *recorder) matched(t *testing.T) Matched {
	t.Helper()
	p, ok := r.last(EventMatched)
	if !ok {
		t.Fatalf("no %s event delivered", EventMatched)
	}
	return p.(Matched)
}

func (r *recorder) partnerLeft(t *testing.T) PartnerLeft {
	t.Helper()
	p, ok := r.last(EventPartnerLeft)
	if !ok {
		t.Fatalf("no %s event delivered", EventPartnerLeft)
	}
	return p.(PartnerLeft)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

const testSkipWindow = time.Minute

// newTestCoordinator builds a coordinator whose handlers the test drives directly.
func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	c := NewCoordinator(Config{TickInterval: time.Hour, SkipWindow: testSkipWindow, NameMaxRunes: 16}, zaptest.NewLogger(t), opts...)
	return c, clock
}

// join registers id and sets its name, returning the session outbox.
func (c *Coordinator) join(id, name string) *recorder {
	out := &recorder{}
	c.register(id, out)
	c.setIdentity(id, name)
	return out
}

// queueAll joins and enqueues every id in order, naming each after its id.
func (c *Coordinator) queueAll(ids ...string) map[string]*recorder {
	outs := make(map[string]*recorder, len(ids))
	for _, id := range ids {
		outs[id] = c.join(id, id)
		c.enqueue(id)
	}
	return outs
}

// assertInvariants checks the queue/room/registry invariants that must hold between events.
func assertInvariants(t *testing.T, c *Coordinator) {
	t.Helper()
	for _, id := range c.queue.IDs() {
		s := c.sessions.Get(id)
		if assert.NotNil(t, s, "queued id %s not registered", id) {
			assert.Empty(t, s.RoomID, "session %s queued while in room", id)
		}
	}
	for _, r := range c.rooms.rooms {
		for _, m := range r.Members {
			s := c.sessions.Get(m)
			if assert.NotNil(t, s, "room %s member %s not registered", r.ID, m) {
				assert.Equal(t, r.ID, s.RoomID, "member %s does not point at room", m)
			}
		}
	}
	for id, s := range c.sessions.sessions {
		if s.RoomID != "" {
			assert.NotNil(t, c.rooms.Get(s.RoomID), "session %s points at missing room", id)
		}
	}
}

// entries counts stored skip entries for sessionID, expired ones included.
func (t *SkipTracker) entries(sessionID string) int {
	if s := t.registry.Get(sessionID); s != nil {
		return len(s.skips)
	}
	return 0
}

func firstPicker(int) int { return 0 }

func lastPicker(n int) int { return n - 1 }
