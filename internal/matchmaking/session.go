package matchmaking

import "time"

// Outbox delivers server events to one connection. Implementations must not block;
// a slow or failed send is dropped and never rolls back matchmaking state.
type Outbox interface {
	Deliver(event string, payload interface{})
}

// Session is one live connection and its matchmaking state.
type Session struct {
	ID     string
	Name   string
	RoomID string

	out   Outbox
	skips map[string]time.Time // peer id -> when this session skipped it
}

// Named reports whether the client has set a display name.
func (s *Session) Named() bool {
	return s.Name != ""
}

func (s *Session) send(event string, payload interface{}) {
	if s.out != nil {
		s.out.Deliver(event, payload)
	}
}

// Registry owns every Session record, keyed by session id.
type Registry struct {
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds a session for id. Registering an id twice keeps the first record.
func (r *Registry) Register(id string, out Outbox) *Session {
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id, out: out}
	r.sessions[id] = s
	return s
}

// SetName overwrites the display name. It reports false when the session is unknown.
func (r *Registry) SetName(id, name string) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Name = name
	return true
}

// Get returns the session for id, or nil.
func (r *Registry) Get(id string) *Session {
	return r.sessions[id]
}

// Remove drops the session record.
func (r *Registry) Remove(id string) {
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// CountNamed returns how many sessions have set a display name.
func (r *Registry) CountNamed() int {
	n := 0
	for _, s := range r.sessions {
		if s.Named() {
			n++
		}
	}
	return n
}
