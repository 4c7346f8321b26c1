package matchmaking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by calls that need a reply after the coordinator has stopped.
var ErrStopped = errors.New("matchmaking: coordinator stopped")

// Config holds the coordinator timings.
type Config struct {
	TickInterval time.Duration
	SkipWindow   time.Duration
	NameMaxRunes int // 0 means no limit
}

// Snapshot is a point-in-time view of the lobby.
type Snapshot struct {
	Sessions int       `json:"sessions"`
	Named    int       `json:"named"`
	Queued   int       `json:"queued"`
	Rooms    int       `json:"rooms"`
	At       time.Time `json:"at"`
}

// SnapshotHandler is called after every pairing tick. It runs on the coordinator goroutine and must not block.
type SnapshotHandler func(Snapshot)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now, for skip expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithPicker replaces the random candidate picker. pick(n) must return a value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(c *Coordinator) { c.pick = pick }
}

// Coordinator owns the registry, queue, room table and skip history.
// All mutations run on the goroutine started by Run, one event at a time.
type Coordinator struct {
	cfg    Config
	logger *zap.Logger

	sessions *Registry
	queue    *WaitingQueue
	rooms    *RoomTable
	skips    *SkipTracker

	now  func() time.Time
	pick func(n int) int

	onSnapshot SnapshotHandler

	events chan func()
	done   chan struct{}
}

// NewCoordinator creates a coordinator. Call Run to start processing.
func NewCoordinator(cfg Config, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	c := &Coordinator{
		cfg:      cfg,
		logger:   logger,
		sessions: NewRegistry(),
		queue:    NewWaitingQueue(),
		rooms:    NewRoomTable(),
		now:      time.Now,
		pick:     randomIndex,
		events:   make(chan func(), 256),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.skips = NewSkipTracker(c.sessions, cfg.SkipWindow, c.now)
	return c
}

// SetSnapshotHandler sets the callback invoked after each tick. Call before Run.
func (c *Coordinator) SetSnapshotHandler(fn SnapshotHandler) {
	c.onSnapshot = fn
}

// Run processes events and pairing ticks until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	c.logger.Info("matchmaking coordinator started",
		zap.Duration("tick", c.cfg.TickInterval),
		zap.Duration("skip_window", c.cfg.SkipWindow),
	)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("matchmaking coordinator stopped", zap.Int("sessions", c.sessions.Len()))
			return
		case fn := <-c.events:
			fn()
		case <-ticker.C:
			c.tick()
		}
	}
}

// submit queues fn for the coordinator goroutine. It is dropped once the coordinator has stopped.
func (c *Coordinator) submit(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Coordinator) tick() {
	if n := c.processQueue(); n > 0 {
		c.logger.Debug("pairing tick", zap.Int("rooms_opened", n), zap.Int("still_queued", c.queue.Len()))
	}
	if c.onSnapshot != nil {
		c.onSnapshot(c.snapshot())
	}
}

func (c *Coordinator) snapshot() Snapshot {
	return Snapshot{
		Sessions: c.sessions.Len(),
		Named:    c.sessions.CountNamed(),
		Queued:   c.queue.Len(),
		Rooms:    c.rooms.Len(),
		At:       c.now().UTC(),
	}
}

// Stats returns the current lobby snapshot.
func (c *Coordinator) Stats(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case c.events <- func() { reply <- c.snapshot() }:
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-c.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Connect registers a new connection under id, which must never have been used before.
func (c *Coordinator) Connect(id string, out Outbox) {
	c.submit(func() { c.register(id, out) })
}

// SetIdentity sets the display name of a session and acknowledges it.
func (c *Coordinator) SetIdentity(id, name string) {
	c.submit(func() { c.setIdentity(id, name) })
}

// EnterQueue puts the session in the waiting queue.
func (c *Coordinator) EnterQueue(id string) {
	c.submit(func() {
		if c.requireName(id, EventEnterQueue) {
			c.enqueue(id)
		}
	})
}

// LeaveQueue removes the session from the waiting queue.
func (c *Coordinator) LeaveQueue(id string) {
	c.submit(func() { c.unqueue(id) })
}

// LeaveRoom skips the current partner, leaves the room and re-enters the queue.
func (c *Coordinator) LeaveRoom(id string) {
	c.submit(func() {
		if c.requireName(id, EventLeaveRoom) {
			c.skipAndRequeue(id)
		}
	})
}

// ForgetSkips clears the skip history of the session.
func (c *Coordinator) ForgetSkips(id string) {
	c.submit(func() { c.skips.Forget(id) })
}

// Relay forwards a handshake message to the session's partner.
func (c *Coordinator) Relay(id, event string, payload []byte) {
	c.submit(func() {
		if c.requireName(id, event) {
			c.relay(id, event, payload)
		}
	})
}

// Disconnect reconciles queue and room state for a closed connection and forgets the session.
func (c *Coordinator) Disconnect(id string) {
	c.submit(func() { c.disconnect(id) })
}
