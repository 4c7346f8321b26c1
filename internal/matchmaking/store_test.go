package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	first := &recorder{}

	s := r.Register("a", first)
	require.NotNil(t, s)
	assert.False(t, s.Named())

	again := r.Register("a", &recorder{})
	assert.Same(t, s, again, "second register keeps the original record")

	assert.True(t, r.SetName("a", "alice"))
	assert.True(t, r.SetName("a", "alicia"))
	assert.Equal(t, "alicia", r.Get("a").Name)
	assert.False(t, r.SetName("missing", "x"))

	r.Register("b", nil)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.CountNamed())

	r.Remove("a")
	assert.Nil(t, r.Get("a"))
	r.Remove("a")
	assert.Equal(t, 1, r.Len())
}

func TestWaitingQueue(t *testing.T) {
	q := NewWaitingQueue()

	assert.True(t, q.Push("a"))
	assert.True(t, q.Push("b"))
	assert.True(t, q.Push("c"))
	assert.False(t, q.Push("b"), "duplicates are rejected")
	assert.Equal(t, []string{"a", "b", "c"}, q.IDs())

	assert.True(t, q.Remove("b"))
	assert.False(t, q.Remove("b"))
	assert.False(t, q.Contains("b"))

	head, ok := q.PopHead()
	require.True(t, ok)
	assert.Equal(t, "a", head)

	assert.True(t, q.PushFront("a"))
	assert.False(t, q.PushFront("c"))
	assert.Equal(t, []string{"a", "c"}, q.IDs())

	q.PopHead()
	q.PopHead()
	_, ok = q.PopHead()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestRoomIDIsSymmetric(t *testing.T) {
	assert.Equal(t, RoomID("x", "y"), RoomID("y", "x"))
	assert.Equal(t, "x,y", RoomID("y", "x"))
}

func TestRoomTable(t *testing.T) {
	tbl := NewRoomTable()
	r := tbl.Open("b", "a")
	assert.Equal(t, "a,b", r.ID)
	assert.Same(t, r, tbl.Get("a,b"))

	other, ok := r.Other("a")
	assert.True(t, ok)
	assert.Equal(t, "b", other)
	_, ok = r.Other("z")
	assert.False(t, ok)

	tbl.Close(r.ID)
	assert.Nil(t, tbl.Get(r.ID))
	assert.Equal(t, 0, tbl.Len())
}

func TestSkipTracker(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry()
	reg.Register("a", nil)
	reg.Register("b", nil)
	skips := NewSkipTracker(reg, time.Minute, clock.Now)

	assert.False(t, skips.IsSkipped("a", "b"))

	skips.RecordSkip("a", "b")
	assert.True(t, skips.IsSkipped("a", "b"))
	assert.False(t, skips.IsSkipped("b", "a"), "skips are directional")
	assert.True(t, skips.Blocked("a", "b"))
	assert.True(t, skips.Blocked("b", "a"), "blocking is checked both ways")

	clock.Advance(time.Minute - time.Nanosecond)
	assert.True(t, skips.IsSkipped("a", "b"))

	clock.Advance(time.Nanosecond)
	assert.False(t, skips.IsSkipped("a", "b"), "entry expires once the window has elapsed")
	assert.Equal(t, 0, skips.entries("a"), "expired entry is pruned on lookup")
}

func TestSkipTrackerForgetIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a", nil)
	skips := NewSkipTracker(reg, time.Minute, nil)

	skips.RecordSkip("a", "b")
	skips.RecordSkip("a", "c")
	require.Equal(t, 2, skips.entries("a"))

	skips.Forget("a")
	assert.Equal(t, 0, skips.entries("a"))
	skips.Forget("a")
	assert.Equal(t, 0, skips.entries("a"))
	assert.False(t, skips.IsSkipped("a", "b"))

	skips.RecordSkip("missing", "a")
	assert.False(t, skips.IsSkipped("missing", "a"))
}
