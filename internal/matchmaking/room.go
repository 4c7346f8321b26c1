package matchmaking

import (
	"sort"
	"strings"
)

// Room is an exclusive pairing of two sessions.
type Room struct {
	ID      string
	Members [2]string
}

// Other returns the member that is not id.
func (r *Room) Other(id string) (string, bool) {
	switch id {
	case r.Members[0]:
		return r.Members[1], true
	case r.Members[1]:
		return r.Members[0], true
	}
	return "", false
}

// RoomID derives the room id from the two member ids; the order of a and b does not matter.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// RoomTable maps room ids to active rooms.
type RoomTable struct {
	rooms map[string]*Room
}

// NewRoomTable creates an empty room table.
func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[string]*Room)}
}

// Open inserts the room for a and b and returns it.
func (t *RoomTable) Open(a, b string) *Room {
	r := &Room{ID: RoomID(a, b), Members: [2]string{a, b}}
	t.rooms[r.ID] = r
	return r
}

// Get returns the room for id, or nil.
func (t *RoomTable) Get(id string) *Room {
	return t.rooms[id]
}

// Close deletes the room.
func (t *RoomTable) Close(id string) {
	delete(t.rooms, id)
}

// Len returns the number of active rooms.
func (t *RoomTable) Len() int {
	return len(t.rooms)
}
