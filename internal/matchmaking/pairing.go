package matchmaking

import (
	"crypto/rand"
	"math/big"

	"go.uber.org/zap"
)

// randomIndex returns a cryptographically secure random index in [0, n).
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// processQueue runs one pairing pass and returns the number of rooms opened.
//
// The head of the queue is always matched first when it has an eligible partner;
// the partner is drawn uniformly at random from the eligible remainder. A head
// with no eligible partner is held back and the pass continues with the rest,
// after which held heads go back to the front in their original order.
// The pass makes at most one attempt per session queued when it started.
func (c *Coordinator) processQueue() int {
	attempts := c.queue.Len()
	if attempts < 2 {
		return 0
	}

	var held []string
	opened := 0
	for i := 0; i < attempts && c.queue.Len() >= 2; i++ {
		head, _ := c.queue.PopHead()

		candidates := make([]string, 0, c.queue.Len())
		for _, id := range c.queue.IDs() {
			if !c.skips.Blocked(head, id) {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			held = append(held, head)
			continue
		}

		partner := candidates[c.pick(len(candidates))]
		c.queue.Remove(partner)
		if c.pair(head, partner) {
			opened++
		}
	}

	for i := len(held) - 1; i >= 0; i-- {
		c.queue.PushFront(held[i])
	}
	return opened
}

// pair opens a room for s1 and s2. s1 is the initiator and sends the offer.
// Neither id may be queued when pair is called.
func (c *Coordinator) pair(id1, id2 string) bool {
	s1, s2 := c.sessions.Get(id1), c.sessions.Get(id2)

	// Unnamed sessions never enter a room.
	if s1 == nil || s2 == nil || !s1.Named() || !s2.Named() {
		c.rejectUnnamed([2]string{id1, id2}, [2]*Session{s1, s2})
		return false
	}

	if s1.RoomID != "" {
		c.logger.Warn("pairing session that still owns a room", zap.String("session_id", s1.ID), zap.String("room_id", s1.RoomID))
		c.leaveRoom(s1.ID, false)
	}
	if s2.RoomID != "" {
		c.logger.Warn("pairing session that still owns a room", zap.String("session_id", s2.ID), zap.String("room_id", s2.RoomID))
		c.leaveRoom(s2.ID, false)
	}

	room := c.rooms.Open(s1.ID, s2.ID)
	s1.RoomID = room.ID
	s2.RoomID = room.ID

	s1.send(EventMatched, Matched{RoomID: room.ID, PartnerName: s2.Name, IsInitiator: true})
	s2.send(EventMatched, Matched{RoomID: room.ID, PartnerName: s1.Name, IsInitiator: false})

	c.logger.Info("sessions matched",
		zap.String("room_id", room.ID),
		zap.String("initiator", s1.ID),
		zap.String("responder", s2.ID),
	)
	return true
}

// rejectUnnamed answers invalid to every unnamed side of a pair and sends named sides back to the queue.
func (c *Coordinator) rejectUnnamed(ids [2]string, sessions [2]*Session) {
	for i, s := range sessions {
		switch {
		case s == nil:
			c.logger.Warn("dropping unknown session from pairing", zap.String("session_id", ids[i]))
		case !s.Named():
			c.logger.Warn("dropping unnamed session from pairing", zap.String("session_id", ids[i]))
			s.send(EventInvalid, struct{}{})
		default:
			c.enqueue(s.ID)
		}
	}
}
