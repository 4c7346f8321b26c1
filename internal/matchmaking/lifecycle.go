package matchmaking

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

func (c *Coordinator) register(id string, out Outbox) {
	c.sessions.Register(id, out)
	c.logger.Debug("session connected", zap.String("session_id", id))
}

// setIdentity names the session and acks. A blank name never clears an existing one,
// so a queued or paired session stays named.
func (c *Coordinator) setIdentity(id, name string) {
	s := c.sessions.Get(id)
	if s == nil {
		c.logger.Warn("set-identity for unknown session", zap.String("session_id", id))
		return
	}
	if name = c.normalizeName(name); name != "" || !s.Named() {
		c.sessions.SetName(id, name)
	} else {
		c.logger.Debug("blank rename ignored", zap.String("session_id", id), zap.String("name", s.Name))
	}
	s.send(EventIdentityAck, IdentityAck{ConnectionID: id})
}

func (c *Coordinator) normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if limit := c.cfg.NameMaxRunes; limit > 0 && utf8.RuneCountInString(name) > limit {
		name = strings.TrimSpace(string([]rune(name)[:limit]))
	}
	return name
}

// requireName answers invalid and reports false when the session has no display name yet.
func (c *Coordinator) requireName(id, event string) bool {
	s := c.sessions.Get(id)
	if s == nil {
		return false
	}
	if s.Named() {
		return true
	}
	c.logger.Warn("event before set-identity", zap.String("session_id", id), zap.String("event", event))
	s.send(EventInvalid, struct{}{})
	return false
}

// enqueue appends the session to the waiting queue unless that would break the
// queue/room invariants; such requests mean the client is out of sync and are ignored.
func (c *Coordinator) enqueue(id string) bool {
	s := c.sessions.Get(id)
	if s == nil || !s.Named() {
		return false
	}
	if c.queue.Contains(id) {
		c.logger.Warn("session already queued", zap.String("session_id", id), zap.String("name", s.Name))
		return false
	}
	if s.RoomID != "" {
		c.logger.Warn("session already in a room", zap.String("session_id", id), zap.String("room_id", s.RoomID))
		return false
	}
	c.queue.Push(id)
	return true
}

func (c *Coordinator) unqueue(id string) {
	c.queue.Remove(id)
}

// skipAndRequeue is the "next" action: remember the partner as skipped, leave, and wait again.
func (c *Coordinator) skipAndRequeue(id string) {
	if partner := c.partnerOf(id); partner != nil {
		c.skips.RecordSkip(id, partner.ID)
	}
	c.leaveRoom(id, false)
	c.enqueue(id)
}

// partnerOf returns the other member of the session's room, or nil.
func (c *Coordinator) partnerOf(id string) *Session {
	s := c.sessions.Get(id)
	if s == nil || s.RoomID == "" {
		return nil
	}
	room := c.rooms.Get(s.RoomID)
	if room == nil {
		return nil
	}
	otherID, ok := room.Other(id)
	if !ok {
		return nil
	}
	return c.sessions.Get(otherID)
}

// leaveRoom dissolves the session's room and tells the partner.
func (c *Coordinator) leaveRoom(id string, isTimeout bool) {
	s := c.sessions.Get(id)
	if s == nil || s.RoomID == "" {
		return
	}
	roomID := s.RoomID
	s.RoomID = ""

	room := c.rooms.Get(roomID)
	if room == nil {
		c.logger.Error("session references a missing room", zap.String("session_id", id), zap.String("room_id", roomID))
		return
	}
	c.rooms.Close(roomID)

	otherID, ok := room.Other(id)
	if !ok {
		c.logger.Error("session is not a member of its room", zap.String("session_id", id), zap.String("room_id", roomID))
		c.clearRoomRefs(room)
		return
	}
	other := c.sessions.Get(otherID)
	if other == nil {
		c.logger.Error("room member missing from registry", zap.String("session_id", otherID), zap.String("room_id", roomID))
		return
	}
	if other.RoomID != roomID {
		c.logger.Error("room member no longer references the room",
			zap.String("session_id", otherID),
			zap.String("room_id", roomID),
			zap.String("member_room_id", other.RoomID),
		)
		return
	}
	other.RoomID = ""
	other.send(EventPartnerLeft, PartnerLeft{PartnerConnectionID: id, WasTimeout: isTimeout})

	c.logger.Info("room closed",
		zap.String("room_id", roomID),
		zap.String("left_by", id),
		zap.Bool("timeout", isTimeout),
	)
}

// clearRoomRefs drops any member reference still pointing at room.
func (c *Coordinator) clearRoomRefs(room *Room) {
	for _, m := range room.Members {
		if s := c.sessions.Get(m); s != nil && s.RoomID == room.ID {
			s.RoomID = ""
		}
	}
}

// relay forwards payload to the partner unchanged. Without a room the message is stale and dropped.
func (c *Coordinator) relay(id, event string, payload []byte) {
	if !IsSignal(event) {
		return
	}
	partner := c.partnerOf(id)
	if partner == nil {
		c.logger.Debug("dropping signal without a partner", zap.String("session_id", id), zap.String("event", event))
		return
	}
	if len(payload) == 0 {
		if event != EventCandidate {
			return
		}
		payload = nullPayload
	}
	partner.send(event, json.RawMessage(payload))
}

func (c *Coordinator) disconnect(id string) {
	if c.sessions.Get(id) == nil {
		return
	}
	c.queue.Remove(id)
	c.leaveRoom(id, true)
	c.sessions.Remove(id)
	c.logger.Debug("session disconnected", zap.String("session_id", id))
}
