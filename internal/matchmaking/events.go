package matchmaking

import "encoding/json"

// Client -> server events.
const (
	EventSetIdentity = "set-identity"
	EventEnterQueue  = "enter-queue"
	EventLeaveQueue  = "leave-queue"
	EventLeaveRoom   = "leave-room"
	EventForgetSkips = "forget-skips"
)

// Server -> client events.
const (
	EventIdentityAck = "identity-ack"
	EventInvalid     = "invalid"
	EventMatched     = "matched"
	EventPartnerLeft = "partner-left"
)

// Handshake events, relayed verbatim between room members in both directions.
const (
	EventOffer     = "offer"
	EventAnswer    = "answer"
	EventCandidate = "candidate"
)

// IsSignal reports whether event is one of the relayed handshake kinds.
func IsSignal(event string) bool {
	switch event {
	case EventOffer, EventAnswer, EventCandidate:
		return true
	}
	return false
}

// IdentityAck confirms set-identity.
type IdentityAck struct {
	ConnectionID string `json:"connectionId"`
}

// Matched tells a session it has been paired. Exactly one side has IsInitiator set.
type Matched struct {
	RoomID      string `json:"roomId"`
	PartnerName string `json:"partnerName"`
	IsInitiator bool   `json:"isInitiator"`
}

// PartnerLeft tells the remaining member that the room is gone.
type PartnerLeft struct {
	PartnerConnectionID string `json:"partnerConnectionId"`
	WasTimeout          bool   `json:"wasTimeout"`
}

// nullPayload terminates the candidate stream.
var nullPayload = json.RawMessage("null")
