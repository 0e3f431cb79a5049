package live

import "encoding/json"

// Event is the closed set of live event variants. The engine consumes
// them through a single type switch, so adding a kind here surfaces every
// dispatch site that needs updating.
type Event interface{ liveEvent() }

type baseEvent struct{}

func (baseEvent) liveEvent() {}

// User identifies the live viewer an event is attributed to.
type User struct {
	UniqueID          string
	UserID            string
	ProfilePictureURL string
}

// ConnectedEvent signals the bridge established the upstream connection.
type ConnectedEvent struct {
	baseEvent
	RoomID string
}

// DisconnectedEvent signals the upstream connection dropped.
type DisconnectedEvent struct {
	baseEvent
}

// StreamEndEvent signals the host ended the stream.
type StreamEndEvent struct {
	baseEvent
	ActionID int
}

// MemberEvent signals a viewer joined the stream.
type MemberEvent struct {
	baseEvent
	User
}

// GiftEvent carries one gift notification. For streakable gifts
// (GiftType == 1) every streak tick arrives as its own event and only the
// one with RepeatEnd set carries the final repeat count.
type GiftEvent struct {
	baseEvent
	User
	GiftName     string
	GiftType     int
	RepeatCount  int
	RepeatEnd    bool
	DiamondCount int
}

// LikeEvent carries a batch of likes from one viewer.
type LikeEvent struct {
	baseEvent
	User
	LikeCount int
}

// ShareEvent signals a viewer shared the stream.
type ShareEvent struct {
	baseEvent
	User
}

// ChatEvent carries one chat comment.
type ChatEvent struct {
	baseEvent
	User
	Comment string
}

// EnvelopeEvent carries a treasure-envelope drop with its raw payload.
type EnvelopeEvent struct {
	baseEvent
	User
	Data json.RawMessage
}

// RoomUserEvent carries the current viewer count.
type RoomUserEvent struct {
	baseEvent
	ViewerCount int
}

// Kind returns the wire name of an event, used for logs and metrics.
func Kind(ev Event) string {
	switch ev.(type) {
	case ConnectedEvent:
		return "connected"
	case DisconnectedEvent:
		return "disconnected"
	case StreamEndEvent:
		return "streamEnd"
	case MemberEvent:
		return "member"
	case GiftEvent:
		return "gift"
	case LikeEvent:
		return "like"
	case ShareEvent:
		return "share"
	case ChatEvent:
		return "chat"
	case EnvelopeEvent:
		return "envelope"
	case RoomUserEvent:
		return "roomUser"
	default:
		return "unknown"
	}
}
