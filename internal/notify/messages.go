package notify

import "encoding/json"

// Outbound message type discriminators. The overlay client switches on
// the "type" field of every frame.
const (
	TypeUpdateProfilePicture = "updateProfilePicture"
	TypeUpdateStats          = "updateStats"
	TypeFloatingPhoto        = "floating-photo"
	TypeBigPhoto             = "big-photo"
	TypePlaySound            = "play-sound"
	TypeStopSound            = "stop-sound"
	TypeChat                 = "chat"
	TypeStatus               = "status"
	TypeRoomUser             = "roomUser"
	TypeEnvelopeEvent        = "envelope-event"
)

// StatsMessage carries a user's accumulated counters, optionally with the
// tier image to display for them.
type StatsMessage struct {
	Type       string `json:"type"`
	Username   string `json:"username"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Likes      int    `json:"likes"`
	Gifts      int    `json:"gifts"`
	Shares     int    `json:"shares"`
}

// PhotoMessage triggers a floating or big photo effect on the overlay.
type PhotoMessage struct {
	Type              string `json:"type"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	UserName          string `json:"userName"`
}

// PlaySoundMessage asks the overlay to play a sound file.
type PlaySoundMessage struct {
	Type  string `json:"type"`
	Sound string `json:"sound"`
}

// StopSoundMessage asks the overlay to stop the playing sound.
type StopSoundMessage struct {
	Type string `json:"type"`
}

// ChatMessage echoes a live chat comment to the overlay.
type ChatMessage struct {
	Type     string `json:"type"`
	UserName string `json:"userName"`
	Comment  string `json:"comment"`
}

// StatusMessage reports connection lifecycle and failures.
type StatusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomUserMessage passes the current viewer count through.
type RoomUserMessage struct {
	Type        string `json:"type"`
	ViewerCount int    `json:"viewerCount"`
}

// EnvelopeMessage passes a treasure-envelope event payload through.
type EnvelopeMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
