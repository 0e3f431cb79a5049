// Package notify serializes engine decisions into outbound overlay messages.
//
// The Emitter is a pure decision-to-wire mapping: one decision in, one
// message out, in order, no buffering and no state. Marshal failures are
// logged and swallowed; nothing here may fail the event-processing path.
package notify

import (
	"encoding/json"
	"log/slog"

	"github.com/kdsmedia/tapmus/internal/metrics"
	"github.com/kdsmedia/tapmus/internal/session"
)

// Sink receives serialized messages for delivery to all overlay clients.
type Sink interface {
	Broadcast(data []byte)
}

type Emitter struct {
	sink Sink
}

func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

func (e *Emitter) send(msgType string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal overlay message", "type", msgType, "error", err)
		return
	}
	metrics.OverlayMessagesTotal.WithLabelValues(msgType).Inc()
	e.sink.Broadcast(data)
}

// UpdateProfilePicture sends a user's counters together with the tier
// image selected for their like total.
func (e *Emitter) UpdateProfilePicture(username, pictureURL string, stats session.Stats) {
	e.send(TypeUpdateProfilePicture, StatsMessage{
		Type:       TypeUpdateProfilePicture,
		Username:   username,
		PictureURL: pictureURL,
		Likes:      stats.Likes,
		Gifts:      stats.GiftValue,
		Shares:     stats.Shares,
	})
}

// UpdateStats sends a user's counters without a picture change.
func (e *Emitter) UpdateStats(username string, stats session.Stats) {
	e.send(TypeUpdateStats, StatsMessage{
		Type:     TypeUpdateStats,
		Username: username,
		Likes:    stats.Likes,
		Gifts:    stats.GiftValue,
		Shares:   stats.Shares,
	})
}

func (e *Emitter) FloatingPhoto(profilePictureURL, userName string) {
	e.send(TypeFloatingPhoto, PhotoMessage{
		Type:              TypeFloatingPhoto,
		ProfilePictureURL: profilePictureURL,
		UserName:          userName,
	})
}

func (e *Emitter) BigPhoto(profilePictureURL, userName string) {
	e.send(TypeBigPhoto, PhotoMessage{
		Type:              TypeBigPhoto,
		ProfilePictureURL: profilePictureURL,
		UserName:          userName,
	})
}

func (e *Emitter) PlaySound(sound string) {
	e.send(TypePlaySound, PlaySoundMessage{Type: TypePlaySound, Sound: sound})
}

func (e *Emitter) StopSound() {
	e.send(TypeStopSound, StopSoundMessage{Type: TypeStopSound})
}

func (e *Emitter) Chat(userName, comment string) {
	e.send(TypeChat, ChatMessage{Type: TypeChat, UserName: userName, Comment: comment})
}

func (e *Emitter) Status(message string) {
	e.send(TypeStatus, StatusMessage{Type: TypeStatus, Message: message})
}

func (e *Emitter) RoomUser(viewerCount int) {
	e.send(TypeRoomUser, RoomUserMessage{Type: TypeRoomUser, ViewerCount: viewerCount})
}

func (e *Emitter) Envelope(data json.RawMessage) {
	e.send(TypeEnvelopeEvent, EnvelopeMessage{Type: TypeEnvelopeEvent, Data: data})
}
