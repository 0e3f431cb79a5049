package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kdsmedia/tapmus/internal/live"
	"github.com/kdsmedia/tapmus/internal/metrics"
	"github.com/kdsmedia/tapmus/internal/playback"
)

// handleEvent dispatches one live event to its decision handler. Runs on
// the actor goroutine; every handler completes before the next event.
func (e *Engine) handleEvent(ev live.Event) {
	switch ev := ev.(type) {
	case live.ConnectedEvent:
		e.emitter.Status(fmt.Sprintf("connected to room %s", ev.RoomID))

	case live.DisconnectedEvent:
		slog.Info("Live stream disconnected", "username", e.username)
		e.teardown()
		e.emitter.Status("disconnected")

	case live.StreamEndEvent:
		slog.Info("Live stream ended", "username", e.username, "action_id", ev.ActionID)
		e.teardown()
		e.emitter.Status("stream ended")

	case live.MemberEvent:
		e.handleMember(ev)

	case live.GiftEvent:
		e.handleGift(ev)

	case live.LikeEvent:
		e.handleLike(ev)

	case live.ShareEvent:
		e.handleShare(ev)

	case live.ChatEvent:
		e.handleChat(ev)

	case live.EnvelopeEvent:
		e.emitter.Envelope(ev.Data)
		e.requestPlay(soundEnvelope)

	case live.RoomUserEvent:
		e.emitter.RoomUser(ev.ViewerCount)
	}
}

func (e *Engine) handleMember(ev live.MemberEvent) {
	slog.Debug("Member joined", "user", ev.UniqueID)
	e.store.SetAvatar(ev.UniqueID, ev.ProfilePictureURL)
	e.emitter.FloatingPhoto(ev.ProfilePictureURL, ev.UniqueID)
	e.requestPlay(soundJoin)
}

func (e *Engine) handleGift(ev live.GiftEvent) {
	// A streakable gift in progress: only the terminal event carries the
	// final repeat count, so nothing is recorded yet.
	if ev.GiftType == 1 && !ev.RepeatEnd {
		slog.Debug("Gift streak in progress", "user", ev.UniqueID, "gift", ev.GiftName, "repeat", ev.RepeatCount)
		return
	}

	e.store.SetAvatar(ev.UniqueID, ev.ProfilePictureURL)
	e.store.RecordGiftValue(ev.UniqueID, giftValue(ev))
	slog.Info("Gift received", "user", ev.UniqueID, "gift", ev.GiftName, "repeat", ev.RepeatCount)

	e.emitter.BigPhoto(ev.ProfilePictureURL, ev.UniqueID)
	e.requestPlay(soundGift)
	e.emitter.UpdateStats(ev.UniqueID, e.store.Snapshot(ev.UniqueID))
}

// giftValue is repeat count times the per-unit diamond value from the
// event's gift metadata. Missing or malformed fields contribute zero.
func giftValue(ev live.GiftEvent) int {
	if ev.RepeatCount <= 0 || ev.DiamondCount <= 0 {
		return 0
	}
	return ev.RepeatCount * ev.DiamondCount
}

func (e *Engine) handleLike(ev live.LikeEvent) {
	e.store.SetAvatar(ev.UniqueID, ev.ProfilePictureURL)
	total := e.store.RecordLike(ev.UniqueID, ev.LikeCount)
	slog.Debug("Likes received", "user", ev.UniqueID, "batch", ev.LikeCount, "total", total)

	e.emitter.UpdateProfilePicture(ev.UniqueID, e.tiers.ForLikes(total), e.store.Snapshot(ev.UniqueID))
	e.staggerPhotos(ev.LikeCount, ev.ProfilePictureURL, ev.UniqueID)

	if ev.LikeCount >= e.opts.BigLikeThreshold {
		e.requestPlay(soundBigLike)
	}
}

// staggerPhotos emits count floating photos spaced by the configured
// interval: the first immediately, the rest via clock timers that post
// back onto the actor. The current epoch stamped onto each timer cancels
// them all if the connection is replaced before they fire.
func (e *Engine) staggerPhotos(count int, pictureURL, userName string) {
	if count <= 0 {
		return
	}

	e.emitter.FloatingPhoto(pictureURL, userName)
	epoch := e.epoch
	for i := 1; i < count; i++ {
		metrics.StaggeredPhotosScheduled.Inc()
		timer := e.clock.NewTimer(time.Duration(i) * e.opts.LikeStaggerInterval)
		go func() {
			defer timer.Stop()
			select {
			case <-timer.Chan():
				e.post(cmdStaggeredPhoto{epoch: epoch, pictureURL: pictureURL, userName: userName})
			case <-e.stopCh:
			}
		}()
	}
}

func (e *Engine) handleShare(ev live.ShareEvent) {
	e.store.SetAvatar(ev.UniqueID, ev.ProfilePictureURL)
	e.store.RecordShare(ev.UniqueID)
	slog.Debug("Stream shared", "user", ev.UniqueID)

	e.emitter.FloatingPhoto(ev.ProfilePictureURL, ev.UniqueID)
	e.requestPlay(soundShare)
	e.emitter.UpdateStats(ev.UniqueID, e.store.Snapshot(ev.UniqueID))
}

func (e *Engine) handleChat(ev live.ChatEvent) {
	slog.Debug("Chat comment", "user", ev.UniqueID, "user_id", ev.UserID)
	e.store.SetAvatar(ev.UniqueID, ev.ProfilePictureURL)
	e.emitter.Chat(ev.UniqueID, ev.Comment)

	normalized := playback.Normalize(ev.Comment)
	if sound, ok := e.sounds.Lookup(normalized); ok {
		e.requestPlay(sound)
	}

	// The stop keyword is checked unconditionally after the map lookup so
	// a future mapping entry can never shadow it.
	if normalized == playback.StopKeyword {
		e.stopSound()
	}
}

// requestPlay asks the arbiter for the audio channel and emits the play
// message only if it was granted; a busy channel drops the cue.
func (e *Engine) requestPlay(sound string) {
	if !e.arbiter.RequestPlay() {
		slog.Debug("Sound already playing, dropping cue", "sound", sound)
		metrics.SoundRequestsTotal.WithLabelValues("dropped").Inc()
		return
	}
	metrics.SoundRequestsTotal.WithLabelValues("played").Inc()
	metrics.SoundActive.Set(1)
	e.emitter.PlaySound(sound)
}

// stopSound ends the active cue immediately, if any.
func (e *Engine) stopSound() {
	if e.arbiter.Stop() {
		metrics.SoundRequestsTotal.WithLabelValues("stopped").Inc()
		metrics.SoundActive.Set(0)
		e.emitter.StopSound()
	}
}
