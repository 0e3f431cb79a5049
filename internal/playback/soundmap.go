package playback

import (
	"fmt"
	"strings"
)

// StopKeyword is the reserved chat command that stops the active cue.
// Checked unconditionally after the map lookup so extending the map can
// never shadow it.
const StopKeyword = "ganti"

const numericCueCount = 20

// SoundMap maps normalized chat text to a sound file under the public
// asset dir. Static for the process lifetime.
type SoundMap map[string]string

// DefaultSoundMap builds the stock mapping: numeric keys "1".."20" plus
// the literal phrase keys the stream uses.
func DefaultSoundMap() SoundMap {
	m := make(SoundMap, numericCueCount+8)
	for i := 1; i <= numericCueCount; i++ {
		m[fmt.Sprintf("%d", i)] = fmt.Sprintf("sounds/%d.mp3", i)
	}
	m["5"] = "sounds/ahh.mp3"
	m["m"] = "sounds/1.mp3"
	m["assalamualaikum"] = "sounds/salam.mp3"
	m["assalamu'alaikum"] = "sounds/salam.mp3"
	m["assalamu alaikum"] = "sounds/salam.mp3"
	m["taptap yuk"] = "sounds/kentut.mp3"
	m["halo"] = "sounds/hallo.mp3"
	return m
}

// Normalize trims and case-folds chat text for map lookup and the stop
// keyword check.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Lookup returns the sound for already-normalized text.
func (m SoundMap) Lookup(normalized string) (string, bool) {
	sound, ok := m[normalized]
	return sound, ok
}
