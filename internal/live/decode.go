package live

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// flexInt decodes a JSON number, a numeric string, or null. Anything else
// decodes to zero instead of failing the frame: a malformed counter must
// contribute nothing, never fault the stream.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			*f = flexInt(n)
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*f = flexInt(int(n))
	return nil
}

// frame is the envelope every bridge message arrives in.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type userData struct {
	UniqueID          string `json:"uniqueId"`
	UserID            string `json:"userId"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

func (d userData) user() User {
	return User{
		UniqueID:          d.UniqueID,
		UserID:            d.UserID,
		ProfilePictureURL: d.ProfilePictureURL,
	}
}

// decodeFrame maps one bridge frame to an event variant.
// Unknown kinds return (nil, nil) and are skipped by the caller.
func decodeFrame(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed bridge frame: %w", err)
	}

	switch f.Event {
	case "connected":
		var d struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed connected payload: %w", err)
		}
		return ConnectedEvent{RoomID: d.RoomID}, nil

	case "disconnected":
		return DisconnectedEvent{}, nil

	case "streamEnd":
		var d struct {
			ActionID flexInt `json:"actionId"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed streamEnd payload: %w", err)
		}
		return StreamEndEvent{ActionID: int(d.ActionID)}, nil

	case "member":
		var d userData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed member payload: %w", err)
		}
		return MemberEvent{User: d.user()}, nil

	case "gift":
		var d struct {
			userData
			GiftName     string  `json:"giftName"`
			GiftType     flexInt `json:"giftType"`
			RepeatCount  flexInt `json:"repeatCount"`
			RepeatEnd    bool    `json:"repeatEnd"`
			DiamondCount flexInt `json:"diamondCount"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed gift payload: %w", err)
		}
		return GiftEvent{
			User:         d.user(),
			GiftName:     d.GiftName,
			GiftType:     int(d.GiftType),
			RepeatCount:  int(d.RepeatCount),
			RepeatEnd:    d.RepeatEnd,
			DiamondCount: int(d.DiamondCount),
		}, nil

	case "like":
		var d struct {
			userData
			LikeCount flexInt `json:"likeCount"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed like payload: %w", err)
		}
		return LikeEvent{User: d.user(), LikeCount: int(d.LikeCount)}, nil

	case "share":
		var d userData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed share payload: %w", err)
		}
		return ShareEvent{User: d.user()}, nil

	case "chat":
		var d struct {
			userData
			Comment string `json:"comment"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed chat payload: %w", err)
		}
		return ChatEvent{User: d.user(), Comment: d.Comment}, nil

	case "envelope":
		var d userData
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed envelope payload: %w", err)
		}
		return EnvelopeEvent{User: d.user(), Data: f.Data}, nil

	case "roomUser":
		var d struct {
			ViewerCount flexInt `json:"viewerCount"`
		}
		if err := json.Unmarshal(f.Data, &d); err != nil {
			return nil, fmt.Errorf("malformed roomUser payload: %w", err)
		}
		return RoomUserEvent{ViewerCount: int(d.ViewerCount)}, nil
	}

	return nil, nil
}
