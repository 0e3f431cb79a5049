package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame_Connected(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"connected","data":{"roomId":"7123456"}}`))
	require.NoError(t, err)
	assert.Equal(t, ConnectedEvent{RoomID: "7123456"}, ev)
}

func TestDecodeFrame_Disconnected(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"disconnected","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, DisconnectedEvent{}, ev)
}

func TestDecodeFrame_Member(t *testing.T) {
	raw := []byte(`{"event":"member","data":{"uniqueId":"alice","userId":"42","profilePictureUrl":"https://cdn/a.jpg"}}`)

	ev, err := decodeFrame(raw)
	require.NoError(t, err)

	member, ok := ev.(MemberEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", member.User.UniqueID)
	assert.Equal(t, "42", member.User.UserID)
	assert.Equal(t, "https://cdn/a.jpg", member.User.ProfilePictureURL)
}

func TestDecodeFrame_Gift(t *testing.T) {
	raw := []byte(`{"event":"gift","data":{"uniqueId":"bob","giftName":"Rose","giftType":1,"repeatCount":5,"repeatEnd":true,"diamondCount":10}}`)

	ev, err := decodeFrame(raw)
	require.NoError(t, err)

	gift, ok := ev.(GiftEvent)
	require.True(t, ok)
	assert.Equal(t, "Rose", gift.GiftName)
	assert.Equal(t, 1, gift.GiftType)
	assert.Equal(t, 5, gift.RepeatCount)
	assert.True(t, gift.RepeatEnd)
	assert.Equal(t, 10, gift.DiamondCount)
}

func TestDecodeFrame_Like(t *testing.T) {
	raw := []byte(`{"event":"like","data":{"uniqueId":"carol","likeCount":3}}`)

	ev, err := decodeFrame(raw)
	require.NoError(t, err)

	like, ok := ev.(LikeEvent)
	require.True(t, ok)
	assert.Equal(t, "carol", like.User.UniqueID)
	assert.Equal(t, 3, like.LikeCount)
}

func TestDecodeFrame_Chat(t *testing.T) {
	raw := []byte(`{"event":"chat","data":{"uniqueId":"dave","comment":"taptap yuk"}}`)

	ev, err := decodeFrame(raw)
	require.NoError(t, err)

	chat, ok := ev.(ChatEvent)
	require.True(t, ok)
	assert.Equal(t, "dave", chat.User.UniqueID)
	assert.Equal(t, "taptap yuk", chat.Comment)
}

func TestDecodeFrame_EnvelopeKeepsRawPayload(t *testing.T) {
	raw := []byte(`{"event":"envelope","data":{"uniqueId":"erin","coins":99}}`)

	ev, err := decodeFrame(raw)
	require.NoError(t, err)

	env, ok := ev.(EnvelopeEvent)
	require.True(t, ok)
	assert.Equal(t, "erin", env.User.UniqueID)
	assert.JSONEq(t, `{"uniqueId":"erin","coins":99}`, string(env.Data))
}

func TestDecodeFrame_RoomUser(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"roomUser","data":{"viewerCount":128}}`))
	require.NoError(t, err)
	assert.Equal(t, RoomUserEvent{ViewerCount: 128}, ev)
}

func TestDecodeFrame_StreamEnd(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"streamEnd","data":{"actionId":3}}`))
	require.NoError(t, err)
	assert.Equal(t, StreamEndEvent{ActionID: 3}, ev)
}

func TestDecodeFrame_Share(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"share","data":{"uniqueId":"frank"}}`))
	require.NoError(t, err)

	share, ok := ev.(ShareEvent)
	require.True(t, ok)
	assert.Equal(t, "frank", share.User.UniqueID)
}

func TestDecodeFrame_UnknownKindSkipped(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":"subscribe","data":{"uniqueId":"gary"}}`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeFrame_MalformedJSON(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"event":`))
	assert.Error(t, err)
	assert.Nil(t, ev)
}

func TestDecodeFrame_TolerantNumerics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"numeric string", `{"event":"like","data":{"uniqueId":"a","likeCount":"7"}}`, 7},
		{"null", `{"event":"like","data":{"uniqueId":"a","likeCount":null}}`, 0},
		{"garbage string", `{"event":"like","data":{"uniqueId":"a","likeCount":"lots"}}`, 0},
		{"object", `{"event":"like","data":{"uniqueId":"a","likeCount":{"n":3}}}`, 0},
		{"missing", `{"event":"like","data":{"uniqueId":"a"}}`, 0},
		{"float truncates", `{"event":"like","data":{"uniqueId":"a","likeCount":2.9}}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeFrame([]byte(tt.raw))
			require.NoError(t, err)

			like, ok := ev.(LikeEvent)
			require.True(t, ok)
			assert.Equal(t, tt.want, like.LikeCount)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "like", Kind(LikeEvent{}))
	assert.Equal(t, "gift", Kind(GiftEvent{}))
	assert.Equal(t, "chat", Kind(ChatEvent{}))
	assert.Equal(t, "connected", Kind(ConnectedEvent{}))
}
