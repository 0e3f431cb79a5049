package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdsmedia/tapmus/internal/live"
	"github.com/kdsmedia/tapmus/internal/notify"
)

const (
	testSoundDuration   = 5 * time.Second
	testStaggerInterval = time.Second
	waitTimeout         = 2 * time.Second
	waitTick            = 10 * time.Millisecond
)

// frameSink captures broadcast frames decoded into maps for assertions.
type frameSink struct {
	mu     sync.Mutex
	frames []map[string]any
}

func (s *frameSink) Broadcast(data []byte) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic("sink received non-JSON frame: " + string(data))
	}
	s.mu.Lock()
	s.frames = append(s.frames, m)
	s.mu.Unlock()
}

func (s *frameSink) ofType(msgType string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, f := range s.frames {
		if f["type"] == msgType {
			out = append(out, f)
		}
	}
	return out
}

func (s *frameSink) countOf(msgType string) int {
	return len(s.ofType(msgType))
}

func (s *frameSink) waitFor(t *testing.T, msgType string, n int) []map[string]any {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.countOf(msgType) >= n
	}, waitTimeout, waitTick, "expected %d %q frames, got %d", n, msgType, s.countOf(msgType))
	return s.ofType(msgType)
}

func (s *frameSink) waitForStatus(t *testing.T, message string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, f := range s.ofType(notify.TypeStatus) {
			if f["message"] == message {
				return true
			}
		}
		return false
	}, waitTimeout, waitTick, "expected status %q", message)
}

type mockConn struct {
	events chan live.Event
	once   sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{events: make(chan live.Event, 16)}
}

func (c *mockConn) Events() <-chan live.Event { return c.events }

func (c *mockConn) Close() error {
	c.once.Do(func() {})
	return nil
}

func (c *mockConn) emit(ev live.Event) { c.events <- ev }

type mockSource struct {
	mu        sync.Mutex
	err       error
	conns     []*mockConn
	usernames []string
}

func (s *mockSource) Connect(_ context.Context, username string) (live.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames = append(s.usernames, username)
	if s.err != nil {
		return nil, s.err
	}
	conn := newMockConn()
	s.conns = append(s.conns, conn)
	return conn, nil
}

func (s *mockSource) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usernames)
}

func (s *mockSource) latest() *mockConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[len(s.conns)-1]
}

func defaultTestOptions() Options {
	return Options{
		SoundDuration:       testSoundDuration,
		LikeStaggerInterval: testStaggerInterval,
		BigLikeThreshold:    10,
		AvatarTierCount:     3,
		ResetOnReconnect:    true,
	}
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *mockSource, *frameSink, *clockwork.FakeClock) {
	t.Helper()
	source := &mockSource{}
	sink := &frameSink{}
	clock := clockwork.NewFakeClock()

	eng := New(source, notify.NewEmitter(sink), clock, opts)
	eng.Start()
	t.Cleanup(eng.Stop)

	return eng, source, sink, clock
}

// connect drives the engine to the connected state against the mock source.
func connect(t *testing.T, eng *Engine, source *mockSource, username string) *mockConn {
	t.Helper()
	eng.Connect(username)
	require.Eventually(t, func() bool {
		return eng.State() == "connected"
	}, waitTimeout, waitTick)
	return source.latest()
}

func user(id string) live.User {
	return live.User{UniqueID: id, UserID: "u-" + id, ProfilePictureURL: "https://cdn/" + id + ".jpg"}
}

func TestConnect_Lifecycle(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())

	assert.Equal(t, "disconnected", eng.State())
	conn := connect(t, eng, source, "somehost")
	sink.waitForStatus(t, "connecting to somehost")

	conn.emit(live.ConnectedEvent{RoomID: "r1"})
	sink.waitForStatus(t, "connected to room r1")
}

func TestConnect_EmptyUsernameRejected(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())

	eng.Connect("")
	sink.waitForStatus(t, "username is required")
	assert.Equal(t, 0, source.dialCount())
	assert.Equal(t, "disconnected", eng.State())
}

func TestConnect_DialFailure(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	source.err = errors.New("room offline")

	eng.Connect("somehost")
	sink.waitForStatus(t, "failed to connect to somehost")
	assert.Equal(t, "disconnected", eng.State())
}

func TestStreamEnd_TearsDown(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.StreamEndEvent{ActionID: 3})
	sink.waitForStatus(t, "stream ended")

	require.Eventually(t, func() bool {
		return eng.State() == "disconnected"
	}, waitTimeout, waitTick)
}

func TestMember_PhotoAndJoinSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.MemberEvent{User: user("alice")})

	photos := sink.waitFor(t, notify.TypeFloatingPhoto, 1)
	assert.Equal(t, "https://cdn/alice.jpg", photos[0]["profilePictureUrl"])
	assert.Equal(t, "alice", photos[0]["userName"])

	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, soundJoin, sounds[0]["sound"])
}

func TestLike_CountersTierAndStaggeredPhotos(t *testing.T) {
	eng, source, sink, clock := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 3})

	updates := sink.waitFor(t, notify.TypeUpdateProfilePicture, 1)
	assert.Equal(t, "alice", updates[0]["username"])
	assert.Equal(t, float64(3), updates[0]["likes"])
	assert.Equal(t, "images/image3.jpg", updates[0]["pictureUrl"])

	// First photo is immediate, the remaining two wait on stagger timers.
	sink.waitFor(t, notify.TypeFloatingPhoto, 1)
	clock.BlockUntil(2)
	clock.Advance(2 * testStaggerInterval)

	photos := sink.waitFor(t, notify.TypeFloatingPhoto, 3)
	for _, p := range photos {
		assert.Equal(t, "https://cdn/alice.jpg", p["profilePictureUrl"])
	}
}

func TestLike_AccumulatesAcrossBatches(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 1})
	sink.waitFor(t, notify.TypeUpdateProfilePicture, 1)

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 1})
	updates := sink.waitFor(t, notify.TypeUpdateProfilePicture, 2)

	assert.Equal(t, float64(1), updates[0]["likes"])
	assert.Equal(t, "images/image1.jpg", updates[0]["pictureUrl"])
	assert.Equal(t, float64(2), updates[1]["likes"])
	assert.Equal(t, "images/image2.jpg", updates[1]["pictureUrl"])
}

func TestLike_BigBatchPlaysSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 10})

	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, soundBigLike, sounds[0]["sound"])
}

func TestLike_SmallBatchNoSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 9})
	sink.waitFor(t, notify.TypeUpdateProfilePicture, 1)

	assert.Zero(t, sink.countOf(notify.TypePlaySound))
}

func TestGift_StreakTicksSkippedUntilTerminal(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	// Streak in progress: nothing recorded, nothing emitted.
	conn.emit(live.GiftEvent{User: user("bob"), GiftName: "Rose", GiftType: 1, RepeatCount: 3, RepeatEnd: false, DiamondCount: 10})
	conn.emit(live.GiftEvent{User: user("bob"), GiftName: "Rose", GiftType: 1, RepeatCount: 5, RepeatEnd: true, DiamondCount: 10})

	stats := sink.waitFor(t, notify.TypeUpdateStats, 1)
	assert.Equal(t, "bob", stats[0]["username"])
	assert.Equal(t, float64(50), stats[0]["gifts"])

	assert.Equal(t, 1, sink.countOf(notify.TypeBigPhoto))
	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, soundGift, sounds[0]["sound"])
}

func TestGift_NonStreakableRecordedImmediately(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.GiftEvent{User: user("bob"), GiftName: "Drama Queen", GiftType: 2, RepeatCount: 1, DiamondCount: 5000})

	stats := sink.waitFor(t, notify.TypeUpdateStats, 1)
	assert.Equal(t, float64(5000), stats[0]["gifts"])
}

func TestGift_MalformedCountsContributeNothing(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.GiftEvent{User: user("bob"), GiftName: "Rose", GiftType: 2, RepeatCount: -1, DiamondCount: 10})

	stats := sink.waitFor(t, notify.TypeUpdateStats, 1)
	assert.Equal(t, float64(0), stats[0]["gifts"])
}

func TestShare_CounterPhotoAndSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.ShareEvent{User: user("carol")})

	stats := sink.waitFor(t, notify.TypeUpdateStats, 1)
	assert.Equal(t, float64(1), stats[0]["shares"])
	sink.waitFor(t, notify.TypeFloatingPhoto, 1)

	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, soundShare, sounds[0]["sound"])
}

func TestChat_EchoAndSoundMapping(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.ChatEvent{User: user("dave"), Comment: "HALO"})

	chats := sink.waitFor(t, notify.TypeChat, 1)
	assert.Equal(t, "dave", chats[0]["userName"])
	assert.Equal(t, "HALO", chats[0]["comment"])

	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, "sounds/hallo.mp3", sounds[0]["sound"])
}

func TestChat_UnmappedCommentOnlyEchoes(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.ChatEvent{User: user("dave"), Comment: "nice stream"})

	sink.waitFor(t, notify.TypeChat, 1)
	assert.Zero(t, sink.countOf(notify.TypePlaySound))
}

func TestChat_StopKeywordStopsActiveSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.ChatEvent{User: user("dave"), Comment: "5"})
	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, "sounds/ahh.mp3", sounds[0]["sound"])

	conn.emit(live.ChatEvent{User: user("dave"), Comment: " GANTI "})
	sink.waitFor(t, notify.TypeStopSound, 1)
}

func TestChat_StopKeywordWithoutActiveSoundIsQuiet(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.ChatEvent{User: user("dave"), Comment: "ganti"})

	sink.waitFor(t, notify.TypeChat, 1)
	assert.Zero(t, sink.countOf(notify.TypeStopSound))
}

func TestSound_SingleFlightDropsConcurrentRequests(t *testing.T) {
	eng, source, sink, clock := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.MemberEvent{User: user("alice")})
	sink.waitFor(t, notify.TypePlaySound, 1)
	clock.BlockUntil(1)

	// Second cue while the first still occupies the channel: dropped.
	conn.emit(live.ShareEvent{User: user("bob")})
	sink.waitFor(t, notify.TypeUpdateStats, 1)
	assert.Equal(t, 1, sink.countOf(notify.TypePlaySound))

	// Expiry frees the channel and the next request plays.
	clock.Advance(testSoundDuration)
	sink.waitFor(t, notify.TypeStopSound, 1)

	conn.emit(live.MemberEvent{User: user("carol")})
	sounds := sink.waitFor(t, notify.TypePlaySound, 2)
	assert.Equal(t, soundJoin, sounds[1]["sound"])
}

func TestEnvelope_PassthroughAndSound(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.EnvelopeEvent{User: user("erin"), Data: json.RawMessage(`{"uniqueId":"erin","coins":99}`)})

	envs := sink.waitFor(t, notify.TypeEnvelopeEvent, 1)
	data, ok := envs[0]["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(99), data["coins"])

	sounds := sink.waitFor(t, notify.TypePlaySound, 1)
	assert.Equal(t, soundEnvelope, sounds[0]["sound"])
}

func TestRoomUser_ViewerCountPassthrough(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.RoomUserEvent{ViewerCount: 128})

	frames := sink.waitFor(t, notify.TypeRoomUser, 1)
	assert.Equal(t, float64(128), frames[0]["viewerCount"])
}

func TestReconnect_ResetsCounters(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 3})
	sink.waitFor(t, notify.TypeUpdateProfilePicture, 1)

	conn = connect(t, eng, source, "otherhost")
	require.Equal(t, 2, source.dialCount())

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 2})
	updates := sink.waitFor(t, notify.TypeUpdateProfilePicture, 2)
	assert.Equal(t, float64(2), updates[1]["likes"])
}

func TestReconnect_KeepsCountersWhenResetDisabled(t *testing.T) {
	opts := defaultTestOptions()
	opts.ResetOnReconnect = false
	eng, source, sink, _ := newTestEngine(t, opts)
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 3})
	sink.waitFor(t, notify.TypeUpdateProfilePicture, 1)

	conn = connect(t, eng, source, "somehost")
	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 2})

	updates := sink.waitFor(t, notify.TypeUpdateProfilePicture, 2)
	assert.Equal(t, float64(5), updates[1]["likes"])
}

func TestReconnect_CancelsPendingStaggeredPhotos(t *testing.T) {
	eng, source, sink, clock := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	conn.emit(live.LikeEvent{User: user("alice"), LikeCount: 3})
	sink.waitFor(t, notify.TypeFloatingPhoto, 1)
	clock.BlockUntil(2)

	// Replace the connection before the stagger timers fire, then fire them.
	connect(t, eng, source, "otherhost")
	clock.Advance(2 * testStaggerInterval)

	assert.Never(t, func() bool {
		return sink.countOf(notify.TypeFloatingPhoto) > 1
	}, 200*time.Millisecond, waitTick)
}

func TestEventsFromReplacedConnectionDropped(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	old := connect(t, eng, source, "somehost")
	connect(t, eng, source, "otherhost")

	old.emit(live.LikeEvent{User: user("alice"), LikeCount: 3})

	assert.Never(t, func() bool {
		return sink.countOf(notify.TypeUpdateProfilePicture) > 0
	}, 200*time.Millisecond, waitTick)
}

func TestSourceClosed_TearsDownAndNotifies(t *testing.T) {
	eng, source, sink, _ := newTestEngine(t, defaultTestOptions())
	conn := connect(t, eng, source, "somehost")

	close(conn.events)

	sink.waitForStatus(t, "live connection lost")
	require.Eventually(t, func() bool {
		return eng.State() == "disconnected"
	}, waitTimeout, waitTick)
}
