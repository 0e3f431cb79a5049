package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kdsmedia/tapmus/internal/live"
	"github.com/kdsmedia/tapmus/internal/metrics"
	"github.com/kdsmedia/tapmus/internal/notify"
	"github.com/kdsmedia/tapmus/internal/playback"
	"github.com/kdsmedia/tapmus/internal/session"
)

const dialTimeout = 30 * time.Second

// Sound cues requested by event kind. Paths are relative to the public
// asset dir, matching what the overlay client can fetch.
const (
	soundJoin     = "sounds/hallo.mp3"
	soundGift     = "sounds/winner.mp3"
	soundShare    = "sounds/kentut.mp3"
	soundEnvelope = "sounds/anjay.mp3"
	soundBigLike  = "sounds/wow.mp3"
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// --- Command types ---

type engineCmd interface{ engineCmd() }

type cmdConnect struct {
	username string
}

func (cmdConnect) engineCmd() {}

type cmdDialResult struct {
	epoch    uint64
	username string
	conn     live.Connection
	err      error
}

func (cmdDialResult) engineCmd() {}

type cmdEvent struct {
	epoch uint64
	ev    live.Event
}

func (cmdEvent) engineCmd() {}

type cmdSourceClosed struct {
	epoch uint64
}

func (cmdSourceClosed) engineCmd() {}

type cmdStaggeredPhoto struct {
	epoch      uint64
	pictureURL string
	userName   string
}

func (cmdStaggeredPhoto) engineCmd() {}

type cmdSoundExpired struct {
	generation uint64
}

func (cmdSoundExpired) engineCmd() {}

type cmdGetState struct {
	replyCh chan string
}

func (cmdGetState) engineCmd() {}

type cmdStop struct {
	doneCh chan struct{}
}

func (cmdStop) engineCmd() {}

// Options tune the decision behavior. All fields are required.
type Options struct {
	SoundDuration       time.Duration
	LikeStaggerInterval time.Duration
	BigLikeThreshold    int
	AvatarTierCount     int
	ResetOnReconnect    bool
}

// Engine owns the session store and playback arbiter and drives both from
// the live event stream.
type Engine struct {
	cmdCh   chan engineCmd
	clock   clockwork.Clock
	source  live.Source
	store   *session.Store
	tiers   session.TierTable
	arbiter *playback.Arbiter
	sounds  playback.SoundMap
	emitter *notify.Emitter
	opts    Options

	state    connState
	epoch    uint64
	conn     live.Connection
	username string

	stopCh chan struct{}
}

func New(source live.Source, emitter *notify.Emitter, clock clockwork.Clock, opts Options) *Engine {
	e := &Engine{
		cmdCh:   make(chan engineCmd, 512),
		clock:   clock,
		source:  source,
		store:   session.NewStore(),
		tiers:   session.NewTierTable(opts.AvatarTierCount),
		sounds:  playback.DefaultSoundMap(),
		emitter: emitter,
		opts:    opts,
		stopCh:  make(chan struct{}),
	}
	e.arbiter = playback.NewArbiter(clock, opts.SoundDuration, e.postSoundExpired)
	return e
}

// Start begins the engine's actor goroutine.
func (e *Engine) Start() {
	go e.run()
}

// Connect asks the engine to attach to the given username's live stream,
// replacing any current connection. Non-blocking.
func (e *Engine) Connect(username string) {
	e.post(cmdConnect{username: username})
}

// State returns the current connection lifecycle state as a string.
func (e *Engine) State() string {
	replyCh := make(chan string, 1)
	e.post(cmdGetState{replyCh: replyCh})
	select {
	case s := <-replyCh:
		return s
	case <-e.stopCh:
		return stateDisconnected.String()
	}
}

// Stop shuts the engine down, closing any live connection.
func (e *Engine) Stop() {
	doneCh := make(chan struct{})
	e.post(cmdStop{doneCh: doneCh})
	select {
	case <-doneCh:
	case <-e.stopCh:
	}
}

// post delivers a command unless the engine has stopped.
func (e *Engine) post(cmd engineCmd) {
	select {
	case e.cmdCh <- cmd:
		metrics.EngineCommandChannelDepth.Set(float64(len(e.cmdCh)))
	case <-e.stopCh:
	}
}

func (e *Engine) postSoundExpired(generation uint64) {
	e.post(cmdSoundExpired{generation: generation})
}

func (e *Engine) run() {
	for cmd := range e.cmdCh {
		switch c := cmd.(type) {
		case cmdConnect:
			e.handleConnect(c.username)

		case cmdDialResult:
			e.handleDialResult(c)

		case cmdEvent:
			if c.epoch != e.epoch {
				metrics.LiveEventsDroppedTotal.Inc()
				continue
			}
			metrics.LiveEventsTotal.WithLabelValues(live.Kind(c.ev)).Inc()
			e.handleEvent(c.ev)

		case cmdSourceClosed:
			if c.epoch != e.epoch {
				continue
			}
			slog.Warn("Live connection lost", "username", e.username)
			e.teardown()
			e.emitter.Status("live connection lost")

		case cmdStaggeredPhoto:
			if c.epoch != e.epoch {
				metrics.StaggeredPhotosCancelled.Inc()
				continue
			}
			e.emitter.FloatingPhoto(c.pictureURL, c.userName)

		case cmdSoundExpired:
			if e.arbiter.Expire(c.generation) {
				metrics.SoundRequestsTotal.WithLabelValues("expired").Inc()
				metrics.SoundActive.Set(0)
				e.emitter.StopSound()
			}

		case cmdGetState:
			c.replyCh <- e.state.String()

		case cmdStop:
			e.teardown()
			close(e.stopCh)
			close(c.doneCh)
			return
		}
	}
}

func (e *Engine) handleConnect(username string) {
	if username == "" {
		e.emitter.Status("username is required")
		return
	}

	if e.state != stateDisconnected {
		slog.Info("Replacing live connection", "old_username", e.username, "new_username", username)
		metrics.LiveConnectAttemptsTotal.WithLabelValues("superseded").Inc()
	}
	e.teardown()

	if e.opts.ResetOnReconnect {
		e.store.Reset()
		e.stopSound()
	}

	e.state = stateConnecting
	e.username = username
	e.emitter.Status(fmt.Sprintf("connecting to %s", username))

	epoch := e.epoch
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		conn, err := e.source.Connect(ctx, username)
		e.post(cmdDialResult{epoch: epoch, username: username, conn: conn, err: err})
	}()
}

func (e *Engine) handleDialResult(c cmdDialResult) {
	if c.epoch != e.epoch {
		// A newer connect request superseded this dial.
		if c.conn != nil {
			_ = c.conn.Close()
		}
		return
	}

	if c.err != nil {
		slog.Error("Failed to connect to live stream", "username", c.username, "error", c.err)
		metrics.LiveConnectAttemptsTotal.WithLabelValues("error").Inc()
		e.state = stateDisconnected
		e.emitter.Status(fmt.Sprintf("failed to connect to %s", c.username))
		return
	}

	slog.Info("Live connection established", "username", c.username)
	metrics.LiveConnectAttemptsTotal.WithLabelValues("success").Inc()
	metrics.LiveConnectionActive.Set(1)
	e.state = stateConnected
	e.conn = c.conn

	epoch := e.epoch
	events := c.conn.Events()
	go func() {
		for ev := range events {
			e.post(cmdEvent{epoch: epoch, ev: ev})
		}
		e.post(cmdSourceClosed{epoch: epoch})
	}()
}

// teardown closes any live connection and invalidates all work scheduled
// for it by bumping the connection epoch.
func (e *Engine) teardown() {
	e.epoch++
	if e.conn != nil {
		_ = e.conn.Close()
		e.conn = nil
	}
	e.state = stateDisconnected
	metrics.LiveConnectionActive.Set(0)
}
