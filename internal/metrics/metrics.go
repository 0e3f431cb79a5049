package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Live Connection Metrics
var (
	// LiveEventsTotal tracks inbound live events by kind
	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_events_total",
			Help: "Total inbound live events by kind",
		},
		[]string{"kind"},
	)

	// LiveConnectAttemptsTotal tracks live connection attempts by result
	LiveConnectAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_connect_attempts_total",
			Help: "Total live connection attempts by result (success/error/superseded)",
		},
		[]string{"result"},
	)

	// LiveConnectionActive tracks whether a live connection is established (1) or not (0)
	LiveConnectionActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_connection_active",
			Help: "1 if a live connection is established, 0 otherwise",
		},
	)

	// LiveEventsDroppedTotal tracks events discarded because their connection was superseded
	LiveEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_events_dropped_total",
			Help: "Total live events discarded because a newer connection replaced theirs",
		},
	)
)

// Playback Metrics
var (
	// SoundRequestsTotal tracks sound cue requests by result
	SoundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sound_requests_total",
			Help: "Total sound cue requests by result (played/dropped/stopped/expired)",
		},
		[]string{"result"},
	)

	// SoundActive tracks whether a sound cue currently occupies the audio channel
	SoundActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sound_active",
			Help: "1 if a sound cue is currently playing, 0 otherwise",
		},
	)
)

// Engine Metrics
var (
	// StaggeredPhotosScheduled tracks floating photos scheduled by like batches
	StaggeredPhotosScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staggered_photos_scheduled_total",
			Help: "Total staggered floating-photo emissions scheduled",
		},
	)

	// StaggeredPhotosCancelled tracks staggered emissions cancelled by reconnects
	StaggeredPhotosCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staggered_photos_cancelled_total",
			Help: "Total staggered emissions dropped because their connection was replaced",
		},
	)

	// EngineCommandChannelDepth tracks current engine command channel depth
	EngineCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_command_channel_depth",
			Help: "Current engine command channel depth",
		},
	)
)

// Overlay Hub Metrics
var (
	// OverlayConnectedClients tracks the number of connected overlay clients
	OverlayConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "overlay_connected_clients",
			Help: "Current number of connected overlay WebSocket clients",
		},
	)

	// OverlayMessagesTotal tracks outbound overlay messages by type discriminator
	OverlayMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_messages_total",
			Help: "Total outbound overlay messages by type",
		},
		[]string{"type"},
	)

	// OverlaySlowClientsEvicted tracks slow overlay clients evicted
	OverlaySlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overlay_slow_clients_evicted_total",
			Help: "Total overlay clients evicted because their send buffer was full",
		},
	)

	// OverlayConnectionsRejected tracks rejected overlay connection attempts by reason
	OverlayConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_connections_rejected_total",
			Help: "Total overlay connections rejected by reason (rate_limit/per_ip_limit/global_limit)",
		},
		[]string{"reason"},
	)

	// OverlayPingFailures tracks overlay ping failures
	OverlayPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overlay_ping_failures_total",
			Help: "Total overlay ping failures (client not responding)",
		},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
