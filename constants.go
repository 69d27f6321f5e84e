package simgame

import (
	"time"

	"github.com/Rushhhy/sim-game/internal/net/proto"
	"github.com/Rushhhy/sim-game/internal/sim"
)

const (
	// ProtocolVersion is the wire revision spoken by the websocket layer.
	ProtocolVersion = proto.Version

	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

const (
	// MaxPlacementSide bounds the width and height of a staged placement.
	MaxPlacementSide = 64
	// MaxQueryRadius bounds the area fallback radius of QueryPath.
	MaxQueryRadius = 8
)

// Command rejection reasons reported to clients.
const (
	CommandRejectUnknownActor    = "unknown_actor"
	CommandRejectUnknownVillager = "unknown_villager"
	CommandRejectInvalid         = "invalid_command"
	CommandRejectQueueLimit      = sim.CommandRejectQueueLimit
	CommandRejectQueueFull       = sim.CommandRejectQueueFull
)

// Placement rejection reasons published with placement.rejected events.
const (
	placementRejectBlocked = "blocked"
	placementRejectEmpty   = "nothing_to_remove"
)

// HeartbeatInterval is the cadence clients are expected to ping at.
func HeartbeatInterval() time.Duration { return heartbeatInterval }

// DisconnectAfter is how long a client may stay silent before it is dropped.
func DisconnectAfter() time.Duration { return disconnectAfter }
