package proto

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Rushhhy/sim-game/internal/sim"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
	typeState         = "state"
)

// Client message type identifiers.
const (
	TypePlace     = "place"
	TypeRemove    = "remove"
	TypeSpawn     = "spawn"
	TypeDespawn   = "despawn"
	TypeMove      = "move"
	TypeStop      = "stop"
	TypeHeartbeat = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeState         = typeState
	TypeCommandAck    = typeCommandAck
	TypeCommandReject = typeCommandReject
)

// ClientMessage captures an inbound websocket message from the client.
// Coordinates are cells for place and remove, world units otherwise.
type ClientMessage struct {
	Ver        int     `json:"ver,omitempty"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Category   int     `json:"category,omitempty"`
	Kind       string  `json:"kind,omitempty"`
	VillagerID string  `json:"villagerId,omitempty"`
	SentAt     int64   `json:"sentAt,omitempty"`
	CommandSeq *uint64 `json:"seq,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand captures the structured simulation command carried by a
// websocket message. Origin metadata is populated by the hub when the command
// is accepted for processing.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypePlace:
		return sim.Command{
			Type: sim.CommandPlace,
			Place: &sim.PlaceCommand{
				X:        cellCoord(msg.X),
				Y:        cellCoord(msg.Y),
				Width:    msg.Width,
				Height:   msg.Height,
				Category: msg.Category,
				Kind:     msg.Kind,
			},
		}, true
	case TypeRemove:
		return sim.Command{
			Type:   sim.CommandRemove,
			Remove: &sim.RemoveCommand{X: cellCoord(msg.X), Y: cellCoord(msg.Y)},
		}, true
	case TypeSpawn:
		return sim.Command{
			Type:  sim.CommandSpawn,
			Spawn: &sim.SpawnCommand{X: msg.X, Y: msg.Y},
		}, true
	case TypeMove:
		if msg.VillagerID == "" {
			return sim.Command{}, false
		}
		return sim.Command{
			Type:       sim.CommandMove,
			VillagerID: msg.VillagerID,
			Move:       &sim.MoveCommand{TargetX: msg.X, TargetY: msg.Y},
		}, true
	case TypeStop, TypeDespawn:
		if msg.VillagerID == "" {
			return sim.Command{}, false
		}
		cmdType := sim.CommandStop
		if msg.Type == TypeDespawn {
			cmdType = sim.CommandDespawn
		}
		return sim.Command{Type: cmdType, VillagerID: msg.VillagerID}, true
	default:
		return sim.Command{}, false
	}
}

func cellCoord(v float64) int {
	return int(math.Floor(v))
}

// CommandAck describes an acknowledgement of a staged command.
type CommandAck struct {
	Seq        uint64
	Tick       uint64
	VillagerID string
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		Seq        uint64 `json:"seq"`
		Tick       uint64 `json:"tick,omitempty"`
		VillagerID string `json:"villagerId,omitempty"`
	}{
		Ver:        Version,
		Type:       typeCommandAck,
		Seq:        msg.Seq,
		Tick:       msg.Tick,
		VillagerID: msg.VillagerID,
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
	Tick   uint64
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
		Tick   uint64 `json:"tick,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
		Retry:  msg.Retry,
		Tick:   msg.Tick,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// StateSnapshotV1 captures the version 1 websocket state payload layout.
type StateSnapshotV1 struct {
	Ver        int             `json:"ver"`
	Type       string          `json:"type"`
	Tick       uint64          `json:"t"`
	Revision   uint64          `json:"revision"`
	ServerTime int64           `json:"serverTime"`
	Villagers  []sim.Villager  `json:"villagers"`
	Structures []sim.Structure `json:"structures"`
}

// NewStateSnapshot wraps a simulation snapshot in the wire layout.
func NewStateSnapshot(snapshot sim.Snapshot, serverTime int64) StateSnapshotV1 {
	return StateSnapshotV1{
		Tick:       snapshot.Tick,
		Revision:   snapshot.Revision,
		ServerTime: serverTime,
		Villagers:  snapshot.Villagers,
		Structures: snapshot.Structures,
	}
}

// EncodeStateSnapshot renders a versioned snapshot payload.
func EncodeStateSnapshot(msg StateSnapshotV1) ([]byte, error) {
	if msg.Type == "" {
		msg.Type = TypeState
	}
	msg.Ver = Version
	if msg.Villagers == nil {
		msg.Villagers = []sim.Villager{}
	}
	if msg.Structures == nil {
		msg.Structures = []sim.Structure{}
	}
	return json.Marshal(msg)
}

// JoinResponseV1 captures the version 1 join response layout.
type JoinResponseV1 struct {
	Ver      int           `json:"ver"`
	ID       string        `json:"id"`
	TickRate int           `json:"tickRate"`
	Map      sim.MapLayout `json:"map"`
	State    sim.Snapshot  `json:"state"`
}

// EncodeJoinResponse renders a versioned join response payload.
func EncodeJoinResponse(msg JoinResponseV1) ([]byte, error) {
	msg.Ver = Version
	return json.Marshal(msg)
}
