package sim

import "time"

// CommandType enumerates the commands staged for the next tick.
type CommandType string

const (
	CommandPlace   CommandType = "Place"
	CommandRemove  CommandType = "Remove"
	CommandSpawn   CommandType = "Spawn"
	CommandDespawn CommandType = "Despawn"
	CommandMove    CommandType = "Move"
	CommandStop    CommandType = "Stop"
)

// PlaceCommand requests a rectangular placement on the occupancy grid. The
// hub assigns the registry owner index.
type PlaceCommand struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Category int    `json:"category"`
	Kind     string `json:"kind"`
}

// RemoveCommand requests removal of whatever occupies a cell.
type RemoveCommand struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SpawnCommand adds a villager at a world position.
type SpawnCommand struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveCommand sends a villager toward a world position.
type MoveCommand struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// Command represents an intent captured for processing on the next tick.
// ActorID names the issuing client; VillagerID names the villager that
// spawn, move, stop and despawn act on.
type Command struct {
	ID         string         `json:"id"`
	OriginTick uint64         `json:"originTick"`
	ActorID    string         `json:"actorId"`
	VillagerID string         `json:"villagerId,omitempty"`
	Type       CommandType    `json:"type"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Place      *PlaceCommand  `json:"place,omitempty"`
	Remove     *RemoveCommand `json:"remove,omitempty"`
	Spawn      *SpawnCommand  `json:"spawn,omitempty"`
	Move       *MoveCommand   `json:"move,omitempty"`
}
