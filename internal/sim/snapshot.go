package sim

import "github.com/Rushhhy/sim-game/internal/grid"

// Villager mirrors a villager for clients.
type Villager struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Mode    string  `json:"mode"`
	State   string  `json:"state"`
	TargetX float64 `json:"targetX,omitempty"`
	TargetY float64 `json:"targetY,omitempty"`
	// Path lists the plan cells not yet reached.
	Path []grid.Cell `json:"path,omitempty"`
}

// Structure mirrors a grid entry for clients.
type Structure struct {
	Category int         `json:"category"`
	Owner    int         `json:"owner"`
	Kind     string      `json:"kind"`
	Cells    []grid.Cell `json:"cells"`
}

// Snapshot captures the state exposed to non-simulation callers.
type Snapshot struct {
	Tick       uint64      `json:"tick"`
	Revision   uint64      `json:"revision"`
	Villagers  []Villager  `json:"villagers"`
	Structures []Structure `json:"structures"`
}

// MapLayout is the static part of the map sent once on join.
type MapLayout struct {
	Name      string      `json:"name"`
	Home      grid.Cell   `json:"home"`
	Boundary  []grid.Cell `json:"boundary"`
	Nature    []grid.Cell `json:"nature,omitempty"`
	Forbidden []grid.Cell `json:"forbidden,omitempty"`
	Corridors []grid.Cell `json:"corridors,omitempty"`
}
