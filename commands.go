package simgame

import (
	"context"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/movement"
	"github.com/Rushhhy/sim-game/internal/nav"
	"github.com/Rushhhy/sim-game/internal/net/proto"
	"github.com/Rushhhy/sim-game/internal/sim"
	"github.com/Rushhhy/sim-game/logging"
	"github.com/Rushhhy/sim-game/logging/placement"
)

const (
	metricPlacementsRejected = "grid_placements_rejected_total"
	metricPlacementsApplied  = "grid_placements_total"
	metricRemovals           = "grid_removals_total"
	metricSpawnFailures      = "villager_spawn_failed_total"
)

// StageClientMessage converts a websocket message into a command and stages
// it for the next tick. The returned reason is set when ok is false.
func (h *Hub) StageClientMessage(clientID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	cmd, ok := proto.ClientCommand(msg)
	if !ok {
		return sim.Command{}, false, CommandRejectInvalid
	}
	return h.StageCommand(clientID, cmd)
}

// StageCommand validates cmd and enqueues it. An empty clientID issues the
// command as the system actor.
func (h *Hub) StageCommand(clientID string, cmd sim.Command) (sim.Command, bool, string) {
	if reason := h.validateCommand(clientID, &cmd); reason != "" {
		h.metrics.Add(metricCommandsRejected, 1)
		return sim.Command{}, false, reason
	}

	cmd.ID = fmt.Sprintf("cmd-%d", h.nextCommand.Add(1))
	cmd.ActorID = clientID
	cmd.OriginTick = h.loop.Tick()
	cmd.IssuedAt = h.clock.Now()

	if ok, reason := h.loop.Enqueue(cmd); !ok {
		if cmd.Type == sim.CommandSpawn {
			h.mu.Lock()
			delete(h.pendingSpawns, cmd.VillagerID)
			h.mu.Unlock()
		}
		return sim.Command{}, false, reason
	}
	return cmd, true, ""
}

func (h *Hub) validateCommand(clientID string, cmd *sim.Command) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientID != "" {
		if _, ok := h.clients[clientID]; !ok {
			return CommandRejectUnknownActor
		}
	}

	switch cmd.Type {
	case sim.CommandPlace:
		p := cmd.Place
		if p == nil || p.Width <= 0 || p.Height <= 0 || p.Width > MaxPlacementSide || p.Height > MaxPlacementSide || p.Category < 0 {
			return CommandRejectInvalid
		}
		if _, ok := parseKind(p.Kind); !ok {
			return CommandRejectInvalid
		}
	case sim.CommandRemove:
		if cmd.Remove == nil {
			return CommandRejectInvalid
		}
	case sim.CommandSpawn:
		if cmd.Spawn == nil {
			return CommandRejectInvalid
		}
		cmd.VillagerID = h.newVillagerID()
		h.pendingSpawns[cmd.VillagerID] = struct{}{}
	case sim.CommandMove:
		if cmd.Move == nil {
			return CommandRejectInvalid
		}
		if !h.villagerKnownLocked(cmd.VillagerID) {
			return CommandRejectUnknownVillager
		}
	case sim.CommandStop, sim.CommandDespawn:
		if !h.villagerKnownLocked(cmd.VillagerID) {
			return CommandRejectUnknownVillager
		}
	default:
		return CommandRejectInvalid
	}
	return ""
}

func (h *Hub) villagerKnownLocked(id string) bool {
	if _, ok := h.villagers[id]; ok {
		return true
	}
	_, ok := h.pendingSpawns[id]
	return ok
}

func parseKind(raw string) (grid.Kind, bool) {
	switch raw {
	case "", "structure":
		return grid.KindStructure, true
	case "decoration":
		return grid.KindDecoration, true
	default:
		return 0, false
	}
}

// PlaceStructure stages a rectangular placement.
func (h *Hub) PlaceStructure(clientID string, p sim.PlaceCommand) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{Type: sim.CommandPlace, Place: &p})
}

// RemoveStructure stages removal of whatever occupies cell.
func (h *Hub) RemoveStructure(clientID string, cell grid.Cell) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{
		Type:   sim.CommandRemove,
		Remove: &sim.RemoveCommand{X: cell.X, Y: cell.Y},
	})
}

// SpawnVillager stages a new villager at pos. The id it will carry is in the
// returned command.
func (h *Hub) SpawnVillager(clientID string, pos nav.Vec2) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{
		Type:  sim.CommandSpawn,
		Spawn: &sim.SpawnCommand{X: pos.X, Y: pos.Y},
	})
}

// MoveVillager stages a travel order toward target.
func (h *Hub) MoveVillager(clientID, villagerID string, target nav.Vec2) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{
		Type:       sim.CommandMove,
		VillagerID: villagerID,
		Move:       &sim.MoveCommand{TargetX: target.X, TargetY: target.Y},
	})
}

// StopVillager stages a halt that drops the villager's plan.
func (h *Hub) StopVillager(clientID, villagerID string) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{Type: sim.CommandStop, VillagerID: villagerID})
}

// DespawnVillager stages removal of a villager.
func (h *Hub) DespawnVillager(clientID, villagerID string) (sim.Command, bool, string) {
	return h.StageCommand(clientID, sim.Command{Type: sim.CommandDespawn, VillagerID: villagerID})
}

func actorRef(cmd sim.Command) logging.EntityRef {
	if cmd.ActorID == "" {
		return logging.WorldRef()
	}
	return logging.ClientRef(cmd.ActorID)
}

func (h *Hub) applyCommandLocked(ctx context.Context, tick uint64, cmd sim.Command) {
	switch cmd.Type {
	case sim.CommandPlace:
		h.applyPlaceLocked(ctx, tick, cmd)
	case sim.CommandRemove:
		h.applyRemoveLocked(ctx, tick, cmd)
	case sim.CommandSpawn:
		h.applySpawnLocked(ctx, tick, cmd)
	case sim.CommandDespawn:
		delete(h.villagers, cmd.VillagerID)
		delete(h.pendingSpawns, cmd.VillagerID)
	case sim.CommandMove:
		if v, ok := h.villagers[cmd.VillagerID]; ok {
			v.command(nav.Vec2{X: cmd.Move.TargetX, Y: cmd.Move.TargetY})
		}
	case sim.CommandStop:
		if v, ok := h.villagers[cmd.VillagerID]; ok {
			v.stop()
		}
	}
}

func (h *Hub) applyPlaceLocked(ctx context.Context, tick uint64, cmd sim.Command) {
	p := cmd.Place
	kind, _ := parseKind(p.Kind)
	payload := placement.EntryPayload{
		X:        p.X,
		Y:        p.Y,
		Width:    p.Width,
		Height:   p.Height,
		Category: p.Category,
		Owner:    h.owners,
		Kind:     kind.String(),
		Cells:    p.Width * p.Height,
	}
	entry, ok := h.grid.Place(grid.Cell{X: p.X, Y: p.Y}, grid.Size{W: p.Width, H: p.Height}, p.Category, h.owners, kind)
	if !ok {
		h.metrics.Add(metricPlacementsRejected, 1)
		placement.Rejected(ctx, h.publisher, tick, actorRef(cmd), cmd.ID, placement.RejectedPayload{
			EntryPayload: payload,
			Reason:       placementRejectBlocked,
		})
		return
	}
	h.owners++
	h.metrics.Add(metricPlacementsApplied, 1)
	placement.Placed(ctx, h.publisher, tick, actorRef(cmd), cmd.ID, payload)
	h.footprintChangedLocked(ctx, tick, entry.Cells, false)
}

func (h *Hub) applyRemoveLocked(ctx context.Context, tick uint64, cmd sim.Command) {
	cell := grid.Cell{X: cmd.Remove.X, Y: cmd.Remove.Y}
	entry, ok := h.grid.RemoveAt(cell)
	if !ok {
		placement.Rejected(ctx, h.publisher, tick, actorRef(cmd), cmd.ID, placement.RejectedPayload{
			EntryPayload: placement.EntryPayload{X: cell.X, Y: cell.Y, Width: 1, Height: 1, Owner: grid.NoOwner},
			Reason:       placementRejectEmpty,
		})
		return
	}
	payload := entryPayload(entry)
	if entry.Owner >= 0 {
		h.grid.ReindexOwners(entry.Owner)
		if h.owners > 0 {
			h.owners--
		}
	}
	h.metrics.Add(metricRemovals, 1)
	placement.Removed(ctx, h.publisher, tick, actorRef(cmd), cmd.ID, payload)
	h.footprintChangedLocked(ctx, tick, entry.Cells, true)
}

func entryPayload(entry *grid.Entry) placement.EntryPayload {
	lo, hi := entry.Cells[0], entry.Cells[0]
	for _, c := range entry.Cells[1:] {
		lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
		hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
	}
	return placement.EntryPayload{
		X:        lo.X,
		Y:        lo.Y,
		Width:    hi.X - lo.X + 1,
		Height:   hi.Y - lo.Y + 1,
		Category: entry.Category,
		Owner:    entry.Owner,
		Kind:     entry.Kind.String(),
		Cells:    len(entry.Cells),
	}
}

// footprintChangedLocked keeps villagers consistent with a grid mutation.
// Placement drops plans crossing the new footprint and lifts villagers off
// it; removal wakes sessions waiting out a failed search.
func (h *Hub) footprintChangedLocked(ctx context.Context, tick uint64, cells []grid.Cell, removed bool) {
	footprint := mapset.New[grid.Cell]()
	for _, c := range cells {
		footprint.Put(c)
	}
	for _, v := range h.sortedVillagersLocked() {
		if removed {
			if v.session.State() == movement.StateNotFound {
				v.session.Invalidate()
			}
			continue
		}
		for _, c := range v.session.Remaining() {
			if footprint.Has(c) {
				v.session.Invalidate()
				break
			}
		}
		if footprint.Has(nav.WorldToCell(v.pos)) {
			if pos, ok := v.validator.Reposition(v.pos); ok {
				h.repositionLocked(ctx, v, tick, pos)
			}
		}
	}
}

func (h *Hub) applySpawnLocked(ctx context.Context, tick uint64, cmd sim.Command) {
	delete(h.pendingSpawns, cmd.VillagerID)
	pos := nav.Vec2{X: cmd.Spawn.X, Y: cmd.Spawn.Y}
	v := h.addVillagerLocked(cmd.VillagerID, pos)
	if h.finder.WalkableAt(pos) {
		return
	}
	if moved, ok := v.validator.Reposition(pos); ok {
		h.repositionLocked(ctx, v, tick, moved)
		return
	}
	delete(h.villagers, cmd.VillagerID)
	h.metrics.Add(metricSpawnFailures, 1)
	h.logger.Printf("spawn of %s at %.2f,%.2f failed: no walkable cell nearby", cmd.VillagerID, pos.X, pos.Y)
}
