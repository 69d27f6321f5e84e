package simgame

import (
	"context"
	"math/rand"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/movement"
	"github.com/Rushhhy/sim-game/internal/nav"
	"github.com/Rushhhy/sim-game/internal/sim"
	"github.com/Rushhhy/sim-game/internal/simutil"
	"github.com/Rushhhy/sim-game/logging"
	"github.com/Rushhhy/sim-game/logging/navigation"
)

// VillagerMode is the high-level activity of a villager.
type VillagerMode string

const (
	ModeIdle       VillagerMode = "idle"
	ModeTravelling VillagerMode = "travelling"
)

const (
	metricReplans        = "nav_replans_total"
	metricPathNotFound   = "nav_path_not_found_total"
	metricStuck          = "nav_stuck_total"
	metricFallbackSteer  = "nav_fallback_steering_total"
	metricArrivals       = "villager_arrivals_total"
	metricBlockedSteps   = "villager_blocked_steps_total"
	metricRepositioned   = "villager_repositioned_total"
	metricWanderAbandons = "villager_wander_abandoned_total"
)

type villager struct {
	id   string
	pos  nav.Vec2
	home nav.Vec2

	mode      VillagerMode
	target    nav.Vec2
	commanded bool
	idleTicks int
	avoiding  bool

	session   *movement.Session
	validator *movement.Validator
	rng       *rand.Rand
}

func (h *Hub) addVillagerLocked(id string, pos nav.Vec2) *villager {
	rng := simutil.NewRNG(h.cfg.Seed, id)
	v := &villager{
		id:        id,
		pos:       pos,
		home:      h.home,
		mode:      ModeIdle,
		session:   movement.NewSession(h.finder),
		validator: movement.NewValidator(h.finder, h.cfg.Validator, rng),
		rng:       rng,
	}
	h.villagers[id] = v
	return v
}

// command sends the villager toward target on behalf of a client.
func (v *villager) command(target nav.Vec2) {
	v.target = target
	v.mode = ModeTravelling
	v.commanded = true
	v.idleTicks = 0
}

func (v *villager) stop() {
	v.mode = ModeIdle
	v.commanded = false
	v.idleTicks = 0
	v.avoiding = false
	v.session.Invalidate()
}

func (v *villager) snapshot() sim.Villager {
	out := sim.Villager{
		ID:    v.id,
		X:     v.pos.X,
		Y:     v.pos.Y,
		Mode:  string(v.mode),
		State: v.session.State().String(),
	}
	if v.mode == ModeTravelling {
		out.TargetX, out.TargetY = v.target.X, v.target.Y
		out.Path = v.session.Remaining()
	}
	return out
}

func cellPayload(c grid.Cell) navigation.CellPayload {
	return navigation.CellPayload{X: c.X, Y: c.Y}
}

func pointPayload(p nav.Vec2) navigation.PointPayload {
	return navigation.PointPayload{X: p.X, Y: p.Y}
}

// stepVillagerLocked runs one tick of a villager: position validation, idle
// wandering, path following and the steering fallback when no path exists.
func (h *Hub) stepVillagerLocked(ctx context.Context, v *villager, tick uint64, dt float64) {
	if pos, moved := v.validator.Tick(v.pos); moved {
		h.repositionLocked(ctx, v, tick, pos)
	}

	if v.mode == ModeIdle {
		v.idleTicks++
		if v.idleTicks < h.cfg.IdleWanderTicks {
			return
		}
		v.idleTicks = 0
		target, ok := h.finder.RandomWalkable(v.home, h.cfg.IdleWanderRadius, v.rng)
		if !ok {
			return
		}
		v.target = target
		v.mode = ModeTravelling
		v.commanded = false
	}

	actor := logging.VillagerRef(v.id)
	step := v.session.RequestMove(v.pos, v.target)
	h.reportStepLocked(ctx, v, tick, step)

	switch step.State {
	case movement.StateArrived:
		h.arriveLocked(ctx, v, tick)
	case movement.StateNotFound:
		if step.Replanned && !v.commanded {
			h.metrics.Add(metricWanderAbandons, 1)
			v.mode = ModeIdle
			v.idleTicks = 0
			return
		}
		h.avoidLocked(ctx, v, tick, dt, actor)
	case movement.StateFollowing:
		v.avoiding = false
		dist := min(h.cfg.VillagerSpeed*dt, v.pos.Dist(step.Waypoint))
		h.moveLocked(v, step.Direction, dist)
	}
}

func (h *Hub) reportStepLocked(ctx context.Context, v *villager, tick uint64, step movement.Step) {
	actor := logging.VillagerRef(v.id)
	if step.Stuck {
		h.metrics.Add(metricStuck, 1)
		navigation.Stuck(ctx, h.publisher, tick, actor, pointPayload(v.pos))
	}
	if !step.Replanned {
		return
	}
	if step.State == movement.StateNotFound {
		h.metrics.Add(metricPathNotFound, 1)
		errText := ""
		if step.Err != nil {
			errText = step.Err.Error()
		}
		navigation.PathNotFound(ctx, h.publisher, tick, actor, navigation.PathNotFoundPayload{
			From:   cellPayload(nav.WorldToCell(v.pos)),
			To:     cellPayload(nav.WorldToCell(v.target)),
			Reason: step.Reason.String(),
			Error:  errText,
		})
		return
	}
	plan := v.session.Plan()
	if plan.Empty() {
		return
	}
	h.metrics.Add(metricReplans, 1)
	navigation.Replanned(ctx, h.publisher, tick, actor, navigation.ReplannedPayload{
		Reason:   step.Reason.String(),
		Length:   plan.Len(),
		Goal:     cellPayload(plan.Goal()),
		Fallback: step.Fallback,
	})
}

func (h *Hub) arriveLocked(ctx context.Context, v *villager, tick uint64) {
	h.metrics.Add(metricArrivals, 1)
	navigation.Arrived(ctx, h.publisher, tick, logging.VillagerRef(v.id), cellPayload(nav.WorldToCell(v.pos)))
	v.mode = ModeIdle
	v.commanded = false
	v.idleTicks = 0
	v.avoiding = false
}

// avoidLocked steers straight at the target around obstacles while the
// session waits out its retry cooldown.
func (h *Hub) avoidLocked(ctx context.Context, v *villager, tick uint64, dt float64, actor logging.EntityRef) {
	remaining := v.pos.Dist(v.target)
	if remaining <= h.finder.Settings().PathCompletionRadius {
		h.arriveLocked(ctx, v, tick)
		return
	}
	dir := h.finder.Avoid(v.pos, v.target)
	if dir.IsZero() {
		return
	}
	if !v.avoiding {
		v.avoiding = true
		h.metrics.Add(metricFallbackSteer, 1)
		navigation.FallbackSteering(ctx, h.publisher, tick, actor, pointPayload(v.pos))
	}
	h.moveLocked(v, dir, min(h.cfg.VillagerSpeed*dt, remaining))
}

// moveLocked advances v by dist along dir unless that lands on an
// unwalkable cell, in which case the plan is dropped.
func (h *Hub) moveLocked(v *villager, dir nav.Vec2, dist float64) bool {
	if dist <= 0 || dir.IsZero() {
		return false
	}
	next := v.pos.Add(dir.Scale(dist))
	if !h.finder.WalkableAt(next) {
		h.metrics.Add(metricBlockedSteps, 1)
		v.session.Invalidate()
		return false
	}
	v.pos = next
	return true
}

func (h *Hub) repositionLocked(ctx context.Context, v *villager, tick uint64, pos nav.Vec2) {
	from := v.pos
	v.pos = pos
	v.session.Invalidate()
	h.metrics.Add(metricRepositioned, 1)
	navigation.Repositioned(ctx, h.publisher, tick, logging.VillagerRef(v.id), navigation.RepositionedPayload{
		From: pointPayload(from),
		To:   pointPayload(pos),
	})
}
