package movement

import (
	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/nav"
)

// Pathfinder is the planning surface a session consumes. *nav.Finder
// implements it.
type Pathfinder interface {
	Settings() nav.Settings
	Revision() uint64
	Walkable(c grid.Cell) bool
	ClearLine(a, b nav.Vec2) bool
	FindPath(start, goal grid.Cell) (nav.Plan, error)
	FindPathToArea(start, center grid.Cell, radius int) (nav.Plan, error)
	FindPathAroundGoal(start, center grid.Cell, radius int) (nav.Plan, error)
}

// State is the follower state.
type State int

const (
	StateNoPlan State = iota
	StateFollowing
	StateArrived
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateNoPlan:
		return "no_plan"
	case StateFollowing:
		return "following"
	case StateArrived:
		return "arrived"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Reason explains why a plan was (re)built.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoPlan
	ReasonRetarget
	ReasonDrift
	ReasonBlocked
	ReasonStuck
	ReasonInvalidated
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoPlan:
		return "no_plan"
	case ReasonRetarget:
		return "retarget"
	case ReasonDrift:
		return "drift"
	case ReasonBlocked:
		return "blocked"
	case ReasonStuck:
		return "stuck"
	case ReasonInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Step is the per-tick output handed back to the agent controller.
type Step struct {
	// Direction is a unit vector, or zero once arrived or without a route.
	Direction nav.Vec2
	// Waypoint is the world point the direction aims at.
	Waypoint nav.Vec2
	State    State
	// Replanned is set when this call ran a search. Reason says why.
	Replanned bool
	Reason    Reason
	// Stuck is set when the stall detector forced the replan.
	Stuck bool
	// Fallback is set when the plan targets a cell near the goal instead of
	// the goal itself.
	Fallback bool
	// Err carries the search failure when State is StateNotFound.
	Err error
}

// Session follows one agent toward one target at a time. It is owned by
// that agent and must not be shared.
type Session struct {
	finder Pathfinder

	state State
	plan  nav.Plan
	index int

	tick          uint64
	lastValidated uint64
	lastRevision  uint64
	cooldownUntil uint64

	lastPos    nav.Vec2
	hasLastPos bool
	lastTarget grid.Cell
	hasTarget  bool
	moving     bool
	stallTicks int

	forced Reason
}

// NewSession constructs a session planning through finder.
func NewSession(finder Pathfinder) *Session {
	return &Session{finder: finder}
}

func (s *Session) State() State { return s.state }

func (s *Session) Plan() nav.Plan { return s.plan }

// Index is the position of the last reached waypoint in the plan.
func (s *Session) Index() int { return s.index }

// Target returns the cell the current plan was built for.
func (s *Session) Target() (grid.Cell, bool) { return s.lastTarget, s.hasTarget }

// Remaining lists the plan cells not yet reached, current cell included.
func (s *Session) Remaining() []grid.Cell {
	if s.plan.Empty() {
		return nil
	}
	cells := s.plan.Cells()
	return cells[s.index:]
}

// Invalidate drops the cached plan. The next RequestMove searches again,
// skipping any retry cooldown.
func (s *Session) Invalidate() {
	s.plan = nav.Plan{}
	s.index = 0
	s.state = StateNoPlan
	s.cooldownUntil = 0
	s.stallTicks = 0
	s.moving = false
	s.forced = ReasonInvalidated
}

// RequestMove advances the session by one tick and returns the direction the
// agent at pos should move in to reach target.
func (s *Session) RequestMove(pos, target nav.Vec2) Step {
	s.tick++
	settings := s.finder.Settings()
	current := nav.WorldToCell(pos)
	goal := nav.WorldToCell(target)

	stuck := s.detectStall(pos, settings)
	s.lastPos, s.hasLastPos = pos, true

	reason := s.replanReason(current, goal, settings)
	if reason != ReasonNone {
		if s.state == StateNotFound && s.tick < s.cooldownUntil && reason == ReasonNoPlan {
			return s.idle(StateNotFound)
		}
		step, ok := s.replan(current, goal, reason, settings)
		if !ok {
			return step
		}
		step.Stuck = stuck
		return s.steer(pos, current, settings, step)
	}

	s.validate(settings)
	return s.steer(pos, current, settings, Step{})
}

func (s *Session) detectStall(pos nav.Vec2, settings nav.Settings) bool {
	if s.state != StateFollowing || !s.moving || !s.hasLastPos {
		s.stallTicks = 0
		return false
	}
	next := s.index + 1
	if next >= s.plan.Len() || !s.finder.Walkable(s.plan.At(next)) {
		s.stallTicks = 0
		return false
	}
	if pos.Dist(s.lastPos) >= settings.StuckEpsilon {
		s.stallTicks = 0
		return false
	}
	s.stallTicks++
	if s.stallTicks < settings.StuckTicks {
		return false
	}
	s.stallTicks = 0
	s.forced = ReasonStuck
	return true
}

func (s *Session) replanReason(current, goal grid.Cell, settings nav.Settings) Reason {
	if s.forced != ReasonNone {
		return s.forced
	}
	if s.hasTarget && goal.Chebyshev(s.lastTarget) > settings.RetargetTolerance {
		return ReasonRetarget
	}
	if s.plan.Empty() {
		return ReasonNoPlan
	}
	if s.drifted(current, settings) {
		return ReasonDrift
	}
	return ReasonNone
}

// drifted reports whether current is more than one cell away from every plan
// cell in the window around the index.
func (s *Session) drifted(current grid.Cell, settings nav.Settings) bool {
	lo := s.index - 1
	if lo < 0 {
		lo = 0
	}
	hi := s.index + settings.DriftWindow
	if hi > s.plan.Len()-1 {
		hi = s.plan.Len() - 1
	}
	for i := lo; i <= hi; i++ {
		if s.plan.At(i).Chebyshev(current) <= 1 {
			return false
		}
	}
	return true
}

func (s *Session) replan(current, goal grid.Cell, reason Reason, settings nav.Settings) (Step, bool) {
	s.forced = ReasonNone
	s.lastTarget, s.hasTarget = goal, true
	s.stallTicks = 0
	s.index = 0

	fallback := false
	plan, err := s.finder.FindPath(current, goal)
	if err != nil && settings.AreaFallbackRadius > 0 {
		if areaPlan, areaErr := s.finder.FindPathAroundGoal(current, goal, settings.AreaFallbackRadius); areaErr == nil {
			plan, err, fallback = areaPlan, nil, true
		}
	}
	if err != nil {
		s.plan = nav.Plan{}
		s.state = StateNotFound
		s.moving = false
		s.cooldownUntil = s.tick + uint64(settings.RetryCooldownTicks)
		return Step{State: StateNotFound, Replanned: true, Reason: reason, Err: err}, false
	}

	s.plan = plan
	s.state = StateFollowing
	s.lastValidated = s.tick
	s.lastRevision = s.finder.Revision()
	return Step{Replanned: true, Reason: reason, Fallback: fallback}, true
}

// validate re-checks the upcoming waypoints on a fixed cadence, or sooner
// when the grid has changed since the last check.
func (s *Session) validate(settings nav.Settings) {
	if s.plan.Empty() {
		return
	}
	revision := s.finder.Revision()
	if s.tick-s.lastValidated < uint64(settings.RevalidationInterval) && revision == s.lastRevision {
		return
	}
	s.lastValidated = s.tick
	s.lastRevision = revision
	for i := 1; i <= settings.ValidationLookahead; i++ {
		next := s.index + i
		if next >= s.plan.Len() {
			break
		}
		if !s.finder.Walkable(s.plan.At(next)) {
			s.forced = ReasonBlocked
			return
		}
	}
}

func (s *Session) advance(pos nav.Vec2, current grid.Cell, settings nav.Settings) {
	for i := s.index; i < s.plan.Len(); i++ {
		cell := s.plan.At(i)
		if cell == current || nav.CellCenter(cell).Dist(pos) <= settings.PathCompletionRadius {
			s.index = i
			return
		}
	}
}

func (s *Session) steer(pos nav.Vec2, current grid.Cell, settings nav.Settings, step Step) Step {
	s.advance(pos, current, settings)
	last := s.plan.Len() - 1
	if s.index >= last {
		goal := nav.CellCenter(s.plan.At(last))
		if goal.Dist(pos) <= settings.PathCompletionRadius {
			s.state = StateArrived
			s.moving = false
			step.State = StateArrived
			step.Waypoint = goal
			return step
		}
		s.state = StateFollowing
		s.moving = true
		step.State = StateFollowing
		step.Waypoint = goal
		step.Direction = goal.Sub(pos).Normalize()
		return step
	}

	next := s.index + 1
	furthest := next + settings.SteeringLookahead
	if furthest > last {
		furthest = last
	}
	aim, clear := nav.Vec2{}, false
	for k := furthest; k >= next; k-- {
		candidate := nav.CellCenter(s.plan.At(k))
		if s.finder.ClearLine(pos, candidate) {
			aim, clear = candidate, true
			break
		}
	}
	if !clear {
		// Off the plan cells after a shortcut: head back to the last reached
		// waypoint before continuing.
		aim = nav.CellCenter(s.plan.At(next))
		if current != s.plan.At(s.index) {
			aim = nav.CellCenter(s.plan.At(s.index))
		}
	}
	s.state = StateFollowing
	s.moving = true
	step.State = StateFollowing
	step.Waypoint = aim
	step.Direction = aim.Sub(pos).Normalize()
	return step
}

func (s *Session) idle(state State) Step {
	s.moving = false
	return Step{State: state}
}
