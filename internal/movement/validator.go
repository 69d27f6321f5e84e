package movement

import (
	"math/rand"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/nav"
)

const (
	defaultValidatorInterval     = 15
	defaultMaxRepositionDistance = 5.0
)

// Repositioner is the subset of *nav.Finder the validator needs.
type Repositioner interface {
	WalkableAt(p nav.Vec2) bool
	NearestWalkable(c grid.Cell) (grid.Cell, bool)
	RandomWalkable(center nav.Vec2, radius float64, rng *rand.Rand) (nav.Vec2, bool)
}

// ValidatorConfig tunes the periodic position check.
type ValidatorConfig struct {
	// Interval is the number of Tick calls between validations.
	Interval int `json:"interval"`
	// MaxDistance bounds how far the nearest walkable cell may be before a
	// random point is used instead.
	MaxDistance float64 `json:"maxDistance"`
}

// DefaultValidatorConfig matches a one-second cadence at 15 ticks per second.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{Interval: defaultValidatorInterval, MaxDistance: defaultMaxRepositionDistance}
}

func (c ValidatorConfig) normalized() ValidatorConfig {
	if c.Interval <= 0 {
		c.Interval = defaultValidatorInterval
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = defaultMaxRepositionDistance
	}
	return c
}

// Validator moves agents off cells that became unwalkable underneath them,
// for instance when a building is placed on top of an idle villager.
type Validator struct {
	finder Repositioner
	cfg    ValidatorConfig
	rng    *rand.Rand
	ticks  int
}

// NewValidator constructs a validator. rng drives the random fallback.
func NewValidator(finder Repositioner, cfg ValidatorConfig, rng *rand.Rand) *Validator {
	return &Validator{finder: finder, cfg: cfg.normalized(), rng: rng}
}

// Tick counts one call and validates pos when the interval has elapsed.
func (v *Validator) Tick(pos nav.Vec2) (nav.Vec2, bool) {
	v.ticks++
	if v.ticks < v.cfg.Interval {
		return pos, false
	}
	v.ticks = 0
	return v.Reposition(pos)
}

// Reposition returns a walkable replacement for pos immediately. The second
// result is false when pos is already walkable or nothing could be found.
func (v *Validator) Reposition(pos nav.Vec2) (nav.Vec2, bool) {
	if v.finder.WalkableAt(pos) {
		return pos, false
	}
	if cell, ok := v.finder.NearestWalkable(nav.WorldToCell(pos)); ok {
		center := nav.CellCenter(cell)
		if center.Dist(pos) <= v.cfg.MaxDistance {
			return center, true
		}
	}
	if v.rng == nil {
		return pos, false
	}
	if p, ok := v.finder.RandomWalkable(pos, v.cfg.MaxDistance, v.rng); ok {
		return p, true
	}
	return pos, false
}
