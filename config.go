package simgame

import (
	"github.com/Rushhhy/sim-game/internal/mapdef"
	"github.com/Rushhhy/sim-game/internal/movement"
	"github.com/Rushhhy/sim-game/internal/nav"
	"github.com/Rushhhy/sim-game/internal/simutil"
	"github.com/Rushhhy/sim-game/internal/telemetry"
	"github.com/Rushhhy/sim-game/logging"
)

const (
	defaultTickRate         = 15
	defaultVillagerCount    = 4
	defaultVillagerSpeed    = 2.5
	defaultIdleWanderTicks  = 45
	defaultIdleWanderRadius = 6.0
	defaultCommandCapacity  = 256
	defaultPerActorLimit    = 16
	defaultCatchupMaxTicks  = 3
)

// HubConfig captures the tunables for a hub. Normalized replaces unset
// numeric fields with defaults; a zero Navigation selects nav.DefaultSettings.
type HubConfig struct {
	TickRate int
	Seed     string
	// Map is the layout the grid is built from. Nil selects the default
	// village.
	Map *mapdef.Document
	// NatureDensity scatters procedural nature over the map when positive.
	NatureDensity float64
	// VillagerCount villagers are spawned around the home cell on start.
	VillagerCount int
	// VillagerSpeed is in cells per second.
	VillagerSpeed    float64
	IdleWanderTicks  int
	IdleWanderRadius float64
	Navigation       nav.Settings
	Validator        movement.ValidatorConfig
	CommandCapacity  int
	PerActorLimit    int
	CatchupMaxTicks  int

	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   *telemetry.Counters
	Clock     logging.Clock
}

// DefaultHubConfig returns the configuration used by the server binary.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:         defaultTickRate,
		Seed:             simutil.DefaultSeed,
		VillagerCount:    defaultVillagerCount,
		VillagerSpeed:    defaultVillagerSpeed,
		IdleWanderTicks:  defaultIdleWanderTicks,
		IdleWanderRadius: defaultIdleWanderRadius,
		Navigation:       nav.DefaultSettings(),
		Validator:        movement.DefaultValidatorConfig(),
		CommandCapacity:  defaultCommandCapacity,
		PerActorLimit:    defaultPerActorLimit,
		CatchupMaxTicks:  defaultCatchupMaxTicks,
	}
}

// Normalized fills unset or invalid fields with defaults.
func (c HubConfig) Normalized() HubConfig {
	if c.TickRate <= 0 {
		c.TickRate = defaultTickRate
	}
	if c.Seed == "" {
		c.Seed = simutil.DefaultSeed
	}
	if c.VillagerCount < 0 {
		c.VillagerCount = 0
	}
	if c.VillagerSpeed <= 0 {
		c.VillagerSpeed = defaultVillagerSpeed
	}
	if c.IdleWanderTicks <= 0 {
		c.IdleWanderTicks = defaultIdleWanderTicks
	}
	if c.IdleWanderRadius <= 0 {
		c.IdleWanderRadius = defaultIdleWanderRadius
	}
	if c.NatureDensity < 0 {
		c.NatureDensity = 0
	}
	if c.NatureDensity > 1 {
		c.NatureDensity = 1
	}
	if c.Navigation == (nav.Settings{}) {
		c.Navigation = nav.DefaultSettings()
	}
	c.Navigation = c.Navigation.Normalized()
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = defaultCommandCapacity
	}
	if c.PerActorLimit < 0 {
		c.PerActorLimit = 0
	}
	if c.CatchupMaxTicks <= 0 {
		c.CatchupMaxTicks = defaultCatchupMaxTicks
	}
	if c.Logger == nil {
		c.Logger = telemetry.LoggerFunc(nil)
	}
	if c.Publisher == nil {
		c.Publisher = logging.NopPublisher()
	}
	if c.Metrics == nil {
		c.Metrics = telemetry.NewCounters()
	}
	return c
}
