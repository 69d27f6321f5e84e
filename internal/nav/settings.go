package nav

import "math"

const (
	defaultSearchNodeBudget          = 1000
	defaultPathCompletionRadius      = 0.15
	defaultRevalidationInterval      = 15
	defaultValidationLookahead       = 3
	defaultSteeringLookahead         = 2
	defaultDriftWindow               = 3
	defaultStuckEpsilon              = 0.01
	defaultStuckTicks                = 6
	defaultRetryCooldownTicks        = 8
	defaultAreaFallbackRadius        = 3
	defaultObstacleDetectionDistance = 1.5
	defaultSteeringForce             = 0.7
	defaultMaxAvoidanceAttempts      = 6
	defaultMaxRepositionSearchRadius = 10
	defaultMaxRandomAttempts         = 10

	maxValidationLookahead = 3
)

// Settings holds the walkability flags and search tuning shared by every
// query. It is passed by value; there is no package-level state.
type Settings struct {
	AllowWalkOnRoads       bool `json:"allowWalkOnRoads"`
	AllowWalkThroughNature bool `json:"allowWalkThroughNature"`
	EnableCorridors        bool `json:"enableCorridors"`

	AllowDiagonal    bool    `json:"allowDiagonal"`
	DiagonalCost     float64 `json:"diagonalCost"`
	SearchNodeBudget int     `json:"searchNodeBudget"`

	// PathCompletionRadius is the world distance at which a waypoint counts
	// as reached.
	PathCompletionRadius float64 `json:"pathCompletionRadius"`
	// RevalidationInterval is measured in RequestMove calls.
	RevalidationInterval int `json:"revalidationInterval"`
	// ValidationLookahead is the number of upcoming waypoints re-checked,
	// between 1 and 3.
	ValidationLookahead int `json:"validationLookahead"`
	// SteeringLookahead is how many waypoints ahead steering may aim at when
	// the straight line to them is clear. Zero disables smoothing.
	SteeringLookahead int `json:"steeringLookahead"`
	// DriftWindow is how many plan cells around the current index still
	// count as on-path.
	DriftWindow int `json:"driftWindow"`
	// RetargetTolerance is the Chebyshev distance a target may move before
	// the plan is rebuilt.
	RetargetTolerance int `json:"retargetTolerance"`

	StuckEpsilon       float64 `json:"stuckEpsilon"`
	StuckTicks         int     `json:"stuckTicks"`
	RetryCooldownTicks int     `json:"retryCooldownTicks"`
	AreaFallbackRadius int     `json:"areaFallbackRadius"`

	ObstacleDetectionDistance float64 `json:"obstacleDetectionDistance"`
	SteeringForce             float64 `json:"steeringForce"`
	MaxAvoidanceAttempts      int     `json:"maxAvoidanceAttempts"`
	MaxRepositionSearchRadius int     `json:"maxRepositionSearchRadius"`
	MaxRandomAttempts         int     `json:"maxRandomAttempts"`
}

// DefaultSettings returns the tuning used by the village simulation.
func DefaultSettings() Settings {
	return Settings{
		AllowWalkOnRoads:          true,
		AllowWalkThroughNature:    false,
		EnableCorridors:           true,
		AllowDiagonal:             true,
		DiagonalCost:              math.Sqrt2,
		SearchNodeBudget:          defaultSearchNodeBudget,
		PathCompletionRadius:      defaultPathCompletionRadius,
		RevalidationInterval:      defaultRevalidationInterval,
		ValidationLookahead:       defaultValidationLookahead,
		SteeringLookahead:         defaultSteeringLookahead,
		DriftWindow:               defaultDriftWindow,
		StuckEpsilon:              defaultStuckEpsilon,
		StuckTicks:                defaultStuckTicks,
		RetryCooldownTicks:        defaultRetryCooldownTicks,
		AreaFallbackRadius:        defaultAreaFallbackRadius,
		ObstacleDetectionDistance: defaultObstacleDetectionDistance,
		SteeringForce:             defaultSteeringForce,
		MaxAvoidanceAttempts:      defaultMaxAvoidanceAttempts,
		MaxRepositionSearchRadius: defaultMaxRepositionSearchRadius,
		MaxRandomAttempts:         defaultMaxRandomAttempts,
	}
}

// Normalized replaces out-of-range values with their defaults.
func (s Settings) Normalized() Settings {
	if s.DiagonalCost <= 0 || math.IsNaN(s.DiagonalCost) {
		s.DiagonalCost = math.Sqrt2
	}
	if s.SearchNodeBudget <= 0 {
		s.SearchNodeBudget = defaultSearchNodeBudget
	}
	if s.PathCompletionRadius <= 0 {
		s.PathCompletionRadius = defaultPathCompletionRadius
	}
	if s.RevalidationInterval <= 0 {
		s.RevalidationInterval = defaultRevalidationInterval
	}
	if s.ValidationLookahead <= 0 {
		s.ValidationLookahead = defaultValidationLookahead
	}
	if s.ValidationLookahead > maxValidationLookahead {
		s.ValidationLookahead = maxValidationLookahead
	}
	if s.SteeringLookahead < 0 {
		s.SteeringLookahead = 0
	}
	if s.DriftWindow <= 0 {
		s.DriftWindow = defaultDriftWindow
	}
	if s.RetargetTolerance < 0 {
		s.RetargetTolerance = 0
	}
	if s.StuckEpsilon <= 0 {
		s.StuckEpsilon = defaultStuckEpsilon
	}
	if s.StuckTicks <= 0 {
		s.StuckTicks = defaultStuckTicks
	}
	if s.RetryCooldownTicks < 0 {
		s.RetryCooldownTicks = 0
	}
	if s.AreaFallbackRadius < 0 {
		s.AreaFallbackRadius = 0
	}
	if s.ObstacleDetectionDistance <= 0 {
		s.ObstacleDetectionDistance = defaultObstacleDetectionDistance
	}
	if s.SteeringForce < 0 || s.SteeringForce > 1 {
		s.SteeringForce = defaultSteeringForce
	}
	if s.MaxAvoidanceAttempts <= 0 {
		s.MaxAvoidanceAttempts = defaultMaxAvoidanceAttempts
	}
	if s.MaxRepositionSearchRadius <= 0 {
		s.MaxRepositionSearchRadius = defaultMaxRepositionSearchRadius
	}
	if s.MaxRandomAttempts <= 0 {
		s.MaxRandomAttempts = defaultMaxRandomAttempts
	}
	return s
}
