package navigation

import (
	"context"

	"github.com/Rushhhy/sim-game/logging"
)

const (
	// EventPathNotFound is emitted when neither the goal nor any nearby cell can be reached.
	EventPathNotFound logging.EventType = "navigation.path_not_found"
	// EventReplanned is emitted when a movement session rebuilds its plan.
	EventReplanned logging.EventType = "navigation.replanned"
	// EventStuck is emitted when the stall detector forces a replan.
	EventStuck logging.EventType = "navigation.stuck"
	// EventArrived is emitted when a villager reaches its destination.
	EventArrived logging.EventType = "navigation.arrived"
	// EventRepositioned is emitted when a villager is moved off an unwalkable cell.
	EventRepositioned logging.EventType = "navigation.repositioned"
	// EventFallbackSteering is emitted when a villager starts steering without a plan.
	EventFallbackSteering logging.EventType = "navigation.fallback_steering"
)

// CellPayload is a plain cell coordinate.
type CellPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PointPayload is a world position.
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathNotFoundPayload describes a failed search.
type PathNotFoundPayload struct {
	From   CellPayload `json:"from"`
	To     CellPayload `json:"to"`
	Reason string      `json:"reason"`
	Error  string      `json:"error"`
}

// PathNotFound publishes a warning for a failed search.
func PathNotFound(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PathNotFoundPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventPathNotFound,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Payload:  payload,
	})
}

// ReplannedPayload describes a rebuilt plan.
type ReplannedPayload struct {
	Reason   string      `json:"reason"`
	Length   int         `json:"length"`
	Goal     CellPayload `json:"goal"`
	Fallback bool        `json:"fallback"`
}

// Replanned publishes a debug event for a rebuilt plan.
func Replanned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReplannedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventReplanned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Payload:  payload,
	})
}

// Stuck publishes an info event when a villager made no progress.
func Stuck(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, at PointPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventStuck,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Payload:  at,
	})
}

// Arrived publishes a debug event on arrival.
func Arrived(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, at CellPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventArrived,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Payload:  at,
	})
}

// RepositionedPayload records a forced move.
type RepositionedPayload struct {
	From PointPayload `json:"from"`
	To   PointPayload `json:"to"`
}

// Repositioned publishes an info event when a villager is moved.
func Repositioned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RepositionedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventRepositioned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Payload:  payload,
	})
}

// FallbackSteering publishes a debug event when steering replaces the plan.
func FallbackSteering(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, at PointPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventFallbackSteering,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Payload:  at,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryNavigation
	pub.Publish(ctx, event)
}
