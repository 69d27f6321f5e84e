package placement

import (
	"context"

	"github.com/Rushhhy/sim-game/logging"
)

const (
	// EventPlaced is emitted when an entry is committed to the grid.
	EventPlaced logging.EventType = "placement.placed"
	// EventRejected is emitted when a placement command fails validation.
	EventRejected logging.EventType = "placement.rejected"
	// EventRemoved is emitted when an entry is removed from the grid.
	EventRemoved logging.EventType = "placement.removed"
)

// EntryPayload describes a placed or removed entry.
type EntryPayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Category int    `json:"category"`
	Owner    int    `json:"owner"`
	Kind     string `json:"kind"`
	Cells    int    `json:"cells"`
}

// RejectedPayload describes why a placement was refused.
type RejectedPayload struct {
	EntryPayload
	Reason string `json:"reason"`
}

// Placed publishes an info event for a committed entry.
func Placed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, commandID string, payload EntryPayload) {
	publish(ctx, pub, logging.Event{
		Type:      EventPlaced,
		Tick:      tick,
		Actor:     actor,
		Severity:  logging.SeverityInfo,
		Payload:   payload,
		CommandID: commandID,
	})
}

// Rejected publishes a warning for a refused placement.
func Rejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, commandID string, payload RejectedPayload) {
	publish(ctx, pub, logging.Event{
		Type:      EventRejected,
		Tick:      tick,
		Actor:     actor,
		Severity:  logging.SeverityWarn,
		Payload:   payload,
		CommandID: commandID,
	})
}

// Removed publishes an info event for a removed entry.
func Removed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, commandID string, payload EntryPayload) {
	publish(ctx, pub, logging.Event{
		Type:      EventRemoved,
		Tick:      tick,
		Actor:     actor,
		Severity:  logging.SeverityInfo,
		Payload:   payload,
		CommandID: commandID,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryPlacement
	pub.Publish(ctx, event)
}
