package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rushhhy/sim-game/logging"
)

func TestPathNotFoundPublishesWarning(t *testing.T) {
	var got logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) { got = event })
	PathNotFound(context.Background(), pub, 4, logging.VillagerRef("v1"), PathNotFoundPayload{Reason: "no_plan"})

	assert.Equal(t, EventPathNotFound, got.Type)
	assert.Equal(t, logging.SeverityWarn, got.Severity)
	assert.EqualValues(t, logging.CategoryNavigation, got.Category)
	assert.Equal(t, "v1", got.Actor.ID)
	assert.Equal(t, uint64(4), got.Tick)
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Arrived(context.Background(), nil, 1, logging.VillagerRef("v1"), CellPayload{})
		Stuck(context.Background(), nil, 1, logging.VillagerRef("v1"), PointPayload{})
	})
}
