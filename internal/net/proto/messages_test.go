package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhhy/sim-game/internal/grid"
	"github.com/Rushhhy/sim-game/internal/sim"
)

func TestClientCommand(t *testing.T) {
	t.Run("place command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:     TypePlace,
			X:        3,
			Y:        -2,
			Width:    2,
			Height:   3,
			Category: 20,
			Kind:     "structure",
		})
		require.True(t, ok)
		assert.Equal(t, sim.CommandPlace, cmd.Type)
		require.NotNil(t, cmd.Place)
		assert.Equal(t, sim.PlaceCommand{X: 3, Y: -2, Width: 2, Height: 3, Category: 20, Kind: "structure"}, *cmd.Place)
	})

	t.Run("remove command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeRemove, X: 5, Y: 6})
		require.True(t, ok)
		assert.Equal(t, sim.CommandRemove, cmd.Type)
		require.NotNil(t, cmd.Remove)
		assert.Equal(t, 5, cmd.Remove.X)
		assert.Equal(t, 6, cmd.Remove.Y)
	})

	t.Run("spawn command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeSpawn, X: 1.5, Y: 2.5})
		require.True(t, ok)
		require.NotNil(t, cmd.Spawn)
		assert.Equal(t, 1.5, cmd.Spawn.X)
		assert.Equal(t, 2.5, cmd.Spawn.Y)
	})

	t.Run("move command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeMove, X: 12.5, Y: -4, VillagerID: "villager-1"})
		require.True(t, ok)
		assert.Equal(t, sim.CommandMove, cmd.Type)
		assert.Equal(t, "villager-1", cmd.VillagerID)
		require.NotNil(t, cmd.Move)
		assert.Equal(t, 12.5, cmd.Move.TargetX)
		assert.Equal(t, -4.0, cmd.Move.TargetY)
	})

	t.Run("move without villager", func(t *testing.T) {
		_, ok := ClientCommand(ClientMessage{Type: TypeMove, X: 1})
		assert.False(t, ok)
	})

	t.Run("stop and despawn", func(t *testing.T) {
		stop, ok := ClientCommand(ClientMessage{Type: TypeStop, VillagerID: "v"})
		require.True(t, ok)
		assert.Equal(t, sim.CommandStop, stop.Type)
		despawn, ok := ClientCommand(ClientMessage{Type: TypeDespawn, VillagerID: "v"})
		require.True(t, ok)
		assert.Equal(t, sim.CommandDespawn, despawn.Type)
	})

	t.Run("heartbeat is not a command", func(t *testing.T) {
		_, ok := ClientCommand(ClientMessage{Type: TypeHeartbeat})
		assert.False(t, ok)
	})
}

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"move","x":1,"y":2,"villagerId":"villager-3","seq":9}`))
	require.NoError(t, err)
	assert.Equal(t, Version, msg.Ver)
	require.NotNil(t, msg.CommandSeq)
	assert.Equal(t, uint64(9), *msg.CommandSeq)

	_, err = DecodeClientMessage([]byte(`{"ver":2,"type":"move"}`))
	assert.Error(t, err, "unsupported version")
	_, err = DecodeClientMessage([]byte(`{`))
	assert.Error(t, err, "malformed payload")
}

func decodeFrame(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestEncodeCommandFrames(t *testing.T) {
	data, err := EncodeCommandAck(CommandAck{Seq: 4, Tick: 10, VillagerID: "villager-2"})
	require.NoError(t, err)
	ack := decodeFrame(t, data)
	assert.Equal(t, TypeCommandAck, ack["type"])
	assert.Equal(t, 4.0, ack["seq"])
	assert.Equal(t, "villager-2", ack["villagerId"])

	data, err = EncodeCommandReject(CommandReject{Seq: 5, Reason: "queue_limit", Retry: true})
	require.NoError(t, err)
	reject := decodeFrame(t, data)
	assert.Equal(t, TypeCommandReject, reject["type"])
	assert.Equal(t, "queue_limit", reject["reason"])
	assert.Equal(t, true, reject["retry"])
	assert.NotContains(t, reject, "tick", "zero tick should be omitted")
}

func TestEncodeStateSnapshot(t *testing.T) {
	snapshot := sim.Snapshot{
		Tick:     7,
		Revision: 3,
		Villagers: []sim.Villager{{
			ID: "villager-1", X: 1.5, Y: 2.5, Mode: "travelling", State: "following",
			Path: []grid.Cell{{X: 1, Y: 2}, {X: 2, Y: 2}},
		}},
	}
	data, err := EncodeStateSnapshot(NewStateSnapshot(snapshot, 1234))
	require.NoError(t, err)
	frame := decodeFrame(t, data)

	assert.Equal(t, TypeState, frame["type"])
	assert.Equal(t, float64(Version), frame["ver"])
	assert.Equal(t, 7.0, frame["t"])
	assert.Equal(t, 1234.0, frame["serverTime"])
	assert.Equal(t, []any{}, frame["structures"])

	villagers, ok := frame["villagers"].([]any)
	require.True(t, ok)
	require.Len(t, villagers, 1)
	path, ok := villagers[0].(map[string]any)["path"].([]any)
	require.True(t, ok)
	assert.Len(t, path, 2)
}
