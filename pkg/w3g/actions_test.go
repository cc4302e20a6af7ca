package w3g

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionIterator_MixedStream(t *testing.T) {
	var data []byte

	// player 1: escape key (0x18)
	data = append(data, 0x01, 0x18)

	// player 2: selection of one unit
	data = append(data, 0x02, 0x16, 0x01, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF)

	// player 3: basic command (type, flags, 4-byte command id, 8-byte target)
	data = append(data, 0x03, 0x1C, 0x00, 0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 0, 0, 0, 0, 0)

	ctx := ActionContext{TimestampMs: 1234, FrameNumber: 0}
	it := newActionIterator(data, ctx)

	var actions []*Action
	for {
		a, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		actions = append(actions, a)
	}

	require.Len(t, actions, 3)
	assert.Equal(t, byte(1), actions[0].PlayerID)
	assert.Equal(t, ActionKindEscapeKey, actions[0].Kind)
	assert.Equal(t, uint64(1234), actions[0].TimestampMs)

	assert.Equal(t, byte(2), actions[1].PlayerID)
	assert.Equal(t, ActionKindSelection, actions[1].Kind)
	require.NotNil(t, actions[1].Selection)
	assert.Equal(t, uint8(1), actions[1].Selection.UnitCount)

	assert.Equal(t, byte(3), actions[2].PlayerID)
	assert.Equal(t, ActionKindBasicCommand, actions[2].Kind)
	assert.Equal(t, leUint32([]byte{0xAA, 0xBB, 0xCC, 0xDD}), actions[2].CommandID)
}

func TestActionIterator_InvalidPlayerID(t *testing.T) {
	data := []byte{0x00, 0x18} // player id 0 is out of range
	it := newActionIterator(data, ActionContext{})
	_, ok, err := it.Next()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestDispatchActionType_BuildTrain(t *testing.T) {
	data := []byte{0x1D, 0x00, 'w', 'o', 't', 'h'}
	action, consumed, err := dispatchActionType(0x1D, nil, data)
	require.NoError(t, err)
	assert.Equal(t, 6, consumed)
	assert.Equal(t, ActionKindBuildTrain, action.Kind)
	assert.Equal(t, [4]byte{'w', 'o', 't', 'h'}, action.UnitCode)
}

func TestDispatchActionType_SelectSubgroup(t *testing.T) {
	data := []byte{0x19, 0x03, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
	action, consumed, err := dispatchActionType(0x19, nil, data)
	require.NoError(t, err)
	assert.Equal(t, 10, consumed)
	assert.Equal(t, ActionKindSelectSubgroup, action.Kind)
	assert.Equal(t, byte(3), action.Slot)
	assert.Equal(t, uint32(1), action.ObjectID1)
	assert.Equal(t, uint32(2), action.ObjectID2)
}

func TestDispatchActionType_MinimapPing(t *testing.T) {
	data := append([]byte{0x68}, float32Bytes(10)...)
	data = append(data, float32Bytes(-20)...)
	data = append(data, 0x00, 0x00, 0x00, 0x00)

	action, consumed, err := dispatchActionType(0x68, nil, data)
	require.NoError(t, err)
	assert.Equal(t, 13, consumed)
	assert.Equal(t, ActionKindMinimapPing, action.Kind)
	assert.InDelta(t, 10, action.PingX, 0.001)
	assert.InDelta(t, -20, action.PingY, 0.001)
}

func TestDispatchActionType_WrappedAbility11_LongForm(t *testing.T) {
	data := []byte{
		0x11, 0x00, 0x18, 0x01, 0x00, // wrapper header
		0x1A, 0x19, // inner direct-ability marker
		'w', 'o', 't', 'h', // ability code (reversed "htow")
		0x05, 0x00, 0x00, 0x00, // target unit id
		0x00, 0x00, 0x00, 0x00, // trailing pad to reach 19 bytes
	}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x11, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 19, consumed)
	assert.Equal(t, ActionKindAbility, action.Kind)
	require.NotNil(t, action.Ability)
	assert.Equal(t, "htow", action.Ability.AbilityCode.String())
	require.NotNil(t, action.Ability.TargetUnit)
	assert.Equal(t, uint32(5), *action.Ability.TargetUnit)
}

func TestDispatchActionType_WrappedAbility11_ShortMarker(t *testing.T) {
	data := []byte{0x11, 0x00, 0x18, 0x00}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x11, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 4, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0x11001800), action.CommandID)
}

func TestDispatchActionType_WrappedAbility11_Sync(t *testing.T) {
	data := make([]byte, 18)
	data[0], data[1], data[2] = 0x11, 0x00, 0x7B
	data[12] = 'A' // embedded FourCC-ish marker, triggers the 18-byte form

	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x11, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 18, consumed)
	assert.Equal(t, ActionKindBattleNetSync, action.Kind)
	assert.Len(t, action.SyncData, 15)
}

func TestDispatchActionType_ReforgedQueue03(t *testing.T) {
	data := []byte{0x03, 0x00, 0x18, 0x07, 0x03}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x03, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 5, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0x03001803)|uint32(0x07)<<24, action.CommandID)
}

func TestDispatchActionType_ClassicWrappedAbility03(t *testing.T) {
	data := []byte{
		0x03, 0x1A, 0x19,
		'w', 'o', 't', 'h',
		0x09, 0x00, 0x00, 0x00,
		0x00,
	}
	sub := byte(0x1A)
	action, consumed, err := dispatchActionType(0x03, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 12, consumed)
	assert.Equal(t, ActionKindAbility, action.Kind)
	require.NotNil(t, action.Ability)
	assert.Equal(t, "htow", action.Ability.AbilityCode.String())
	require.NotNil(t, action.Ability.TargetUnit)
	assert.Equal(t, uint32(9), *action.Ability.TargetUnit)
}

func TestDispatchActionType_SelectionShortcut0C_LongForm(t *testing.T) {
	data := []byte{0x0C, 0x00, 0x16, 0x01, 0x01, 0x00, 0x2A, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x0C, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 14, consumed)
	assert.Equal(t, ActionKindSelection, action.Kind)
	require.NotNil(t, action.Selection)
	assert.Equal(t, uint8(1), action.Selection.UnitCount)
	assert.Equal(t, []uint32{0x2A}, action.Selection.UnitIDs)
}

func TestDispatchActionType_SelectionShortcut0C_ShortMarker(t *testing.T) {
	data := []byte{0x0C, 0x00}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x0C, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0x0C000000), action.CommandID)
}

func TestDispatchActionType_MovementWrapper2C(t *testing.T) {
	data := []byte{
		0x2C, 0x00, 0x14, 0x00, 0x00, 0x03, 0x00, 0x0D, 0x00, // wrapper prefix
	}
	data = append(data, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF) // no target
	data = append(data, float32Bytes(100)...)                          // full x
	data = append(data, 0x00, 0x00, 0x00)                              // partial y (zero-padded to 0.0)
	require.Len(t, data, 24)

	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x2C, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 24, consumed)
	assert.Equal(t, ActionKindMovement, action.Kind)
	require.NotNil(t, action.Movement)
	assert.Equal(t, MovementMove, action.Movement.Type)
	assert.Nil(t, action.Movement.TargetUnit)
	assert.InDelta(t, 100, action.Movement.X, 0.001)
	assert.InDelta(t, 0, action.Movement.Y, 0.001)
}

func TestDispatchActionType_WrappedAttackAbility0E(t *testing.T) {
	data := []byte{
		0x0E, 0x00, 0x1A, 0x19,
		'w', 'o', 't', 'h',
		0x03, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x0E, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 14, consumed)
	assert.Equal(t, ActionKindAbility, action.Kind)
	require.NotNil(t, action.Ability)
	assert.Equal(t, "htow", action.Ability.AbilityCode.String())
	require.NotNil(t, action.Ability.TargetUnit)
	assert.Equal(t, uint32(3), *action.Ability.TargetUnit)
}

func TestDispatchActionType_WrappedSelectionSet(t *testing.T) {
	data := []byte{0x26, 0x00, 0x16, 0x01, 0x01, 0x00, 0x07, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x26, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 14, consumed)
	assert.Equal(t, ActionKindSelection, action.Kind)
	require.NotNil(t, action.Selection)
	assert.Equal(t, []uint32{0x07}, action.Selection.UnitIDs)
}

func TestDispatchActionType_WrappedSelectionSet_ShortMarker(t *testing.T) {
	data := []byte{0x36, 0x00}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x36, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0x36)<<8, action.CommandID)
}

func TestDispatchActionType_GenericShortFormMarker(t *testing.T) {
	data := []byte{0x40, 0x00}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x40, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0x40)<<8, action.CommandID)
}

func TestDispatchActionType_GenericHighRangeSelection(t *testing.T) {
	data := []byte{0x90, 0x00, 0x16, 0x01, 0x01, 0x00, 0x11, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	sub := byte(0x00)
	action, consumed, err := dispatchActionType(0x90, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 14, consumed)
	assert.Equal(t, ActionKindSelection, action.Kind)
	require.NotNil(t, action.Selection)
	assert.Equal(t, []uint32{0x11}, action.Selection.UnitIDs)
}

func TestDispatchActionType_SpecialA0Sync(t *testing.T) {
	data := []byte{0xA0, 0x02}
	sub := byte(0x02)
	action, consumed, err := dispatchActionType(0xA0, &sub, data)
	require.NoError(t, err)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, ActionKindBasicCommand, action.Kind)
	assert.Equal(t, uint32(0xA0020000), action.CommandID)
}

func TestDispatchActionType_Unknown(t *testing.T) {
	data := []byte{0xFE, 0x00, 0x00, 0x00, 0x03, 0x18}
	action, consumed, err := dispatchActionType(0xFE, nil, data)
	require.NoError(t, err)
	assert.Equal(t, ActionKindUnknown, action.Kind)
	assert.True(t, action.IsUnknown())
	// resynced to the plausible player-id/action-type boundary at index 4
	assert.Equal(t, 4, consumed)
}

func TestActionStatistics_Record(t *testing.T) {
	stats := NewActionStatistics()

	ability := &AbilityAction{AbilityCode: abilityCodeFromRaw([4]byte{'w', 'o', 't', 'h'})}
	stats.Record(&Action{PlayerID: 1, Kind: ActionKindAbility, Ability: ability})
	stats.Record(&Action{PlayerID: 1, Kind: ActionKindMovement})
	stats.Record(&Action{PlayerID: 2, Kind: ActionKindUnknown})

	assert.Equal(t, 3, stats.TotalActions)
	assert.Equal(t, 1, stats.AbilityActions)
	assert.Equal(t, 1, stats.MovementActions)
	assert.Equal(t, 1, stats.UnknownActions)
	assert.Equal(t, 1, stats.UniqueAbilityCount())
	assert.Equal(t, 2, stats.ActionsPerPlayer[1])
	assert.InDelta(t, 1.0/3.0, stats.ErrorRate(), 0.001)
}
