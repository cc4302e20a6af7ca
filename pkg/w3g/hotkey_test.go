package w3g

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHotkeyAction(t *testing.T) {
	cases := []struct {
		op       byte
		expected HotkeyOperation
	}{
		{0, HotkeyAssign},
		{1, HotkeySelect},
		{2, HotkeyAddToGroup},
		{9, HotkeyUnknownOp},
	}

	for _, c := range cases {
		data := []byte{0x17, 0x03, c.op}
		action, n, err := parseHotkeyAction(data)
		require.NoError(t, err)
		assert.Equal(t, hotkeyMinSize, n)
		assert.Equal(t, uint8(3), action.Group)
		assert.Equal(t, c.expected, action.Operation)
	}
}

func TestHotkeyAction_Predicates(t *testing.T) {
	assign, _, err := parseHotkeyAction([]byte{0x17, 0x00, 0x00})
	require.NoError(t, err)
	assert.True(t, assign.IsAssign())
	assert.False(t, assign.IsSelect())
	assert.True(t, assign.IsValidGroup())

	invalidGroup, _, err := parseHotkeyAction([]byte{0x17, 12, 0x01})
	require.NoError(t, err)
	assert.True(t, invalidGroup.IsSelect())
	assert.False(t, invalidGroup.IsValidGroup())
}

func TestParseHotkeyAction_WrongMarker(t *testing.T) {
	_, _, err := parseHotkeyAction([]byte{0x18, 0x00, 0x00})
	assert.Error(t, err)
}

func TestParseHotkeyAction_Truncated(t *testing.T) {
	_, _, err := parseHotkeyAction([]byte{0x17, 0x00})
	assert.Error(t, err)
}
