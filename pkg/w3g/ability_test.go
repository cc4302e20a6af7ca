package w3g

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbilityCode_String(t *testing.T) {
	// "htow" (Town Hall) is stored byte-reversed as "woth".
	code := abilityCodeFromRaw([4]byte{'w', 'o', 't', 'h'})
	assert.Equal(t, "htow", code.String())
}

func TestAbilityCode_Race(t *testing.T) {
	cases := []struct {
		canonical string
		race      Race
		isHero    bool
	}{
		{"htow", RaceHuman, false},
		{"Hamg", RaceHuman, true},
		{"opeo", RaceOrc, false},
		{"Obla", RaceOrc, true},
		{"uaco", RaceUndead, false},
		{"ewsp", RaceNightElf, false},
		{"Edem", RaceNightElf, true},
	}

	for _, c := range cases {
		t.Run(c.canonical, func(t *testing.T) {
			raw := [4]byte{c.canonical[3], c.canonical[2], c.canonical[1], c.canonical[0]}
			code := abilityCodeFromRaw(raw)
			race, ok := code.Race()
			require.True(t, ok)
			assert.Equal(t, c.race, race)
			assert.Equal(t, c.isHero, code.IsHeroAbility())
		})
	}
}

func TestAbilityCode_Name(t *testing.T) {
	code := abilityCodeFromRaw([4]byte{'w', 'o', 't', 'h'})
	assert.Equal(t, "Town Hall", code.Name())

	unknown := abilityCodeFromRaw([4]byte{'?', '?', '?', '?'})
	assert.Equal(t, "????", unknown.Name())
}

func TestParseAbilityAction(t *testing.T) {
	data := []byte{
		0x1A, 0x19, // markers
		'w', 'o', 't', 'h', // ability code (htow reversed)
		0x01, 0x00, 0x00, 0x00, 0xCD, 0xAB, 0x00, 0x00, // target unit
	}

	action, n, err := parseAbilityAction(data)
	require.NoError(t, err)
	assert.Equal(t, abilityActionSize, n)
	assert.Equal(t, "htow", action.AbilityCode.String())
	require.NotNil(t, action.TargetUnit)
	assert.Equal(t, uint32(1), *action.TargetUnit)
}

func TestParseAbilityAction_NoTarget(t *testing.T) {
	data := []byte{
		0x1A, 0x19,
		'w', 'o', 't', 'h',
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}

	action, _, err := parseAbilityAction(data)
	require.NoError(t, err)
	assert.Nil(t, action.TargetUnit)
}

func TestParseAbilityAction_WrongMarker(t *testing.T) {
	data := make([]byte, abilityActionSize)
	data[0] = 0x1B
	_, _, err := parseAbilityAction(data)
	assert.Error(t, err)
}

func TestParseInstantAbilityAction(t *testing.T) {
	data := []byte{
		0x0F, 0x00, // markers
		0x01, 0x00, // flags
		0x00, 0x00, // unknown
		'w', 'o', 't', 'h', // ability code
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // no target
	}

	action, n, err := parseInstantAbilityAction(data)
	require.NoError(t, err)
	assert.Equal(t, instantAbilitySize, n)
	assert.Equal(t, uint16(1), action.Flags)
	assert.Equal(t, "htow", action.AbilityCode.String())
	assert.Nil(t, action.TargetUnit)
}

func TestParseAbilityWithSelectionAction(t *testing.T) {
	data := []byte{
		0x1A, 0x00, // ability-with-selection markers
		0x16,       // selection marker
		0x01,       // unit count
		0x00,       // mode
		0x00,       // flags
		0x01, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC, 0xDD, // unit id block
		0x1A, 0x19, // ability markers
		'w', 'o', 't', 'h',
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}

	action, consumed, err := parseAbilityWithSelectionAction(data)
	require.NoError(t, err)
	require.NotNil(t, action.Selection)
	require.NotNil(t, action.Ability)
	assert.Equal(t, "htow", action.Ability.AbilityCode.String())
	assert.Equal(t, len(data), consumed)
}
