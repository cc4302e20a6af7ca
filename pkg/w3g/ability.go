package w3g

import "fmt"

// AbilityCode is a FourCC ability/unit identifier.
//
// Codes are stored in the replay byte-reversed: "htow" (Town Hall) is
// stored as "woth" [0x77, 0x6F, 0x74, 0x68]. The first character of the
// canonical (un-reversed) form indicates race: h/o/u/e/n for Human, Orc,
// Undead, Night Elf and Neutral respectively; uppercase means a hero
// ability rather than a unit or building.
type AbilityCode [4]byte

// abilityCodeFromRaw builds an AbilityCode from the raw (reversed) bytes
// as they appear in the replay stream.
func abilityCodeFromRaw(raw [4]byte) AbilityCode {
	return AbilityCode(raw)
}

// String returns the canonical (un-reversed) form, e.g. "htow".
func (c AbilityCode) String() string {
	return string([]byte{c[3], c[2], c[1], c[0]})
}

// RawBytes returns the bytes as stored in the replay.
func (c AbilityCode) RawBytes() [4]byte {
	return [4]byte(c)
}

// Race reports the race associated with this code, if identifiable from
// its first canonical character.
func (c AbilityCode) Race() (Race, bool) {
	switch c[3] {
	case 'h', 'H':
		return RaceHuman, true
	case 'o', 'O':
		return RaceOrc, true
	case 'u', 'U':
		return RaceUndead, true
	case 'e', 'E':
		return RaceNightElf, true
	case 'n', 'N':
		return RaceNeutral, true
	default:
		return 0, false
	}
}

// IsHeroAbility reports whether the canonical prefix is uppercase, which
// marks a hero ability rather than a unit or building code.
func (c AbilityCode) IsHeroAbility() bool {
	switch c[3] {
	case 'H', 'O', 'U', 'E', 'N':
		return true
	default:
		return false
	}
}

// IsValidFourCC reports whether every byte is printable ASCII.
func (c AbilityCode) IsValidFourCC() bool {
	for _, b := range c {
		if !(b >= 0x21 && b <= 0x7E) && b != ' ' {
			return false
		}
	}
	return true
}

// Name returns the human-readable unit/ability name for this code, if
// known, falling back to its canonical FourCC string.
func (c AbilityCode) Name() string {
	canonical := c.String()
	if name, ok := ItemIDNames[canonical]; ok {
		return name
	}
	return canonical
}

// Race classifies an ability or unit code's originating faction.
type Race int

const (
	RaceHuman Race = iota
	RaceOrc
	RaceUndead
	RaceNightElf
	RaceNeutral
)

func (r Race) String() string {
	switch r {
	case RaceHuman:
		return "Human"
	case RaceOrc:
		return "Orc"
	case RaceUndead:
		return "Undead"
	case RaceNightElf:
		return "Night Elf"
	case RaceNeutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// AbilityAction is a direct ability use (0x1A 0x19), issued without an
// embedded selection block.
//
// Wire format: 1A 19 [ability: 4 bytes FourCC] [target: 8 bytes]. Total
// size 14 bytes including the marker and subcommand.
type AbilityAction struct {
	AbilityCode AbilityCode
	TargetUnit  *uint32
}

const (
	abilityMarker         byte = 0x1A
	abilitySubcommandDirect byte = 0x19
	abilityActionSize          = 14
)

// parseAbilityAction parses a direct ability action starting at its 0x1A
// 0x19 markers.
func parseAbilityAction(data []byte) (*AbilityAction, int, error) {
	if len(data) < abilityActionSize {
		return nil, 0, newUnexpectedEOFError(abilityActionSize, len(data))
	}
	if data[0] != abilityMarker || data[1] != abilitySubcommandDirect {
		return nil, 0, newInvalidHeaderError(
			fmt.Sprintf("invalid ability markers: expected 0x%02X 0x%02X, found 0x%02X 0x%02X",
				abilityMarker, abilitySubcommandDirect, data[0], data[1]), 0)
	}

	code := abilityCodeFromRaw([4]byte{data[2], data[3], data[4], data[5]})
	target := target32FromAllFF(data[6:14])

	return &AbilityAction{AbilityCode: code, TargetUnit: target}, abilityActionSize, nil
}

// target32FromAllFF reads a little-endian uint32 from the first 4 bytes of
// an 8-byte target block, unless the block is all 0xFF (no target).
func target32FromAllFF(target8 []byte) *uint32 {
	allFF := true
	for _, b := range target8 {
		if b != 0xFF {
			allFF = false
			break
		}
	}
	if allFF {
		return nil
	}
	v := uint32(target8[0]) | uint32(target8[1])<<8 | uint32(target8[2])<<16 | uint32(target8[3])<<24
	return &v
}

// AbilityWithSelectionAction is an ability preceded by a selection block
// (0x1A 0x00): 1A 00 [selection block] [1A 19 ability...].
type AbilityWithSelectionAction struct {
	Selection *SelectionAction
	Ability   *AbilityAction
}

const abilityWithSelectionSubcommand byte = 0x00

func parseAbilityWithSelectionAction(data []byte) (*AbilityWithSelectionAction, int, error) {
	if len(data) < 3 {
		return nil, 0, newUnexpectedEOFError(3, len(data))
	}
	if data[0] != abilityMarker || data[1] != abilityWithSelectionSubcommand {
		return nil, 0, newInvalidHeaderError(
			fmt.Sprintf("invalid ability-with-selection markers: expected 0x%02X 0x%02X, found 0x%02X 0x%02X",
				abilityMarker, abilityWithSelectionSubcommand, data[0], data[1]), 0)
	}
	if data[2] != selectionMarker {
		return nil, 0, newInvalidHeaderError(
			fmt.Sprintf("expected selection marker 0x16 after 0x1A 0x00, found 0x%02X", data[2]), 0)
	}

	selection, selConsumed, err := parseSelectionAction(data[2:])
	if err != nil {
		return nil, 0, err
	}

	abilityOffset := 2 + selConsumed
	if len(data) < abilityOffset+abilityActionSize {
		return nil, 0, newUnexpectedEOFError(abilityOffset+abilityActionSize, len(data))
	}

	ability, abConsumed, err := parseAbilityAction(data[abilityOffset:])
	if err != nil {
		return nil, 0, err
	}

	return &AbilityWithSelectionAction{Selection: selection, Ability: ability}, abilityOffset + abConsumed, nil
}

// InstantAbilityAction is an instant (auto-cast or queued) ability use
// (0x0F 0x00): 0F 00 [flags:2] [unknown:2] [ability:4] [target:8].
type InstantAbilityAction struct {
	Flags       uint16
	Unknown     uint16
	AbilityCode AbilityCode
	TargetUnit  *uint32
}

const (
	instantAbilityMarker     byte = 0x0F
	instantAbilitySubcommand byte = 0x00
	instantAbilitySize            = 18
)

func parseInstantAbilityAction(data []byte) (*InstantAbilityAction, int, error) {
	if len(data) < instantAbilitySize {
		return nil, 0, newUnexpectedEOFError(instantAbilitySize, len(data))
	}
	if data[0] != instantAbilityMarker || data[1] != instantAbilitySubcommand {
		return nil, 0, newInvalidHeaderError(
			fmt.Sprintf("invalid instant ability markers: expected 0x%02X 0x%02X, found 0x%02X 0x%02X",
				instantAbilityMarker, instantAbilitySubcommand, data[0], data[1]), 0)
	}

	flags := uint16(data[2]) | uint16(data[3])<<8
	unknown := uint16(data[4]) | uint16(data[5])<<8
	code := abilityCodeFromRaw([4]byte{data[6], data[7], data[8], data[9]})
	target := target32FromAllFF(data[10:18])

	return &InstantAbilityAction{
		Flags:       flags,
		Unknown:     unknown,
		AbilityCode: code,
		TargetUnit:  target,
	}, instantAbilitySize, nil
}
