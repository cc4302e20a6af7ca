package w3g

import "fmt"

// SelectionAction specifies which units are currently selected, giving
// context for subsequent ability and movement commands.
//
// Wire format: 16 [count:1] [mode:1] [flags:1] [unit_ids: 8 bytes each].
// Each unit occupies an 8-byte block; only the first 4 bytes (the unit
// ID) are kept, the second 4 may be a duplicate or counter.
type SelectionAction struct {
	UnitCount uint8
	Mode      uint8
	Flags     uint8
	UnitIDs   []uint32
}

const selectionMarker byte = 0x16

// parseSelectionAction parses a selection action starting at its 0x16
// marker.
func parseSelectionAction(data []byte) (*SelectionAction, int, error) {
	if len(data) == 0 {
		return nil, 0, newUnexpectedEOFError(1, 0)
	}
	if data[0] != selectionMarker {
		return nil, 0, newInvalidHeaderError(
			fmt.Sprintf("invalid selection marker: expected 0x%02X, found 0x%02X", selectionMarker, data[0]), 0)
	}
	if len(data) < 4 {
		return nil, 0, newUnexpectedEOFError(4, len(data))
	}

	unitCount := data[1]
	mode := data[2]
	flags := data[3]

	expectedSize := 4 + int(unitCount)*8
	if len(data) < expectedSize {
		return nil, 0, newUnexpectedEOFError(expectedSize, len(data))
	}

	unitIDs := extractUnitIDs(data[4:], unitCount)

	return &SelectionAction{
		UnitCount: unitCount,
		Mode:      mode,
		Flags:     flags,
		UnitIDs:   unitIDs,
	}, expectedSize, nil
}

// extractUnitIDs reads count unit IDs from 8-byte blocks, keeping only
// the first 4 bytes of each block.
func extractUnitIDs(data []byte, count uint8) []uint32 {
	ids := make([]uint32, 0, count)
	for i := 0; i < int(count); i++ {
		offset := i * 8
		if offset+4 > len(data) {
			break
		}
		ids = append(ids, leUint32(data[offset:offset+4]))
	}
	return ids
}

// SelectionMode reports the interpreted selection mode.
func (s *SelectionAction) SelectionMode() SelectionMode {
	return selectionModeFromByte(s.Mode)
}

// IsMultiSelect reports whether more than one unit was selected.
func (s *SelectionAction) IsMultiSelect() bool {
	return s.UnitCount > 1
}

// SelectionMode interprets a selection action's mode byte. The exact
// semantics of modes beyond Replace are not fully characterized.
type SelectionMode int

const (
	SelectionReplace SelectionMode = iota
	SelectionAdd
	SelectionToggle
	SelectionUnknown
)

func selectionModeFromByte(b byte) SelectionMode {
	switch b {
	case 1:
		return SelectionReplace
	case 2:
		return SelectionAdd
	case 3:
		return SelectionToggle
	default:
		return SelectionUnknown
	}
}
