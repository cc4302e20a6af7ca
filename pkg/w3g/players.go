package w3g

// PlayerSlot is a player-roster entry introduced by the 0x16 marker.
type PlayerSlot struct {
	SlotID       byte
	PlayerName   string
	TrailingData []byte
	ByteLength   int
}

// SlotRecord is a player-roster entry introduced by the 0x19 marker.
// Structurally identical to PlayerSlot; kept as a distinct type because
// the two markers are emitted for different roster roles (human slots
// vs. pre-placed/computer slots).
type SlotRecord struct {
	SlotID         byte
	PlayerName     string
	AdditionalData []byte
	ByteLength     int
}

// PlayerRecord unifies PlayerSlot and SlotRecord behind a single view.
type PlayerRecord struct {
	Slot       *PlayerSlot
	Record     *SlotRecord
	ByteLength int
}

// SlotID returns the slot ID carried by whichever variant is set.
func (p PlayerRecord) SlotID() byte {
	if p.Slot != nil {
		return p.Slot.SlotID
	}
	return p.Record.SlotID
}

// PlayerName returns the player name carried by whichever variant is set.
func (p PlayerRecord) PlayerName() string {
	if p.Slot != nil {
		return p.Slot.PlayerName
	}
	return p.Record.PlayerName
}

const maxTrailingScan = 20

// parsePlayerSlot parses a PlayerSlot starting at its 0x16 marker.
func parsePlayerSlot(data []byte) (*PlayerSlot, error) {
	if len(data) < 2 || data[0] != PlayerSlotMarker {
		return nil, newInvalidHeaderError("invalid player slot marker", 0)
	}
	slotID := data[1]
	name, err := readString(data, 2, 256)
	if err != nil {
		return nil, err
	}
	nameEnd := 2 + len(name) + 1
	trailingEnd := findTrailingDataEnd(data, nameEnd)

	return &PlayerSlot{
		SlotID:       slotID,
		PlayerName:   name,
		TrailingData: append([]byte(nil), data[nameEnd:trailingEnd]...),
		ByteLength:   trailingEnd,
	}, nil
}

// parseSlotRecord parses a SlotRecord starting at its 0x19 marker.
func parseSlotRecord(data []byte) (*SlotRecord, error) {
	if len(data) < 2 || data[0] != SlotRecordMarker {
		return nil, newInvalidHeaderError("invalid slot record marker", 0)
	}
	slotID := data[1]
	name, err := readString(data, 2, 256)
	if err != nil {
		return nil, err
	}
	nameEnd := 2 + len(name) + 1
	trailingEnd := findTrailingDataEnd(data, nameEnd)

	return &SlotRecord{
		SlotID:         slotID,
		PlayerName:     name,
		AdditionalData: append([]byte(nil), data[nameEnd:trailingEnd]...),
		ByteLength:     trailingEnd,
	}, nil
}

// findTrailingDataEnd scans up to maxTrailingScan bytes from start for
// the next record marker, falling back to start+7 if none is found
// within the scan window.
func findTrailingDataEnd(data []byte, start int) int {
	end := start + maxTrailingScan
	if end > len(data) {
		end = len(data)
	}
	for i := start; i < end; i++ {
		switch data[i] {
		case PlayerSlotMarker, SlotRecordMarker, TimeFrameMarker1E, TimeFrameMarker1F,
			ChatMarker, ChecksumMarker, LeaveMarker, ExtendedMetadataMarker:
			return i
		}
	}
	fallback := start + 7
	if fallback > len(data) {
		fallback = len(data)
	}
	return fallback
}

// PlayerRoster is the sequence of player-slot/slot-record entries between
// the game-record header's encoded settings and the first TimeFrame.
type PlayerRoster struct {
	Players    []PlayerRecord
	ByteLength int
}

// parsePlayerRoster parses the player roster starting at offset, stopping
// at the first byte that is neither a roster marker nor padding, then
// skipping any trailing extended-metadata region (build 10100+).
func parsePlayerRoster(data []byte, offset int) (*PlayerRoster, error) {
	var players []PlayerRecord
	pos := offset

loop:
	for pos < len(data) {
		switch data[pos] {
		case PlayerSlotMarker:
			slot, err := parsePlayerSlot(data[pos:])
			if err != nil {
				return nil, err
			}
			players = append(players, PlayerRecord{Slot: slot, ByteLength: slot.ByteLength})
			pos += slot.ByteLength
		case SlotRecordMarker:
			rec, err := parseSlotRecord(data[pos:])
			if err != nil {
				return nil, err
			}
			players = append(players, PlayerRecord{Record: rec, ByteLength: rec.ByteLength})
			pos += rec.ByteLength
		case 0x00:
			pos++
		default:
			break loop
		}
	}

	pos = findExtendedMetadataEnd(data, pos)

	return &PlayerRoster{Players: players, ByteLength: pos - offset}, nil
}

// Len returns the number of player records in the roster.
func (r *PlayerRoster) Len() int { return len(r.Players) }

// IsEmpty reports whether the roster has no player records.
func (r *PlayerRoster) IsEmpty() bool { return len(r.Players) == 0 }

// PlayerNames returns the roster's player names in order.
func (r *PlayerRoster) PlayerNames() []string {
	names := make([]string, len(r.Players))
	for i, p := range r.Players {
		names[i] = p.PlayerName()
	}
	return names
}

// GetBySlot returns the player record for the given slot ID, if present.
func (r *PlayerRoster) GetBySlot(slotID byte) (PlayerRecord, bool) {
	for _, p := range r.Players {
		if p.SlotID() == slotID {
			return p, true
		}
	}
	return PlayerRecord{}, false
}

// findExtendedMetadataEnd skips past an optional 0x38-prefixed extended
// metadata region (introduced in build 10100+) by scanning forward for
// the first offset that passes the TimeFrame-validity heuristic (see
// isValidTimeFrameAt), reusing that same check since both components
// resync against the same marker pattern.
func findExtendedMetadataEnd(data []byte, start int) int {
	if isValidTimeFrameAt(data, start) {
		return start
	}
	for i := start; i < len(data); i++ {
		if isValidTimeFrameAt(data, i) {
			return i
		}
	}
	return len(data)
}
