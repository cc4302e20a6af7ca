package w3g

// GameRecordHeader is the fixed-layout header that opens the decompressed
// game-record stream, carrying the host player's identity and the
// encoded game settings blob.
//
// Wire format: magic u32 LE (0x00000110), unknown_1 (1 byte), host_slot
// (1 byte), host_name (NUL-terminated), host_flags (1 byte immediately
// after the host_name NUL), additional_data (NUL-terminated), then the
// encoded-settings blob running up to the first plausible player-slot
// marker.
type GameRecordHeader struct {
	Unknown1         byte
	HostSlot         byte
	HostName         string
	HostFlags        byte
	AdditionalData   string
	EncodedSettings  []byte
	ByteLength       int
}

const gameRecordMagicOffset = 0

// parseGameRecordHeader parses the fixed game-record header at offset 0
// of the decompressed game-record stream.
func parseGameRecordHeader(data []byte) (*GameRecordHeader, error) {
	magic, err := readU32LE(data, gameRecordMagicOffset)
	if err != nil {
		return nil, err
	}
	if magic != GameRecordMagic {
		return nil, newInvalidHeaderError("invalid game record magic", gameRecordMagicOffset)
	}

	if len(data) < 6 {
		return nil, newUnexpectedEOFError(6, len(data))
	}
	unknown1 := data[4]
	hostSlot := data[5]

	hostName, err := readString(data, 6, 256)
	if err != nil {
		return nil, err
	}
	hostFlagsOffset := 6 + len(hostName) + 1
	if hostFlagsOffset >= len(data) {
		return nil, newUnexpectedEOFError(hostFlagsOffset+1, len(data))
	}
	hostFlags := data[hostFlagsOffset]

	additionalDataOffset := hostFlagsOffset + 1
	additionalData, err := readString(data, additionalDataOffset, 256)
	if err != nil {
		return nil, err
	}

	settingsStart := additionalDataOffset + len(additionalData) + 1
	settingsEnd := findSettingsBoundary(data, settingsStart)

	return &GameRecordHeader{
		Unknown1:        unknown1,
		HostSlot:        hostSlot,
		HostName:        hostName,
		HostFlags:       hostFlags,
		AdditionalData:  additionalData,
		EncodedSettings: append([]byte(nil), data[settingsStart:settingsEnd]...),
		ByteLength:      settingsEnd,
	}, nil
}

// findSettingsBoundary scans forward from start for the first byte that
// looks like the opening of a player-slot record (0x16 or 0x19 followed
// by a plausible slot ID and player name). It deliberately does not treat
// 0x1F/0x20/0x22 as boundaries, since those bytes occur inside the
// encoded settings blob itself.
func findSettingsBoundary(data []byte, start int) int {
	end := len(data) - 2
	for i := start; i < end; i++ {
		if data[i] != PlayerSlotMarker && data[i] != SlotRecordMarker {
			continue
		}
		slotID := data[i+1]
		if slotID < 1 || slotID > 24 {
			continue
		}
		if isValidNameStart(data, i+2) {
			return i
		}
	}
	return len(data)
}

// isValidNameStart reports whether pos looks like the start of a player
// name: printable ASCII or a well-formed UTF-8 lead byte, followed by a
// NUL terminator within 256 bytes.
func isValidNameStart(data []byte, pos int) bool {
	if pos >= len(data) {
		return false
	}
	b := data[pos]
	switch {
	case b >= 0x20 && b <= 0x7E:
		return hasNullTerminator(data, pos, 256)
	case b >= 0xC2 && b <= 0xF4:
		var continuationBytes int
		switch {
		case b <= 0xDF:
			continuationBytes = 1
		case b <= 0xEF:
			continuationBytes = 2
		default:
			continuationBytes = 3
		}
		if pos+continuationBytes >= len(data) {
			return false
		}
		for j := 1; j <= continuationBytes; j++ {
			c := data[pos+j]
			if c < 0x80 || c > 0xBF {
				return false
			}
		}
		return hasNullTerminator(data, pos, 256)
	default:
		return false
	}
}

// hasNullTerminator reports whether any byte in data[pos:pos+maxLen] is
// 0x00.
func hasNullTerminator(data []byte, pos, maxLen int) bool {
	end := pos + maxLen
	if end > len(data) {
		end = len(data)
	}
	for i := pos; i < end; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
