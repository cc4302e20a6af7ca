package w3g

import "bytes"

// GrbnMagic identifies the Reforged (patch 1.32+) envelope family.
var GrbnMagic = []byte("GRBN")

// ClassicMagic identifies the Classic (Reign of Chaos / The Frozen Throne)
// envelope family.
var ClassicMagic = []byte("Warcraft III recorded game\x1A\x00")

// ClassicTypeBThreshold is the build-version boundary at which Classic
// envelopes switch from 8-byte to 12-byte block headers. Builds below this
// value use Type A headers; builds at or above it use Type B.
const ClassicTypeBThreshold uint32 = 10000

// ReplayFormat identifies which of the two envelope families a replay file
// uses.
type ReplayFormat int

const (
	FormatClassic ReplayFormat = iota
	FormatReforged
)

func (f ReplayFormat) String() string {
	if f == FormatReforged {
		return "Reforged"
	}
	return "Classic"
}

// HeaderSize returns the fixed envelope header size in bytes for this
// format family.
func (f ReplayFormat) HeaderSize() int {
	if f == FormatReforged {
		return GrbnHeaderSize
	}
	return ClassicHeaderSize
}

// DataOffset returns the byte offset where compressed data begins for this
// format family.
func (f ReplayFormat) DataOffset() int {
	if f == FormatReforged {
		return GrbnDataOffset
	}
	return ClassicDataOffset
}

// ClassicVersion selects which Classic block-header layout applies.
type ClassicVersion int

const (
	ClassicVersionTypeA ClassicVersion = iota
	ClassicVersionTypeB
)

// BlockHeaderSize returns 8 for Type A, 12 for Type B.
func (v ClassicVersion) BlockHeaderSize() int {
	if v == ClassicVersionTypeB {
		return 12
	}
	return 8
}

// ClassicVersionFromBuild classifies a build-version number into the
// Type A / Type B block-header layout.
func ClassicVersionFromBuild(build uint32) ClassicVersion {
	if build < ClassicTypeBThreshold {
		return ClassicVersionTypeA
	}
	return ClassicVersionTypeB
}

// DetectFormat inspects the leading bytes of a replay file and returns
// which envelope family it uses.
func DetectFormat(data []byte) (ReplayFormat, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], GrbnMagic) {
		return FormatReforged, nil
	}
	if len(data) >= len(ClassicMagic) && bytes.Equal(data[:len(ClassicMagic)], ClassicMagic) {
		return FormatClassic, nil
	}

	found := data
	if len(found) > len(ClassicMagic) {
		found = found[:len(ClassicMagic)]
	}
	return FormatClassic, newInvalidMagicError(ClassicMagic, found, 0)
}
