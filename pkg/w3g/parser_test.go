package w3g

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildClassicEnvelope assembles a minimal Type A Classic envelope (build
// version below the Type B threshold) wrapping a single zlib-compressed
// block holding payload.
func buildClassicEnvelope(buildVersion, durationMs uint32, payload []byte) []byte {
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	_, _ = w.Write(payload)
	_ = w.Close()

	header := make([]byte, ClassicHeaderSize)
	copy(header, ClassicMagic)
	binary.LittleEndian.PutUint32(header[0x20:], uint32(len(header)+8+compressed.Len()))
	binary.LittleEndian.PutUint32(header[0x24:], 1)
	binary.LittleEndian.PutUint32(header[0x28:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[0x2C:], 1) // one block
	copy(header[0x30:], []byte("PX3W"))
	binary.LittleEndian.PutUint32(header[0x34:], buildVersion)
	binary.LittleEndian.PutUint32(header[0x38:], 0)
	binary.LittleEndian.PutUint32(header[0x3C:], durationMs)

	blockHeader := make([]byte, 8)
	binary.LittleEndian.PutUint16(blockHeader, uint16(compressed.Len()))

	var out []byte
	out = append(out, header...)
	out = append(out, blockHeader...)
	out = append(out, compressed.Bytes()...)
	return out
}

// buildMinimalGameRecord assembles a decompressed game-record stream: the
// fixed header, a one-player roster, and a single TimeFrame carrying one
// player action.
func buildMinimalGameRecord() []byte {
	var data []byte
	data = append(data, 0x10, 0x01, 0x00, 0x00) // magic
	data = append(data, 0x00)                   // unknown1
	data = append(data, 0x00)                   // host slot
	data = append(data, []byte("Host")...)
	data = append(data, 0x00)
	data = append(data, 0x01) // host flags
	data = append(data, []byte("My Game")...)
	data = append(data, 0x00)
	data = append(data, 0xAA, 0xBB, 0xCC) // encoded settings blob (opaque)

	// player roster: one player in slot 1
	data = append(data, PlayerSlotMarker, 0x01)
	data = append(data, []byte("Alice")...)
	data = append(data, 0x00)
	data = append(data, make([]byte, 7)...)

	// one TimeFrame with a single escape-key action for player 1
	data = append(data, TimeFrameMarker1E, 10, 0, 2, 0, 0x01, 0x18)

	return data
}

func TestParser_ParseBytes_EndToEnd(t *testing.T) {
	payload := buildMinimalGameRecord()
	envelopeBytes := buildClassicEnvelope(5000, 90000, payload)

	record, err := NewParser().ParseBytes(envelopeBytes)
	require.NoError(t, err)

	assert.Equal(t, "My Game", record.GameName)
	assert.Equal(t, FormatClassic, record.Envelope.Format)
	assert.Equal(t, uint32(90000), record.Envelope.DurationMs)

	require.Len(t, record.Players, 1)
	assert.Equal(t, "Alice", record.Players[0].Name)

	require.Len(t, record.Frames, 1)
	require.Len(t, record.Actions, 1)
	assert.Equal(t, ActionKindEscapeKey, record.Actions[0].Kind)
	assert.Equal(t, byte(1), record.Actions[0].PlayerID)
	assert.Equal(t, 1, record.Players[0].ActionCount)
}

func TestParser_ParseStream(t *testing.T) {
	payload := buildMinimalGameRecord()
	envelopeBytes := buildClassicEnvelope(5000, 42000, payload)

	record, err := NewParser().ParseStream(bytes.NewReader(envelopeBytes))
	require.NoError(t, err)
	assert.Equal(t, uint32(42000), record.Envelope.DurationMs)
}

func TestParser_ParseBytes_InvalidMagic(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("not a replay"))
	assert.Error(t, err)
}
