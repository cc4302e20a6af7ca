package w3g

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zlib"
)

// ClassicHeader is the 68-byte Classic (Reign of Chaos / The Frozen Throne)
// envelope header.
type ClassicHeader struct {
	FileSize         uint32
	HeaderVersion    uint32
	DecompressedSize uint32
	BlockCount       uint32
	SubHeaderMagic   []byte
	BuildVersion     uint32
	Flags            uint32
	DurationMs       uint32
	Checksum         []byte
}

func (h *ClassicHeader) versionType() ClassicVersion {
	return ClassicVersionFromBuild(h.BuildVersion)
}

// parseClassicHeader parses a Classic envelope header at the given offset.
// offset is usually 0, but the Reforged decoder reuses this to parse an
// embedded Classic envelope found partway through a file.
func parseClassicHeader(data []byte, offset int) (*ClassicHeader, error) {
	if offset < 0 || offset+ClassicHeaderSize > len(data) {
		return nil, newUnexpectedEOFError(offset+ClassicHeaderSize, len(data))
	}

	magic, err := readBytes(data, offset, len(ClassicMagic))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, ClassicMagic) {
		return nil, newInvalidMagicError(ClassicMagic, magic, offset)
	}

	fileSize, err := readU32LE(data, offset+0x20)
	if err != nil {
		return nil, err
	}
	headerVersion, err := readU32LE(data, offset+0x24)
	if err != nil {
		return nil, err
	}
	decompressedSize, err := readU32LE(data, offset+0x28)
	if err != nil {
		return nil, err
	}
	blockCount, err := readU32LE(data, offset+0x2C)
	if err != nil {
		return nil, err
	}
	subHeaderMagic, err := readBytes(data, offset+0x30, 4)
	if err != nil {
		return nil, err
	}
	buildVersion, err := readU32LE(data, offset+0x34)
	if err != nil {
		return nil, err
	}
	flags, err := readU32LE(data, offset+0x38)
	if err != nil {
		return nil, err
	}
	durationMs, err := readU32LE(data, offset+0x3C)
	if err != nil {
		return nil, err
	}
	checksum, err := readBytes(data, offset+0x40, 4)
	if err != nil {
		return nil, err
	}

	return &ClassicHeader{
		FileSize:         fileSize,
		HeaderVersion:    headerVersion,
		DecompressedSize: decompressedSize,
		BlockCount:       blockCount,
		SubHeaderMagic:   append([]byte(nil), subHeaderMagic...),
		BuildVersion:     buildVersion,
		Flags:            flags,
		DurationMs:       durationMs,
		Checksum:         append([]byte(nil), checksum...),
	}, nil
}

// GrbnHeader is the 128-byte Reforged envelope header.
type GrbnHeader struct {
	Version          uint32
	Unknown1         uint32
	Unknown2         uint32
	Unknown3         uint32
	Unknown4         uint32
	DecompressedSize uint32
}

func parseGrbnHeader(data []byte) (*GrbnHeader, error) {
	if len(data) < GrbnHeaderSize {
		return nil, newUnexpectedEOFError(GrbnHeaderSize, len(data))
	}
	magic, err := readBytes(data, 0x00, 4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, GrbnMagic) {
		return nil, newInvalidMagicError(GrbnMagic, magic, 0)
	}

	version, err := readU32LE(data, 0x04)
	if err != nil {
		return nil, err
	}
	unknown1, err := readU32LE(data, 0x08)
	if err != nil {
		return nil, err
	}
	unknown2, err := readU32LE(data, 0x0C)
	if err != nil {
		return nil, err
	}
	unknown3, err := readU32LE(data, 0x18)
	if err != nil {
		return nil, err
	}
	unknown4, err := readU32LE(data, 0x1C)
	if err != nil {
		return nil, err
	}
	decompressedSize, err := readU32LE(data, 0x24)
	if err != nil {
		return nil, err
	}

	return &GrbnHeader{
		Version:          version,
		Unknown1:         unknown1,
		Unknown2:         unknown2,
		Unknown3:         unknown3,
		Unknown4:         unknown4,
		DecompressedSize: decompressedSize,
	}, nil
}

// EnvelopeHeader is the format-agnostic view of a replay's envelope
// header, exposed to callers regardless of which family the file uses.
type EnvelopeHeader struct {
	Format       ReplayFormat
	BuildVersion uint32
	DurationMs   uint32
	Classic      *ClassicHeader
	Grbn         *GrbnHeader
}

// Duration returns the game duration as a time.Duration.
func (h *EnvelopeHeader) Duration() time.Duration {
	return time.Duration(h.DurationMs) * time.Millisecond
}

// DurationString formats the game duration as "HH:MM:SS".
func (h *EnvelopeHeader) DurationString() string {
	d := h.Duration()
	hh := int(d.Hours())
	mm := int(d.Minutes()) % 60
	ss := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hh, mm, ss)
}

// VersionString formats the build version the way players recognize it:
// Reforged builds as "2.NN", TFT 1.29+ as "1.NN", earlier Classic builds
// as "1.<build>".
func (h *EnvelopeHeader) VersionString() string {
	b := h.BuildVersion
	switch {
	case b >= 10000:
		return fmt.Sprintf("2.%02d", (b-10000)/100)
	case b >= 6059:
		return fmt.Sprintf("1.%d", 29+(b-6059)/100)
	default:
		return fmt.Sprintf("1.%d", b)
	}
}

// DecodeEnvelope detects the envelope family, parses its header, and fully
// decompresses the game-record byte stream it contains.
func DecodeEnvelope(data []byte) (*EnvelopeHeader, []byte, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, nil, err
	}

	if format == FormatReforged {
		return decodeGrbnEnvelope(data)
	}
	return decodeClassicEnvelope(data)
}

func decodeClassicEnvelope(data []byte) (*EnvelopeHeader, []byte, error) {
	ch, err := parseClassicHeader(data, 0)
	if err != nil {
		return nil, nil, err
	}

	payload, err := decompressClassicBlocks(data, ClassicDataOffset, ch.BlockCount, ch.versionType())
	if err != nil {
		return nil, nil, err
	}

	return &EnvelopeHeader{
		Format:       FormatClassic,
		BuildVersion: ch.BuildVersion,
		DurationMs:   ch.DurationMs,
		Classic:      ch,
	}, payload, nil
}

func decodeGrbnEnvelope(data []byte) (*EnvelopeHeader, []byte, error) {
	gh, err := parseGrbnHeader(data)
	if err != nil {
		return nil, nil, err
	}

	metadata, err := inflateZlib(data[GrbnDataOffset:], 0)
	if err != nil {
		return nil, nil, err
	}

	classicOffset, ok := findClassicHeader(data)
	if !ok {
		return nil, nil, newDecompressionError(
			"no embedded Classic envelope found after GRBN metadata", GrbnDataOffset, nil, nil,
		)
	}

	ch, err := parseClassicHeader(data, classicOffset)
	if err != nil {
		return nil, nil, err
	}

	embedded, err := decompressClassicBlocks(data, classicOffset+ClassicHeaderSize, ch.BlockCount, ch.versionType())
	if err != nil {
		return nil, nil, err
	}

	payload := make([]byte, 0, len(metadata)+len(embedded))
	payload = append(payload, metadata...)
	payload = append(payload, embedded...)

	return &EnvelopeHeader{
		Format:       FormatReforged,
		BuildVersion: ch.BuildVersion,
		DurationMs:   ch.DurationMs,
		Classic:      ch,
		Grbn:         gh,
	}, payload, nil
}

// findClassicHeader scans for an embedded Classic envelope magic string,
// starting 100 bytes past where GRBN metadata begins (the metadata zlib
// stream itself is shorter than that in every observed file, so the scan
// window never collides with genuine metadata bytes).
func findClassicHeader(data []byte) (int, bool) {
	start := GrbnDataOffset + 100
	end := len(data) - len(ClassicMagic)
	for i := start; i <= end; i++ {
		if bytes.Equal(data[i:i+len(ClassicMagic)], ClassicMagic) {
			return i, true
		}
	}
	return 0, false
}

// decompressClassicBlocks walks the block-header/compressed-data sequence
// starting at startOffset, inflating each block and concatenating the
// results.
func decompressClassicBlocks(data []byte, startOffset int, blockCount uint32, version ClassicVersion) ([]byte, error) {
	var out bytes.Buffer
	offset := startOffset
	headerSize := version.BlockHeaderSize()

	for i := uint32(0); i < blockCount; i++ {
		idx := int(i)
		if offset+headerSize > len(data) {
			return nil, newDecompressionError(
				fmt.Sprintf("block %d header truncated", i), offset, &idx, nil,
			)
		}

		compressedSize, err := readU16LE(data, offset)
		if err != nil {
			return nil, newDecompressionError(fmt.Sprintf("block %d header truncated", i), offset, &idx, err)
		}

		compressedStart := offset + headerSize
		compressedEnd := compressedStart + int(compressedSize)
		if compressedEnd > len(data) {
			return nil, newDecompressionError(
				fmt.Sprintf("block %d needs %d bytes, only %d available", i, compressedEnd-compressedStart, len(data)-compressedStart),
				compressedStart, &idx, nil,
			)
		}

		decompressed, err := inflateZlib(data[compressedStart:compressedEnd], offset)
		if err != nil {
			return nil, newDecompressionError(fmt.Sprintf("block %d decompression failed: %v", i, err), compressedStart, &idx, err)
		}
		out.Write(decompressed)

		offset = compressedEnd
	}

	return out.Bytes(), nil
}

// inflateZlib decompresses a single zlib stream to completion. The W3G
// envelope format does not always terminate its zlib trailer cleanly at
// the exact byte the caller expects, so once some output has been
// produced, a read error ends decompression and the partial output is
// returned; an error before any output is returned as failure.
func inflateZlib(data []byte, offsetForError int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	buf := make([]byte, 8192)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			if out.Len() > 0 {
				break
			}
			return nil, rerr
		}
	}
	return out.Bytes(), nil
}
