package w3g

import (
	"fmt"
	"time"
)

// TimeFrame is a contiguous block of per-player actions that all occurred
// within the same game tick.
//
// Wire format: marker (0x1E or 0x1F), delta_ms (u16 LE), length_hint
// (u16 LE), then action data. The length hint is recorded but not used:
// the action data runs up to the next TimeFrame, checksum, chat or leave
// marker byte (see findActionBoundary).
type TimeFrame struct {
	DeltaMs        uint16
	LengthHint     uint16
	ActionData     []byte
	AccumulatedMs  uint64
}

const (
	timeFrameMinDelta  = 5000
	timeFrameMinHint   = 8000
	timeFrameScanLimit = 10000
	actionBoundaryScan = 1000
)

// isValidTimeFrameAt reports whether a TimeFrame marker at offset looks
// structurally plausible: a recognized marker byte followed by a
// delta_ms under 5000 and a length_hint under 8000. This heuristic is
// load-bearing: it is the only signal the iterator has for distinguishing
// a genuine TimeFrame boundary from an opcode byte that happens to
// collide with 0x1E/0x1F inside unrelated data, and it is reused verbatim
// by the player-roster's extended-metadata skip.
func isValidTimeFrameAt(data []byte, offset int) bool {
	if offset < 0 || offset+5 > len(data) {
		return false
	}
	if data[offset] != TimeFrameMarker1E && data[offset] != TimeFrameMarker1F {
		return false
	}
	deltaMs := uint16(data[offset+1]) | uint16(data[offset+2])<<8
	lengthHint := uint16(data[offset+3]) | uint16(data[offset+4])<<8
	return deltaMs < timeFrameMinDelta && lengthHint < timeFrameMinHint
}

// ChecksumRecord is a periodic replay-integrity checksum (0x22).
type ChecksumRecord struct {
	ChecksumType byte
	Checksum     uint32
}

const checksumRecordSize = 6

func parseChecksumRecord(data []byte) (*ChecksumRecord, error) {
	if len(data) < checksumRecordSize || data[0] != ChecksumMarker {
		return nil, newInvalidHeaderError("invalid checksum record marker", 0)
	}
	return &ChecksumRecord{
		ChecksumType: data[1],
		Checksum:     leUint32(data[2:6]),
	}, nil
}

// ChatMessage is an in-game chat or system message (0x20).
//
// Wire format: flags (1 byte), message_id (u16 LE at offset 2), a fixed
// 5-byte padding block, then a NUL-terminated UTF-8 message.
type ChatMessage struct {
	Flags     byte
	MessageID uint16
	Message   string
}

const chatMessageStart = 9

func parseChatMessage(data []byte) (*ChatMessage, int, error) {
	if len(data) < 5 || data[0] != ChatMarker {
		return nil, 0, newInvalidHeaderError("invalid chat message marker", 0)
	}
	messageID := uint16(data[2]) | uint16(data[3])<<8

	msgStart := chatMessageStart
	if msgStart > len(data) {
		msgStart = len(data)
	}

	nulAt := -1
	for i := msgStart; i < len(data); i++ {
		if data[i] == 0 {
			nulAt = i
			break
		}
	}

	var message string
	var byteLength int
	if nulAt >= 0 {
		message = string(data[msgStart:nulAt])
		byteLength = nulAt + 1
	} else {
		message = string(data[msgStart:])
		byteLength = len(data)
	}

	return &ChatMessage{Flags: data[1], MessageID: messageID, Message: message}, byteLength, nil
}

// LeaveRecord records a player disconnecting or resigning (0x17).
type LeaveRecord struct {
	Reason   uint32
	PlayerID byte
	Result   uint32
	Unknown  uint32
}

const leaveRecordSize = 14

func parseLeaveRecord(data []byte) (*LeaveRecord, error) {
	if len(data) < leaveRecordSize || data[0] != LeaveMarker {
		return nil, newInvalidHeaderError("invalid leave record marker", 0)
	}
	return &LeaveRecord{
		Reason:   leUint32(data[1:5]),
		PlayerID: data[5],
		Result:   leUint32(data[6:10]),
		Unknown:  leUint32(data[10:14]),
	}, nil
}

// findTimeFrameStart scans forward from offset for the first plausible
// TimeFrame marker, without validating the delta/length heuristic. It is
// a coarser, unvalidated counterpart to the iterator's own resync logic.
func findTimeFrameStart(data []byte, offset int) (int, bool) {
	for i := offset; i < len(data); i++ {
		if data[i] == TimeFrameMarker1E || data[i] == TimeFrameMarker1F {
			return i, true
		}
	}
	return 0, false
}

// TimeFrameIterator lazily walks a game-record's TimeFrame sequence,
// skipping interleaved checksum/chat/leave/padding records and resyncing
// past unrecognized bytes.
type TimeFrameIterator struct {
	data          []byte
	offset        int
	accumulatedMs uint64
	finished      bool
	chatMessages  []*ChatMessage
	leaveRecords  []*LeaveRecord
}

// newTimeFrameIterator creates an iterator over data starting at offset.
func newTimeFrameIterator(data []byte, offset int) *TimeFrameIterator {
	return &TimeFrameIterator{data: data, offset: offset}
}

// ChatMessages returns the chat messages observed while skipping
// interleaved records so far. Safe to call incrementally or after
// exhausting the iterator.
func (it *TimeFrameIterator) ChatMessages() []*ChatMessage { return it.chatMessages }

// LeaveRecords returns the leave/disconnect records observed while
// skipping interleaved records so far.
func (it *TimeFrameIterator) LeaveRecords() []*LeaveRecord { return it.leaveRecords }

// Next returns the next TimeFrame, or (nil, false, nil) when the stream
// is exhausted. A non-nil error indicates a structural failure distinct
// from ordinary exhaustion.
func (it *TimeFrameIterator) Next() (*TimeFrame, bool, error) {
	if it.finished {
		return nil, false, nil
	}

	if !it.skipNonTimeFrameRecords() {
		it.finished = true
		return nil, false, nil
	}

	tf, consumed, err := it.parseTimeFrame()
	if err != nil {
		it.finished = true
		return nil, false, err
	}
	it.offset += consumed
	return tf, true, nil
}

// skipNonTimeFrameRecords advances past checksum, chat, leave and padding
// records, and resyncs past unrecognized bytes, stopping once a valid
// TimeFrame marker is at it.offset. Returns false if the end of the
// stream was reached without finding one.
func (it *TimeFrameIterator) skipNonTimeFrameRecords() bool {
	scanned := 0
	for it.offset < len(it.data) && scanned < timeFrameScanLimit {
		if isValidTimeFrameAt(it.data, it.offset) {
			return true
		}

		switch it.data[it.offset] {
		case ChecksumMarker:
			if it.offset+checksumRecordSize > len(it.data) {
				return false
			}
			it.offset += checksumRecordSize
		case ChatMarker:
			if msg, consumed, err := parseChatMessage(it.data[it.offset:]); err == nil {
				it.chatMessages = append(it.chatMessages, msg)
				it.offset += consumed
			} else {
				it.offset++
			}
		case LeaveMarker:
			if it.offset+leaveRecordSize > len(it.data) {
				return false
			}
			if leave, err := parseLeaveRecord(it.data[it.offset:]); err == nil {
				it.leaveRecords = append(it.leaveRecords, leave)
			}
			it.offset += leaveRecordSize
		case 0x00:
			it.offset++
		case TimeFrameMarker1E, TimeFrameMarker1F:
			// Marker byte present but failed the validity heuristic;
			// treat as ordinary data and advance one byte.
			it.offset++
		default:
			next, ok := it.findNextTimeFrame()
			if !ok {
				return false
			}
			it.offset = next
			return true
		}
		scanned++
	}
	return isValidTimeFrameAt(it.data, it.offset)
}

// findNextTimeFrame performs a bounded forward scan (at most
// actionBoundaryScan bytes) for the next valid TimeFrame marker.
func (it *TimeFrameIterator) findNextTimeFrame() (int, bool) {
	end := it.offset + actionBoundaryScan
	if end > len(it.data) {
		end = len(it.data)
	}
	for i := it.offset + 1; i < end; i++ {
		if isValidTimeFrameAt(it.data, i) {
			return i, true
		}
	}
	return 0, false
}

// parseTimeFrame parses the TimeFrame at it.offset (already validated)
// and returns it along with the number of bytes it consumed, including
// its 5-byte marker/delta/hint header.
func (it *TimeFrameIterator) parseTimeFrame() (*TimeFrame, int, error) {
	data := it.data[it.offset:]
	if len(data) < 5 {
		return nil, 0, newUnexpectedEOFError(5, len(data))
	}

	deltaMs := uint16(data[1]) | uint16(data[2])<<8
	lengthHint := uint16(data[3]) | uint16(data[4])<<8

	actionStart := 5
	actionEnd := findActionBoundary(data, actionStart)

	it.accumulatedMs += uint64(deltaMs)

	return &TimeFrame{
		DeltaMs:       deltaMs,
		LengthHint:    lengthHint,
		ActionData:    append([]byte(nil), data[actionStart:actionEnd]...),
		AccumulatedMs: it.accumulatedMs,
	}, actionEnd, nil
}

// findActionBoundary scans forward from start for the next occurrence of
// a TimeFrame, checksum, chat or leave marker byte, treating it as the
// end of the current frame's action payload.
func findActionBoundary(data []byte, start int) int {
	for i := start; i < len(data); i++ {
		switch data[i] {
		case TimeFrameMarker1E, TimeFrameMarker1F, ChecksumMarker, ChatMarker, LeaveMarker:
			return i
		}
	}
	return len(data)
}

// TimeFrameStats aggregates summary statistics across a replay's
// TimeFrame sequence.
type TimeFrameStats struct {
	FrameCount       int
	TotalTimeMs      uint64
	TotalActionBytes int
	EmptyFrameCount  int
}

// AverageTimeDeltaMs returns the mean inter-frame delta in milliseconds.
func (s *TimeFrameStats) AverageTimeDeltaMs() float64 {
	if s.FrameCount == 0 {
		return 0
	}
	return float64(s.TotalTimeMs) / float64(s.FrameCount)
}

// DurationString formats the total time as "M:SS".
func (s *TimeFrameStats) DurationString() string {
	d := time.Duration(s.TotalTimeMs) * time.Millisecond
	mm := int(d.Minutes())
	ss := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mm, ss)
}
