package w3g

import (
	"io"
	"os"
)

// Parser is the main replay parser. Strict controls whether structural
// anomalies in the action stream (rather than ordinary unknown opcodes,
// which are always tolerated) abort parsing.
type Parser struct {
	Strict bool
}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{Strict: false}
}

// Parse parses a complete replay file.
func (p *Parser) Parse(filepath string) (*GameRecord, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(raw)
}

// ParseStream parses a replay from an io.Reader.
func (p *Parser) ParseStream(r io.Reader) (*GameRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(raw)
}

// ParseBytes parses a complete replay already held in memory.
func (p *Parser) ParseBytes(raw []byte) (*GameRecord, error) {
	envelope, payload, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	return p.parseGameData(envelope, payload)
}

// ParseHeaderOnly decodes the envelope header. The payload is still
// decompressed, but the game record inside it is not parsed.
func (p *Parser) ParseHeaderOnly(filepath string) (*EnvelopeHeader, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	envelope, _, err := DecodeEnvelope(raw)
	return envelope, err
}

// parseGameData parses a fully decompressed game-record byte stream.
func (p *Parser) parseGameData(envelope *EnvelopeHeader, data []byte) (*GameRecord, error) {
	header, err := parseGameRecordHeader(data)
	if err != nil {
		return nil, err
	}

	decodedSettings, _ := decodeEncodedString(header.EncodedSettings, 0)
	settings, mapPath, mapName := parseEncodedSettings(decodedSettings)

	roster, err := parsePlayerRoster(data, header.ByteLength)
	if err != nil {
		return nil, err
	}

	players := make([]*PlayerInfo, 0, roster.Len())
	for _, rec := range roster.Players {
		players = append(players, &PlayerInfo{
			SlotID: rec.SlotID(),
			Name:   rec.PlayerName(),
		})
	}

	timeFrameStart := header.ByteLength + roster.ByteLength
	it := newTimeFrameIterator(data, timeFrameStart)

	var frames []*TimeFrame
	var actions []*Action
	stats := NewActionStatistics()
	actionCounts := make(map[byte]int)

	for {
		tf, ok, err := it.Next()
		if err != nil {
			if p.Strict {
				return nil, err
			}
			break
		}
		if !ok {
			break
		}
		frames = append(frames, tf)

		actionCtx := ActionContext{TimestampMs: tf.AccumulatedMs, FrameNumber: len(frames) - 1}
		actionIt := newActionIterator(tf.ActionData, actionCtx)
		for {
			action, hasNext, err := actionIt.Next()
			if err != nil {
				if p.Strict {
					return nil, err
				}
				break
			}
			if !hasNext {
				break
			}
			actions = append(actions, action)
			stats.Record(action)
			actionCounts[action.PlayerID]++
		}
	}

	for _, player := range players {
		player.ActionCount = actionCounts[player.SlotID]
	}

	durationMinutes := float64(envelope.DurationMs) / 60000.0
	if durationMinutes > 0 {
		for _, player := range players {
			player.APM = float64(player.ActionCount) / durationMinutes
		}
	}

	return &GameRecord{
		Envelope:        envelope,
		Header:          header,
		GameName:        header.AdditionalData,
		MapName:         mapName,
		MapPath:         mapPath,
		HostName:        header.HostName,
		Settings:        settings,
		Players:         players,
		ChatMessages:    it.ChatMessages(),
		Frames:          frames,
		Actions:         actions,
		Stats:           stats,
		RawDecompressed: data,
	}, nil
}
