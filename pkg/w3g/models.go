package w3g

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GameSettings is the decoded 13-byte game-configuration block embedded
// in the encoded settings string.
type GameSettings struct {
	Speed             uint8  `json:"speed"`
	Visibility        uint8  `json:"visibility"`
	Observers         uint8  `json:"observers"`
	TeamsTogether     bool   `json:"teams_together"`
	LockTeams         bool   `json:"lock_teams"`
	FullSharedControl bool   `json:"full_shared_control"`
	RandomHero        bool   `json:"random_hero"`
	RandomRaces       bool   `json:"random_races"`
	Referees          bool   `json:"referees"`
	MapChecksum       []byte `json:"-"`
}

// SpeedName returns a human-readable speed name.
func (s *GameSettings) SpeedName() string {
	names := []string{"Slow", "Normal", "Fast"}
	if int(s.Speed) < len(names) {
		return names[s.Speed]
	}
	return "Unknown"
}

// PlayerInfo is the replay-wide view of a single player, merging roster
// identity with accumulated action statistics.
type PlayerInfo struct {
	SlotID      uint8   `json:"slot_id"`
	Name        string  `json:"name"`
	ActionCount int     `json:"action_count"`
	APM         float64 `json:"apm"`
}

// GameRecord is a complete parsed replay.
type GameRecord struct {
	Envelope *EnvelopeHeader   `json:"-"`
	Header   *GameRecordHeader `json:"-"`

	GameName string        `json:"game_name"`
	MapName  string        `json:"map_name"`
	MapPath  string        `json:"map_path"`
	HostName string        `json:"host_name"`
	Settings *GameSettings `json:"settings"`
	Players  []*PlayerInfo `json:"players"`

	ChatMessages []*ChatMessage `json:"-"`
	Frames       []*TimeFrame   `json:"-"`
	Actions      []*Action      `json:"-"`

	Stats *ActionStatistics `json:"-"`

	RawDecompressed []byte `json:"-"`
}

// GetPlayer returns the player with the given slot ID, if present.
func (r *GameRecord) GetPlayer(slotID uint8) *PlayerInfo {
	for _, p := range r.Players {
		if p.SlotID == slotID {
			return p
		}
	}
	return nil
}

// GetPlayerByName returns the player with the given name
// (case-insensitive), if present.
func (r *GameRecord) GetPlayerByName(name string) *PlayerInfo {
	nameLower := strings.ToLower(name)
	for _, p := range r.Players {
		if strings.ToLower(p.Name) == nameLower {
			return p
		}
	}
	return nil
}

// ToJSON exports the replay to JSON bytes.
func (r *GameRecord) ToJSON(indent bool) ([]byte, error) {
	data := r.toDict()
	if indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

func (r *GameRecord) toDict() map[string]interface{} {
	var headerDict map[string]interface{}
	if r.Envelope != nil {
		headerDict = map[string]interface{}{
			"format":        r.Envelope.Format.String(),
			"build_version": r.Envelope.BuildVersion,
			"version":       r.Envelope.VersionString(),
			"duration_ms":   r.Envelope.DurationMs,
			"duration":      r.Envelope.DurationString(),
		}
	}

	var settingsDict map[string]interface{}
	if r.Settings != nil {
		settingsDict = map[string]interface{}{
			"speed":               r.Settings.Speed,
			"speed_name":          r.Settings.SpeedName(),
			"visibility":          r.Settings.Visibility,
			"observers":           r.Settings.Observers,
			"teams_together":      r.Settings.TeamsTogether,
			"lock_teams":          r.Settings.LockTeams,
			"full_shared_control": r.Settings.FullSharedControl,
			"random_hero":         r.Settings.RandomHero,
			"random_races":        r.Settings.RandomRaces,
			"referees":            r.Settings.Referees,
		}
	}

	players := make([]map[string]interface{}, len(r.Players))
	for i, p := range r.Players {
		players[i] = map[string]interface{}{
			"slot_id":      p.SlotID,
			"name":         p.Name,
			"action_count": p.ActionCount,
			"apm":          fmt.Sprintf("%.1f", p.APM),
		}
	}

	chatMessages := make([]map[string]interface{}, len(r.ChatMessages))
	for i, c := range r.ChatMessages {
		chatMessages[i] = map[string]interface{}{
			"message_id": c.MessageID,
			"flags":      c.Flags,
			"message":    c.Message,
		}
	}

	return map[string]interface{}{
		"header":        headerDict,
		"game_name":     r.GameName,
		"map_name":      r.MapName,
		"map_path":      r.MapPath,
		"host_name":     r.HostName,
		"settings":      settingsDict,
		"players":       players,
		"chat_messages": chatMessages,
		"frame_count":   len(r.Frames),
		"action_count":  len(r.Actions),
	}
}

// formatDuration formats a duration as HH:MM:SS when it spans at least
// an hour, or MM:SS otherwise.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
