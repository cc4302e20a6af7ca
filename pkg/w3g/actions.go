package w3g

import (
	"fmt"
	"math"
)

// ActionKind distinguishes the structured payload carried by an Action.
type ActionKind int

const (
	ActionKindSelection ActionKind = iota
	ActionKindAbility
	ActionKindAbilityWithSelection
	ActionKindInstantAbility
	ActionKindMovement
	ActionKindHotkey
	ActionKindEscapeKey
	ActionKindItem
	ActionKindBasicCommand
	ActionKindBuildTrain
	ActionKindSelectSubgroup
	ActionKindRemoveFromQueue
	ActionKindAllyOptions
	ActionKindTransferResources
	ActionKindMinimapPing
	ActionKindBattleNetSync
	ActionKindUnknown
)

func (k ActionKind) String() string {
	switch k {
	case ActionKindSelection:
		return "Selection"
	case ActionKindAbility:
		return "Ability"
	case ActionKindAbilityWithSelection:
		return "AbilityWithSelection"
	case ActionKindInstantAbility:
		return "InstantAbility"
	case ActionKindMovement:
		return "Movement"
	case ActionKindHotkey:
		return "Hotkey"
	case ActionKindEscapeKey:
		return "EscapeKey"
	case ActionKindItem:
		return "Item"
	case ActionKindBasicCommand:
		return "BasicCommand"
	case ActionKindBuildTrain:
		return "BuildTrain"
	case ActionKindSelectSubgroup:
		return "SelectSubgroup"
	case ActionKindRemoveFromQueue:
		return "RemoveFromQueue"
	case ActionKindAllyOptions:
		return "AllyOptions"
	case ActionKindTransferResources:
		return "TransferResources"
	case ActionKindMinimapPing:
		return "MinimapPing"
	case ActionKindBattleNetSync:
		return "BattleNetSync"
	default:
		return "Unknown"
	}
}

// Action is a single dispatched player command within a TimeFrame.
type Action struct {
	PlayerID    byte
	Kind        ActionKind
	TimestampMs uint64

	Selection            *SelectionAction
	Ability              *AbilityAction
	AbilityWithSelection *AbilityWithSelectionAction
	InstantAbility       *InstantAbilityAction
	Movement             *MovementAction
	Hotkey               *HotkeyAction

	ItemID       uint32
	CommandID    uint32
	UnitCode     [4]byte
	Slot         byte
	ObjectID1    uint32
	ObjectID2    uint32
	Flags        uint32
	Gold         uint32
	Lumber       uint32
	PingX        float32
	PingY        float32
	SyncData     []byte

	UnknownTypeID    byte
	UnknownSubcmd    *byte
	UnknownPayload   []byte
}

func (a *Action) String() string {
	return fmt.Sprintf("player %d: %s", a.PlayerID, a.Kind)
}

// IsUnknown reports whether this action could not be classified into a
// known kind.
func (a *Action) IsUnknown() bool { return a.Kind == ActionKindUnknown }

// ActionContext carries iteration metadata threaded through action
// parsing: the owning TimeFrame's accumulated timestamp and its index in
// the frame sequence.
type ActionContext struct {
	TimestampMs uint64
	FrameNumber int
}

// ActionIterator lazily dispatches the per-player action stream inside a
// single TimeFrame's action data.
type ActionIterator struct {
	data     []byte
	offset   int
	context  ActionContext
	finished bool
}

// newActionIterator creates an iterator over a TimeFrame's action bytes.
func newActionIterator(data []byte, ctx ActionContext) *ActionIterator {
	return &ActionIterator{data: data, context: ctx}
}

// Next returns the next Action, or (nil, false, nil) once the stream is
// exhausted.
func (it *ActionIterator) Next() (*Action, bool, error) {
	if it.finished || it.offset >= len(it.data) {
		return nil, false, nil
	}

	playerID := it.data[it.offset]
	if playerID < 1 || playerID > 15 {
		it.finished = true
		return nil, false, newInvalidHeaderError(fmt.Sprintf("invalid player id 0x%02X", playerID), it.offset)
	}

	body := it.data[it.offset+1:]
	if len(body) == 0 {
		it.finished = true
		return nil, false, nil
	}

	actionType := body[0]
	var subcommand *byte
	if len(body) > 1 {
		sub := body[1]
		subcommand = &sub
	}

	action, consumed, err := dispatchActionType(actionType, subcommand, body)
	if err != nil {
		it.finished = true
		return nil, false, err
	}
	action.PlayerID = playerID
	action.TimestampMs = it.context.TimestampMs

	it.offset += 1 + consumed
	return action, true, nil
}

// dispatchActionType classifies and parses a single action body (the
// bytes starting at the action-type byte, player ID already consumed).
// Returns the parsed Action and the number of bytes consumed from body
// (not including the player-ID byte).
//
//nolint:gocyclo // the dispatch table is inherently a flat, wide match.
func dispatchActionType(actionType byte, subcommand *byte, data []byte) (*Action, int, error) {
	switch {
	case actionType == 0x00 && subcommand != nil && isMovementSubcommand(*subcommand):
		m, consumed, err := parseMovementActionWithSubcommand(data, *subcommand)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindMovement, Movement: m}, consumed, nil

	case actionType == 0x0F && subcommand != nil && *subcommand == 0x00:
		ia, consumed, err := parseInstantAbilityAction(data)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindInstantAbility, InstantAbility: ia}, consumed, nil

	case actionType == 0x16:
		s, consumed, err := parseSelectionAction(data)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindSelection, Selection: s}, consumed, nil

	case actionType == 0x17:
		h, consumed, err := parseHotkeyAction(data)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindHotkey, Hotkey: h}, consumed, nil

	case actionType == 0x1A && subcommand != nil && *subcommand == 0x00:
		aws, consumed, err := parseAbilityWithSelectionAction(data)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindAbilityWithSelection, AbilityWithSelection: aws}, consumed, nil

	case actionType == 0x1A && subcommand != nil && *subcommand == 0x19:
		a, consumed, err := parseAbilityAction(data)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindAbility, Ability: a}, consumed, nil

	case actionType == 0x18:
		return &Action{Kind: ActionKindEscapeKey}, 1, nil

	case actionType == 0x1B:
		consumed := min(14, len(data))
		var itemID uint32
		if len(data) >= 6 {
			itemID = leUint32(data[2:6])
		}
		return &Action{Kind: ActionKindItem, ItemID: itemID}, consumed, nil

	case actionType == 0x1C:
		consumed := min(14, len(data))
		var commandID uint32
		if len(data) >= 6 {
			commandID = leUint32(data[2:6])
		}
		return &Action{Kind: ActionKindBasicCommand, CommandID: commandID}, consumed, nil

	case actionType == 0x1D:
		consumed := min(14, len(data))
		var code [4]byte
		if len(data) >= 6 {
			copy(code[:], data[2:6])
		}
		return &Action{Kind: ActionKindBuildTrain, UnitCode: code}, consumed, nil

	case actionType == 0x19:
		consumed := min(13, len(data))
		if len(data) >= 10 {
			return &Action{
				Kind:      ActionKindSelectSubgroup,
				Slot:      data[1],
				ObjectID1: leUint32(data[2:6]),
				ObjectID2: leUint32(data[6:10]),
			}, consumed, nil
		}
		return parseUnknownAction(actionType, subcommand, data)

	case actionType == 0x1E:
		if len(data) < 6 {
			return nil, 0, newUnexpectedEOFError(6, len(data))
		}
		return &Action{
			Kind:      ActionKindRemoveFromQueue,
			Slot:      data[1],
			ObjectID1: leUint32(data[2:6]),
		}, 6, nil

	case actionType == 0x50:
		if len(data) < 6 {
			return nil, 0, newUnexpectedEOFError(6, len(data))
		}
		return &Action{
			Kind:  ActionKindAllyOptions,
			Slot:  data[1],
			Flags: leUint32(data[2:6]),
		}, 6, nil

	case actionType == 0x51:
		if len(data) < 10 {
			return nil, 0, newUnexpectedEOFError(10, len(data))
		}
		return &Action{
			Kind:   ActionKindTransferResources,
			Slot:   data[1],
			Gold:   leUint32(data[2:6]),
			Lumber: leUint32(data[6:10]),
		}, 10, nil

	case actionType == 0x68:
		if len(data) < 13 {
			return nil, 0, newUnexpectedEOFError(13, len(data))
		}
		return &Action{
			Kind:  ActionKindMinimapPing,
			PingX: float32frombits(data[1:5]),
			PingY: float32frombits(data[5:9]),
			Flags: leUint32(data[9:13]),
		}, 13, nil

	case actionType == 0x15:
		if len(data) < 24 {
			return nil, 0, newUnexpectedEOFError(24, len(data))
		}
		return &Action{
			Kind:     ActionKindBattleNetSync,
			SyncData: append([]byte(nil), data[4:24]...),
		}, 24, nil

	case actionType == OpWrapped11 && subcommand != nil && *subcommand == 0x00:
		return parseWrappedAbility11(subcommand, data)

	case actionType == OpWrapped03 && subcommand != nil && *subcommand == 0x00:
		if len(data) >= 5 && data[2] == 0x18 && data[4] == 0x03 {
			counter := uint32(data[3])
			return &Action{Kind: ActionKindBasicCommand, CommandID: 0x03001803 | counter<<24}, 5, nil
		}
		return parseUnknownAction(actionType, subcommand, data)

	case actionType == OpWrapped03 && subcommand != nil && *subcommand == 0x1A:
		if len(data) >= 12 && data[2] == 0x19 {
			code := abilityCodeFromRaw([4]byte{data[3], data[4], data[5], data[6]})
			v := leUint32(data[7:11])
			return &Action{
				Kind:    ActionKindAbility,
				Ability: &AbilityAction{AbilityCode: code, TargetUnit: &v},
			}, 12, nil
		}
		return parseUnknownAction(actionType, subcommand, data)

	case actionType == OpWrapped0C && subcommand != nil && *subcommand == 0x00:
		if len(data) >= 4 && data[2] == selectionMarker {
			sel, consumed, err := parseSelectionAction(data[2:])
			if err != nil {
				return nil, 0, err
			}
			return &Action{Kind: ActionKindSelection, Selection: sel}, 2 + consumed, nil
		}
		return &Action{Kind: ActionKindBasicCommand, CommandID: 0x0C000000}, 2, nil

	case actionType == OpWrapped2C && subcommand != nil && *subcommand == 0x00:
		return parseMovementWrapper(subcommand, data)

	case actionType == OpWrapped0E && subcommand != nil && *subcommand == 0x00 && len(data) >= 3 && data[2] == abilityMarker:
		if len(data) >= 14 && data[3] == abilitySubcommandDirect {
			code := abilityCodeFromRaw([4]byte{data[4], data[5], data[6], data[7]})
			v := leUint32(data[8:12])
			return &Action{
				Kind:    ActionKindAbility,
				Ability: &AbilityAction{AbilityCode: code, TargetUnit: &v},
			}, 14, nil
		}
		return parseUnknownAction(actionType, subcommand, data)

	case actionType == OpWrapped14 && subcommand != nil && *subcommand == 0x00:
		return wrappedSelectionOrMarker(actionType, data)

	case subcommand != nil && *subcommand == 0x00 && isWrappedSelectionOpcode(actionType):
		return wrappedSelectionOrMarker(actionType, data)

	case actionType == OpSpecialA0 && subcommand != nil && *subcommand == 0x02:
		return &Action{Kind: ActionKindBasicCommand, CommandID: 0xA0020000}, 2, nil

	case subcommand != nil && *subcommand == 0x00 && actionType >= 0x20 && actionType <= 0x7F:
		return wrappedSelectionOrMarker(actionType, data)

	case subcommand != nil && *subcommand == 0x00 && actionType >= 0x80:
		return wrappedSelectionOrMarker(actionType, data)
	}

	return parseUnknownAction(actionType, subcommand, data)
}

// parseWrappedAbility11 handles the Reforged-wrapped family under opcode
// 0x11: a nested direct ability behind an 0x18 marker, or a variable-length
// BattleNet sync packet behind an 0x7B marker.
func parseWrappedAbility11(subcommand *byte, data []byte) (*Action, int, error) {
	if len(data) < 3 {
		return nil, 0, newUnexpectedEOFError(3, len(data))
	}

	switch data[2] {
	case 0x18:
		if len(data) >= 19 && data[5] == abilityMarker && data[6] == abilitySubcommandDirect {
			code := abilityCodeFromRaw([4]byte{data[7], data[8], data[9], data[10]})
			v := leUint32(data[11:15])
			return &Action{
				Kind:    ActionKindAbility,
				Ability: &AbilityAction{AbilityCode: code, TargetUnit: &v},
			}, 19, nil
		}
		if len(data) >= 4 && data[3] == 0x00 {
			return &Action{Kind: ActionKindBasicCommand, CommandID: 0x11001800}, 4, nil
		}
		return &Action{Kind: ActionKindBasicCommand, CommandID: 0x11001800}, 3, nil

	case 0x7B:
		consumed := wrappedSyncLength(data)
		return &Action{
			Kind:     ActionKindBattleNetSync,
			SyncData: append([]byte(nil), data[3:consumed]...),
		}, consumed, nil
	}

	return parseUnknownAction(0x11, subcommand, data)
}

// wrappedSyncLength sizes a 0x11 0x00 0x7B sync packet: variable-length,
// probed for an embedded FourCC before falling back to common fixed widths.
func wrappedSyncLength(data []byte) int {
	if len(data) >= 18 {
		if containsAlpha(data[12:16]) {
			return 18
		}
		if len(data) >= 14 && data[11] == 0x00 {
			return 14
		}
		if len(data) >= 10 {
			return 10
		}
		if len(data) >= 8 {
			return 8
		}
		return min(4, len(data))
	}
	if len(data) >= 8 {
		return 8
	}
	return min(4, len(data))
}

func containsAlpha(b []byte) bool {
	for _, c := range b {
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			return true
		}
	}
	return false
}

// parseMovementWrapper decodes the Reforged movement-wrapper shape at
// opcode 0x2C: a fixed 9-byte prefix (2C 00 14 00 00 03 00 0D 00) around an
// embedded move command whose target and coordinate bytes are shifted one
// byte short, reconstructed here into a standard movement buffer.
func parseMovementWrapper(subcommand *byte, data []byte) (*Action, int, error) {
	if len(data) >= 24 &&
		data[2] == 0x14 && data[3] == 0x00 && data[4] == 0x00 &&
		data[5] == 0x03 && data[6] == 0x00 && data[7] == 0x0D && data[8] == 0x00 {

		buf := make([]byte, 0, movementActionSize)
		buf = append(buf, movementMarker, 0x0D, 0x00, 0x00)
		buf = append(buf, data[9:17]...)
		buf = append(buf, data[17:24]...)
		for len(buf) < movementActionSize {
			buf = append(buf, 0x00)
		}

		mov, _, err := parseMovementActionWithSubcommand(buf, 0x0D)
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindMovement, Movement: mov}, 24, nil
	}
	return parseUnknownAction(0x2C, subcommand, data)
}

// wrappedSelectionOrMarker parses the common Reforged shape "[type] 0x00
// [0x16 selection...]", falling back to a 2-byte synthetic marker when no
// embedded selection is present.
func wrappedSelectionOrMarker(actionType byte, data []byte) (*Action, int, error) {
	if len(data) >= 4 && data[2] == selectionMarker {
		sel, consumed, err := parseSelectionAction(data[2:])
		if err != nil {
			return nil, 0, err
		}
		return &Action{Kind: ActionKindSelection, Selection: sel}, 2 + consumed, nil
	}
	return &Action{Kind: ActionKindBasicCommand, CommandID: uint32(actionType) << 8}, 2, nil
}

// isWrappedSelectionOpcode reports whether b is one of the Reforged
// wrapped-selection opcodes (base Selection 0x16 with modifier flags in
// the upper nibble).
func isWrappedSelectionOpcode(b byte) bool {
	switch b {
	case 0x26, 0x36, 0x46, 0x56, 0x2E, 0x3E, 0x4E, 0x5E:
		return true
	default:
		return false
	}
}

func isMovementSubcommand(sub byte) bool {
	switch sub {
	case 0x0D, 0x0E, 0x0F, 0x10, 0x12:
		return true
	default:
		return false
	}
}

func float32frombits(b []byte) float32 {
	return math.Float32frombits(leUint32(b))
}

// parseUnknownAction scans forward from the action-type byte for the
// next plausible player-ID/action-type boundary, capturing everything up
// to that point as opaque payload. This keeps the iterator tolerant of
// action encodings this dispatcher does not (yet) model, rather than
// failing the whole replay.
func parseUnknownAction(actionType byte, subcommand *byte, data []byte) (*Action, int, error) {
	end := len(data)
	for i := 1; i+1 < len(data); i++ {
		if data[i] >= 1 && data[i] <= 15 && isKnownActionType(data[i+1]) {
			end = i
			break
		}
	}
	if end == 0 {
		end = len(data)
	}

	return &Action{
		Kind:           ActionKindUnknown,
		UnknownTypeID:  actionType,
		UnknownSubcmd:  subcommand,
		UnknownPayload: append([]byte(nil), data[1:end]...),
	}, end, nil
}

// ActionStatistics aggregates per-replay and per-player action counts.
type ActionStatistics struct {
	TotalActions     int
	SelectionActions int
	AbilityActions   int
	MovementActions  int
	HotkeyActions    int
	UnknownActions   int
	ActionsPerPlayer map[byte]int
	uniqueAbilities  map[AbilityCode]struct{}
}

// NewActionStatistics creates an empty ActionStatistics accumulator.
func NewActionStatistics() *ActionStatistics {
	return &ActionStatistics{
		ActionsPerPlayer: make(map[byte]int),
		uniqueAbilities:  make(map[AbilityCode]struct{}),
	}
}

// Record folds a single Action into the running statistics.
func (s *ActionStatistics) Record(a *Action) {
	s.TotalActions++
	s.ActionsPerPlayer[a.PlayerID]++

	switch a.Kind {
	case ActionKindSelection:
		s.SelectionActions++
	case ActionKindAbility:
		s.AbilityActions++
		s.uniqueAbilities[a.Ability.AbilityCode] = struct{}{}
	case ActionKindAbilityWithSelection:
		s.AbilityActions++
		s.SelectionActions++
		s.uniqueAbilities[a.AbilityWithSelection.Ability.AbilityCode] = struct{}{}
	case ActionKindInstantAbility:
		s.AbilityActions++
		s.uniqueAbilities[a.InstantAbility.AbilityCode] = struct{}{}
	case ActionKindMovement:
		s.MovementActions++
	case ActionKindHotkey:
		s.HotkeyActions++
	case ActionKindUnknown:
		s.UnknownActions++
	}
}

// UniqueAbilityCount returns the number of distinct ability codes seen.
func (s *ActionStatistics) UniqueAbilityCount() int {
	return len(s.uniqueAbilities)
}

// ErrorRate returns the fraction of recorded actions that were
// unclassifiable.
func (s *ActionStatistics) ErrorRate() float64 {
	if s.TotalActions == 0 {
		return 0
	}
	return float64(s.UnknownActions) / float64(s.TotalActions)
}
