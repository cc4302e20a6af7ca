package w3g

// Envelope header sizes and data offsets.
const (
	GrbnHeaderSize    = 128
	GrbnDataOffset    = 0x80
	ClassicHeaderSize = 68
	ClassicDataOffset = 0x44
)

// Game record header magic (0x00000110 little-endian).
const GameRecordMagic uint32 = 0x0000_0110

// Player roster record markers.
const (
	PlayerSlotMarker byte = 0x16
	SlotRecordMarker byte = 0x19
)

// TimeFrame and interleaved record markers.
const (
	TimeFrameMarker1F byte = 0x1F
	TimeFrameMarker1E byte = 0x1E
	ChecksumMarker    byte = 0x22
	ChatMarker        byte = 0x20
	LeaveMarker       byte = 0x17
)

// Extended-metadata record marker (build 10100+), which appears between
// player records and the first real TimeFrame.
const ExtendedMetadataMarker byte = 0x38

// Action opcodes (first dispatch byte within a per-player action stream).
const (
	OpMovement            byte = 0x00
	OpDirectAbilityOrItem  byte = 0x1A // sub 0x19 direct ability, sub 0x00 ability-with-selection
	OpInstantAbility       byte = 0x0F // sub 0x00
	OpSelection            byte = 0x16
	OpHotkey               byte = 0x17
	OpEscapeKey            byte = 0x18
	OpItem                 byte = 0x1B
	OpBasicCommand         byte = 0x1C
	OpBuildTrain           byte = 0x1D
	OpSelectSubgroup       byte = 0x19
	OpRemoveFromQueue      byte = 0x1E
	OpAllyOptions          byte = 0x50
	OpTransferResources    byte = 0x51
	OpMinimapPing          byte = 0x68
	OpBattleNetSync        byte = 0x15
	OpWrapped11            byte = 0x11
	OpWrapped03            byte = 0x03
	OpWrapped0C            byte = 0x0C
	OpWrapped2C            byte = 0x2C
	OpWrapped0E            byte = 0x0E
	OpWrapped14            byte = 0x14
	OpSpecialA0            byte = 0xA0
)

// isKnownActionType reports whether b is one of the opcode bytes the
// fallback unknown-action scanner treats as a plausible resync point. This
// set intentionally excludes 0x10 through 0x14 even though some of those
// bytes participate in other dispatch rules as opcodes or subcommands.
func isKnownActionType(b byte) bool {
	switch b {
	case 0x00, 0x03, 0x0C, 0x0F, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E,
		0x26, 0x2E, 0x36, 0x3E, 0x46, 0x4E, 0x56, 0x5E,
		0x20, 0x24, 0x28, 0x2C, 0x30, 0x34, 0x38, 0x3C, 0x40, 0x44, 0x48, 0x4C, 0x50, 0x51, 0x52,
		0x54, 0x58, 0x5C, 0x60, 0x64, 0x68, 0x6C, 0x70, 0x74, 0x76, 0x78, 0x7C:
		return true
	default:
		return false
	}
}

// ItemIDNames maps canonical (un-reversed) four-character unit/building/
// ability/hero codes to human-readable names, used by AbilityCode.Name.
var ItemIDNames = map[string]string{
	"halt": "Altar of Kings", "hbar": "Barracks", "hbla": "Blacksmith",
	"hhou": "Farm", "hgra": "Gryphon Aviary", "hars": "Arcane Sanctum",
	"hlum": "Lumber Mill", "htow": "Town Hall", "hkee": "Keep",
	"hcas": "Castle", "harm": "Workshop", "hwtw": "Scout Tower",
	"hgtw": "Guard Tower", "hctw": "Cannon Tower", "hatw": "Arcane Tower",

	"hpea": "Peasant", "hfoo": "Footman", "hrif": "Rifleman", "hkni": "Knight",
	"hmpr": "Priest", "hsor": "Sorceress", "hspt": "Spell Breaker",
	"hmtm": "Mortar Team", "hgyr": "Flying Machine", "hgry": "Gryphon Rider",
	"hmtt": "Siege Engine",

	"Hamg": "Archmage", "Hblm": "Blood Mage", "Hmkg": "Mountain King", "Hpal": "Paladin",

	"oalt": "Altar of Storms", "obar": "Barracks", "ofor": "War Mill",
	"ogre": "Great Hall", "ostr": "Stronghold", "ofrt": "Fortress",
	"obea": "Beastiary", "osld": "Spirit Lodge", "otrb": "Orc Burrow",
	"ovln": "Voodoo Lounge", "otau": "Tauren Totem", "owtw": "Watch Tower",

	"opeo": "Peon", "ogru": "Grunt", "ohun": "Headhunter", "orai": "Raider",
	"okod": "Kodo Beast", "oshm": "Shaman", "odoc": "Witch Doctor",
	"ospw": "Spirit Walker", "owyv": "Wind Rider", "otbr": "Troll Batrider",

	"Obla": "Blademaster", "Ofar": "Far Seer", "Otch": "Tauren Chieftain", "Oshd": "Shadow Hunter",

	"eate": "Altar of Elders", "eaom": "Ancient of War", "eaow": "Ancient of Wonders",
	"eaoe": "Ancient of Lore", "edob": "Hunter's Hall", "etol": "Tree of Life",
	"etoa": "Tree of Ages", "etoe": "Tree of Eternity", "emow": "Moon Well",
	"eden": "Ancient of Wind", "edos": "Chimaera Roost",

	"ewsp": "Wisp", "earc": "Archer", "esen": "Huntress", "ebal": "Glaive Thrower",
	"edry": "Dryad", "edot": "Druid of the Talon", "edoc": "Druid of the Claw",
	"emtg": "Mountain Giant", "efdr": "Faerie Dragon", "ehip": "Hippogryph", "echm": "Chimaera",

	"Edem": "Demon Hunter", "Ekee": "Keeper of the Grove", "Emoo": "Priestess of the Moon", "Ewar": "Warden",

	"uaod": "Altar of Darkness", "unpl": "Necropolis", "unp1": "Halls of the Dead",
	"unp2": "Black Citadel", "usep": "Crypt", "ugrv": "Graveyard", "uzig": "Ziggurat",
	"uzg1": "Spirit Tower", "uzg2": "Nerubian Tower", "uslh": "Slaughterhouse",
	"utod": "Temple of the Damned", "usap": "Sacrificial Pit", "ubon": "Boneyard",
	"utom": "Tomb of Relics",

	"uaco": "Acolyte", "ugho": "Ghoul", "ucry": "Crypt Fiend", "ugar": "Gargoyle",
	"uabo": "Abomination", "umtw": "Meat Wagon", "unec": "Necromancer", "uban": "Banshee",
	"uobs": "Obsidian Statue", "ubsp": "Destroyer", "ufro": "Frost Wyrm", "ushd": "Shade",

	"Udea": "Death Knight", "Udre": "Dread Lord", "Ulic": "Lich", "Ucrl": "Crypt Lord",
}
