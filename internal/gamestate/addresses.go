package gamestate

// The save data lives in two relocatable EWRAM blocks. The emulator's memory
// manager periodically moves them, so the fixed pointers below must be
// re-read before every dependent access; a pointer cached across fetches will
// eventually dangle.
const (
	addrSaveBlock1Ptr uint32 = 0x03005D8C
	addrSaveBlock2Ptr uint32 = 0x03005D90

	// Valid range for a resolved save-block pointer.
	ewramStart uint32 = 0x02000000
	ewramEnd   uint32 = 0x02040000
)

// SaveBlock2 offsets (trainer data).
const (
	offPlayerName    = 0x0000
	playerNameLen    = 8
	offPlayTime      = 0x000E // u16 hours, then minute and second bytes
	offEncryptionKey = 0x00AC // u32, XOR mask for obfuscated SaveBlock1 fields
)

// SaveBlock1 offsets (world state). The money and party offsets are the
// corrected set; an earlier revision shipped with 0x0290/0x0034, which belong
// to a different game's block layout and read garbage here.
const (
	offMapGroup   = 0x0004
	offMapNum     = 0x0005
	offPartyCount = 0x0234
	offPartyData  = 0x0238
	offMoney      = 0x0490
	offBadges     = 0x0CB0
)

// Party record layout. Only the unencrypted tail of the record is decoded;
// the species/move sub-structure is encrypted and out of scope.
const (
	partyMax        = 6
	partyRecordSize = 100

	offMonPersonality = 0x00 // u32, zero marks an empty slot
	offMonNickname    = 0x08
	monNicknameLen    = 10
	offMonStatus      = 0x50 // u32
	offMonLevel       = 0x54
	offMonHP          = 0x56 // u16
	offMonMaxHP       = 0x58 // u16
)
