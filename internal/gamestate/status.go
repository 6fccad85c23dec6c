package gamestate

// Status condition bits in the party record's status word. Sleep uses the
// low three bits as a turn counter; the rest are single flags.
const (
	statusSleepMask uint32 = 0x07
	statusPoison    uint32 = 0x08
	statusBurn      uint32 = 0x10
	statusFreeze    uint32 = 0x20
	statusParalysis uint32 = 0x40
	statusBadPoison uint32 = 0x80
)

// statusName maps a raw status word to its display name. Precedence is
// fixed: sleep, poison, burn, freeze, paralysis, bad poison — the first
// matching bit wins regardless of what else is set.
func statusName(status uint32) string {
	switch {
	case status&statusSleepMask != 0:
		return "Asleep"
	case status&statusPoison != 0:
		return "Poisoned"
	case status&statusBurn != 0:
		return "Burned"
	case status&statusFreeze != 0:
		return "Frozen"
	case status&statusParalysis != 0:
		return "Paralyzed"
	case status&statusBadPoison != 0:
		return "Badly Poisoned"
	default:
		return "OK"
	}
}
