package gamestate

import "math/bits"

// badgeNames in bit order, bit 0 first.
var badgeNames = [8]string{
	"Boulder", "Cascade", "Thunder", "Rainbow", "Soul", "Marsh", "Volcano", "Earth",
}

func decodeBadges(b byte) BadgeSet {
	badges := make(map[string]bool, len(badgeNames))
	for i, name := range badgeNames {
		badges[name] = b&(1<<i) != 0
	}
	return BadgeSet{
		Count:  bits.OnesCount8(b),
		Badges: badges,
	}
}
