package gamestate

import "time"

// Snapshot is a complete, consistent view of the game state at one fetch.
// Snapshots are replaced whole, never mutated field-by-field, so a reader
// holding one can use it without locking.
type Snapshot struct {
	Player    string        `json:"player"`
	Badges    BadgeSet      `json:"badges"`
	Party     []PartyMember `json:"party"`
	Location  Location      `json:"location"`
	Money     uint32        `json:"money"`
	PlayTime  PlayTime      `json:"playTime"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// BadgeSet unpacks the badge bitfield into named flags.
type BadgeSet struct {
	Count  int             `json:"count"`
	Badges map[string]bool `json:"badges"`
}

// PartyMember is one occupied party slot. Slots are 1-based for display.
type PartyMember struct {
	Slot     int    `json:"slot"`
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"maxHp"`
	Status   string `json:"status"`
}

// Location identifies the player's current map.
type Location struct {
	MapGroup int    `json:"mapGroup"`
	MapNum   int    `json:"mapNum"`
	Name     string `json:"name"`
}

// PlayTime is the in-game clock.
type PlayTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}
