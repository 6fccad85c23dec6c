package gamestate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
)

// fakeEmu serves READ_CORE_MEMORY requests from a sparse byte map, speaking
// the same wire framing as the real peer. Addresses in fail reply with the
// error sentinel.
type fakeEmu struct {
	mu   sync.Mutex
	mem  map[uint32]byte
	fail map[uint32]bool
}

func newFakeEmu() *fakeEmu {
	return &fakeEmu{mem: make(map[uint32]byte), fail: make(map[uint32]bool)}
}

func (f *fakeEmu) poke(addr uint32, data ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range data {
		f.mem[addr+uint32(i)] = b
	}
}

func (f *fakeEmu) pokeU32(addr uint32, v uint32) {
	f.poke(addr, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (f *fakeEmu) failAt(addr uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[addr] = true
}

func (f *fakeEmu) Request(ctx context.Context, command string) ([]byte, error) {
	var addr uint32
	var length int
	if _, err := fmt.Sscanf(command, "READ_CORE_MEMORY %x %d", &addr, &length); err != nil {
		return nil, fmt.Errorf("fakeEmu: unexpected command %q", command)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[addr] {
		return []byte(fmt.Sprintf("READ_CORE_MEMORY %08X -1", addr)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "READ_CORE_MEMORY %08X", addr)
	for i := 0; i < length; i++ {
		fmt.Fprintf(&sb, " %02X", f.mem[addr+uint32(i)])
	}
	return []byte(sb.String()), nil
}

const (
	testSB1 uint32 = 0x02025A00
	testSB2 uint32 = 0x02024000
)

// seedWorld populates a complete, consistent memory image.
func seedWorld(f *fakeEmu) {
	f.pokeU32(addrSaveBlock1Ptr, testSB1)
	f.pokeU32(addrSaveBlock2Ptr, testSB2)

	// Player "RED", terminator, then garbage that must be ignored.
	f.poke(testSB2+offPlayerName, 0xCC, 0xBF, 0xBE, 0xFF, 0x99, 0x99, 0x99, 0x99)

	f.poke(testSB1+offBadges, 0b00000101)

	f.pokeU32(testSB1+offMoney, 0x00002710)
	f.pokeU32(testSB2+offEncryptionKey, 0x00000005)

	// 298 hours (0x012A), 12 minutes, 34 seconds.
	f.poke(testSB2+offPlayTime, 0x2A, 0x01, 12, 34)

	// Littleroot Town.
	f.poke(testSB1+offMapGroup, 0, 9)

	f.poke(testSB1+offPartyCount, 3)

	// Slot 1: "Aa", level 23, 45/67 HP, poisoned.
	rec := testSB1 + offPartyData
	f.pokeU32(rec+offMonPersonality, 0xDEADBEEF)
	f.poke(rec+offMonNickname, 0xBB, 0xD5, 0xFF)
	f.pokeU32(rec+offMonStatus, 0x08)
	f.poke(rec+offMonLevel, 23)
	f.poke(rec+offMonHP, 45, 0)
	f.poke(rec+offMonMaxHP, 67, 0)

	// Slot 2: empty (zero personality) even though the count says present.

	// Slot 3: "Bb", healthy.
	rec = testSB1 + offPartyData + 2*partyRecordSize
	f.pokeU32(rec+offMonPersonality, 0x00000001)
	f.poke(rec+offMonNickname, 0xBC, 0xD6, 0xFF)
	f.poke(rec+offMonLevel, 5)
	f.poke(rec+offMonHP, 19, 0)
	f.poke(rec+offMonMaxHP, 19, 0)
}

func testDecoder(f *fakeEmu) *Decoder {
	return NewDecoder(f, log.New(io.Discard, "", 0))
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		raw  []byte
		want string
	}{
		{[]byte{0xBB, 0xD5, 0xFF, 0x99}, "Aa"},
		{[]byte{0xCC, 0xBF, 0xBE, 0xFF}, "RED"},
		{[]byte{0xA1, 0xAA, 0xFF}, "09"},
		{[]byte{0xBB, 0x00, 0xD5, 0xFF}, "A a"},
		{[]byte{0x99, 0xFF}, "?"}, // unknown byte renders as placeholder
		{[]byte{0xFF, 0xBB}, ""},  // terminator first
		{[]byte{}, ""},
	}
	for _, tt := range tests {
		if got := decodeText(tt.raw); got != tt.want {
			t.Errorf("decodeText(% X) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestStatusNamePrecedence(t *testing.T) {
	tests := []struct {
		status uint32
		want   string
	}{
		{0x00, "OK"},
		{0x03, "Asleep"},
		{0x08, "Poisoned"},
		{0x10, "Burned"},
		{0x20, "Frozen"},
		{0x40, "Paralyzed"},
		{0x80, "Badly Poisoned"},
		{0x0F, "Asleep"},   // sleep bits outrank poison
		{0x48, "Poisoned"}, // poison outranks paralysis
		{0x90, "Burned"},   // burn outranks bad poison
	}
	for _, tt := range tests {
		if got := statusName(tt.status); got != tt.want {
			t.Errorf("statusName(%#02x) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestDecodeBadges(t *testing.T) {
	set := decodeBadges(0b00000101)
	if set.Count != 2 {
		t.Errorf("Count = %d, want 2", set.Count)
	}
	want := map[string]bool{
		"Boulder": true, "Cascade": false, "Thunder": true, "Rainbow": false,
		"Soul": false, "Marsh": false, "Volcano": false, "Earth": false,
	}
	for name, v := range want {
		if set.Badges[name] != v {
			t.Errorf("badge %s = %v, want %v", name, set.Badges[name], v)
		}
	}
	if len(set.Badges) != 8 {
		t.Errorf("badge map has %d entries, want 8", len(set.Badges))
	}
}

func TestLocationName(t *testing.T) {
	if got := locationName(0, 9); got != "Littleroot Town" {
		t.Errorf("locationName(0, 9) = %q", got)
	}
	if got := locationName(200, 200); got != "Unknown (200.200)" {
		t.Errorf("locationName(200, 200) = %q", got)
	}
}

func TestReadBytes(t *testing.T) {
	f := newFakeEmu()
	f.poke(0x02000000, 0xAB, 0xCD)
	d := testDecoder(f)

	got, err := d.ReadBytes(context.Background(), 0x02000000, 2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if got[0] != 0xAB || got[1] != 0xCD {
		t.Errorf("got % X, want AB CD", got)
	}

	f.failAt(0x02000000)
	if _, err := d.ReadBytes(context.Background(), 0x02000000, 2); err == nil {
		t.Fatal("expected error for sentinel reply")
	}
}

func TestFetchGameState(t *testing.T) {
	f := newFakeEmu()
	seedWorld(f)
	d := testDecoder(f)

	snap, err := d.FetchGameState(context.Background())
	if err != nil {
		t.Fatalf("FetchGameState: %v", err)
	}

	if snap.Player != "RED" {
		t.Errorf("Player = %q, want RED", snap.Player)
	}
	if snap.Money != 0x00002715 {
		t.Errorf("Money = %#x, want 0x2715", snap.Money)
	}
	if snap.Badges.Count != 2 || !snap.Badges.Badges["Boulder"] || !snap.Badges.Badges["Thunder"] {
		t.Errorf("Badges = %+v", snap.Badges)
	}
	if snap.PlayTime != (PlayTime{Hours: 298, Minutes: 12, Seconds: 34}) {
		t.Errorf("PlayTime = %+v", snap.PlayTime)
	}
	if snap.Location.Name != "Littleroot Town" {
		t.Errorf("Location = %+v", snap.Location)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}

	// Slot 2 is empty; slots 1 and 3 must both be present.
	if len(snap.Party) != 2 {
		t.Fatalf("party has %d members, want 2: %+v", len(snap.Party), snap.Party)
	}
	first := snap.Party[0]
	if first.Slot != 1 || first.Nickname != "Aa" || first.Level != 23 ||
		first.HP != 45 || first.MaxHP != 67 || first.Status != "Poisoned" {
		t.Errorf("party[0] = %+v", first)
	}
	if snap.Party[1].Slot != 3 || snap.Party[1].Nickname != "Bb" || snap.Party[1].Status != "OK" {
		t.Errorf("party[1] = %+v", snap.Party[1])
	}
}

func TestFetchGameStatePointerOutOfRange(t *testing.T) {
	f := newFakeEmu()
	seedWorld(f)
	f.pokeU32(addrSaveBlock1Ptr, 0x08000000) // ROM, not EWRAM
	d := testDecoder(f)

	_, err := d.FetchGameState(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestFetchGameStatePartyFailureDegrades(t *testing.T) {
	f := newFakeEmu()
	seedWorld(f)
	f.failAt(testSB1 + offPartyCount)
	d := testDecoder(f)

	snap, err := d.FetchGameState(context.Background())
	if err != nil {
		t.Fatalf("FetchGameState: %v", err)
	}
	if len(snap.Party) != 0 {
		t.Errorf("expected empty party, got %+v", snap.Party)
	}
	if snap.Player != "RED" {
		t.Errorf("other fields must survive a party failure, Player = %q", snap.Player)
	}
}

func TestFetchGameStateSlotFailureKeepsOtherSlots(t *testing.T) {
	f := newFakeEmu()
	seedWorld(f)
	f.failAt(testSB1 + offPartyData) // slot 1 record unreadable
	d := testDecoder(f)

	snap, err := d.FetchGameState(context.Background())
	if err != nil {
		t.Fatalf("FetchGameState: %v", err)
	}
	if len(snap.Party) != 1 || snap.Party[0].Slot != 3 {
		t.Errorf("expected only slot 3, got %+v", snap.Party)
	}
}

func TestFetchGameStateCriticalFailureAborts(t *testing.T) {
	f := newFakeEmu()
	seedWorld(f)
	f.failAt(testSB1 + offBadges)
	d := testDecoder(f)

	if _, err := d.FetchGameState(context.Background()); err == nil {
		t.Fatal("expected fetch to fail on badge read")
	}
}
