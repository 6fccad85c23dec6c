// Package gamestate reconstructs structured game telemetry from the
// emulator's raw memory: pointer indirection through the relocating save
// blocks, bitfield and XOR-obfuscated field decoding, and the in-game text
// encoding.
package gamestate

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/clawplays/crowdplay/internal/retro"
)

// Requester is the slice of the transport client the decoder needs.
type Requester interface {
	Request(ctx context.Context, command string) ([]byte, error)
}

// Decoder reads and decodes game memory through a transport client.
type Decoder struct {
	emu    Requester
	logger *log.Logger
}

func NewDecoder(emu Requester, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(os.Stdout, "[STATE] ", log.LstdFlags)
	}
	return &Decoder{emu: emu, logger: logger}
}

// ReadBytes reads length bytes of core memory starting at addr.
func (d *Decoder) ReadBytes(ctx context.Context, addr uint32, length int) ([]byte, error) {
	reply, err := d.emu.Request(ctx, fmt.Sprintf("READ_CORE_MEMORY %08X %d", addr, length))
	if err != nil {
		return nil, err
	}
	data, err := retro.ParseMemoryReply(reply)
	if err != nil {
		return nil, err
	}
	if len(data) < length {
		return nil, fmt.Errorf("gamestate: short read at %08X: got %d bytes, want %d", addr, len(data), length)
	}
	return data[:length], nil
}

func (d *Decoder) readU32(ctx context.Context, addr uint32) (uint32, error) {
	raw, err := d.ReadBytes(ctx, addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// resolvePointer reads a save-block base pointer and bounds-checks it
// against the relocatable region.
func (d *Decoder) resolvePointer(ctx context.Context, addr uint32) (uint32, error) {
	p, err := d.readU32(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("read pointer %08X: %w", addr, err)
	}
	if p < ewramStart || p >= ewramEnd {
		return 0, &OutOfRangeError{Pointer: addr, Value: p}
	}
	return p, nil
}

// FetchGameState produces a full snapshot, or no snapshot at all. Both base
// pointers are resolved fresh, then the independent field reads run
// concurrently. A party failure degrades to fewer members; any other failed
// read aborts the fetch and the caller keeps its previous snapshot.
func (d *Decoder) FetchGameState(ctx context.Context) (*Snapshot, error) {
	sb1, err1 := d.resolvePointer(ctx, addrSaveBlock1Ptr)
	sb2, err2 := d.resolvePointer(ctx, addrSaveBlock2Ptr)
	if err := multierr.Append(err1, err2); err != nil {
		return nil, fmt.Errorf("gamestate: resolve save blocks: %w", err)
	}

	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := d.ReadBytes(gctx, sb2+offPlayerName, playerNameLen)
		if err != nil {
			return fmt.Errorf("player name: %w", err)
		}
		snap.Player = decodeText(raw)
		return nil
	})

	g.Go(func() error {
		raw, err := d.ReadBytes(gctx, sb1+offBadges, 1)
		if err != nil {
			return fmt.Errorf("badges: %w", err)
		}
		snap.Badges = decodeBadges(raw[0])
		return nil
	})

	g.Go(func() error {
		enc, err := d.readU32(gctx, sb1+offMoney)
		if err != nil {
			return fmt.Errorf("money: %w", err)
		}
		key, err := d.readU32(gctx, sb2+offEncryptionKey)
		if err != nil {
			return fmt.Errorf("money key: %w", err)
		}
		snap.Money = enc ^ key
		return nil
	})

	g.Go(func() error {
		raw, err := d.ReadBytes(gctx, sb2+offPlayTime, 4)
		if err != nil {
			return fmt.Errorf("play time: %w", err)
		}
		snap.PlayTime = PlayTime{
			Hours:   int(binary.LittleEndian.Uint16(raw[0:2])),
			Minutes: int(raw[2]),
			Seconds: int(raw[3]),
		}
		return nil
	})

	g.Go(func() error {
		raw, err := d.ReadBytes(gctx, sb1+offMapGroup, 2)
		if err != nil {
			return fmt.Errorf("location: %w", err)
		}
		snap.Location = Location{
			MapGroup: int(raw[0]),
			MapNum:   int(raw[1]),
			Name:     locationName(raw[0], raw[1]),
		}
		return nil
	})

	g.Go(func() error {
		party, err := d.readParty(gctx, sb1)
		if err != nil {
			d.logger.Printf("party read degraded: %v", err)
		}
		snap.Party = party
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gamestate: %w", err)
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

// readParty enumerates the party table. Slots are read independently: a slot
// that fails or is empty never hides the slots after it. The returned error
// aggregates per-slot failures for logging; whatever decoded cleanly is
// returned alongside it.
func (d *Decoder) readParty(ctx context.Context, sb1 uint32) ([]PartyMember, error) {
	raw, err := d.ReadBytes(ctx, sb1+offPartyCount, 1)
	if err != nil {
		return nil, fmt.Errorf("party count: %w", err)
	}
	count := int(raw[0])
	if count > partyMax {
		count = partyMax
	}

	var party []PartyMember
	var errs error
	for i := 0; i < count; i++ {
		rec, err := d.ReadBytes(ctx, sb1+offPartyData+uint32(i*partyRecordSize), partyRecordSize)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("slot %d: %w", i+1, err))
			continue
		}
		if binary.LittleEndian.Uint32(rec[offMonPersonality:]) == 0 {
			// Empty slot, not a zero-valued member.
			continue
		}
		party = append(party, PartyMember{
			Slot:     i + 1,
			Nickname: decodeText(rec[offMonNickname : offMonNickname+monNicknameLen]),
			Level:    int(rec[offMonLevel]),
			HP:       int(binary.LittleEndian.Uint16(rec[offMonHP:])),
			MaxHP:    int(binary.LittleEndian.Uint16(rec[offMonMaxHP:])),
			Status:   statusName(binary.LittleEndian.Uint32(rec[offMonStatus:])),
		})
	}
	return party, errs
}
