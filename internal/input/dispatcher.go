// Package input translates abstract button symbols into the emulator's wire
// encoding and issues timed press/release sequences.
package input

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// ErrInvalidButton is returned for a button outside the fixed set, before
// any network I/O happens.
var ErrInvalidButton = errors.New("input: invalid button")

// Variant selects the wire encoding for input commands.
type Variant string

const (
	// VariantBitmask sends the full pad state as a decimal bitmask:
	// "INPUT <mask>" to press, "INPUT 0" to release.
	VariantBitmask Variant = "bitmask"

	// VariantNamed sends named commands: "PRESS A" / "RELEASE A".
	VariantNamed Variant = "named"
)

// DefaultHold approximates the original 8-frame hold at 60 FPS.
const DefaultHold = 133 * time.Millisecond

// buttonBits is the pad bit layout used by the bitmask variant.
var buttonBits = map[string]uint16{
	"a":      1 << 0,
	"b":      1 << 1,
	"select": 1 << 2,
	"start":  1 << 3,
	"right":  1 << 4,
	"left":   1 << 5,
	"up":     1 << 6,
	"down":   1 << 7,
}

// Buttons returns the valid button set in pad bit order.
func Buttons() []string {
	return []string{"a", "b", "select", "start", "right", "left", "up", "down"}
}

// Valid reports whether button names a known pad button.
func Valid(button string) bool {
	_, ok := buttonBits[strings.ToLower(button)]
	return ok
}

// Sender is the slice of the transport client the dispatcher needs. Input
// commands never produce a reply, so fire-and-forget is all it takes.
type Sender interface {
	SendOnly(command string) error
}

// Dispatcher issues best-effort button presses. Transport failures are
// logged and swallowed: a missed input is acceptable, a doubled one is not,
// so there is no retry.
type Dispatcher struct {
	emu     Sender
	variant Variant
	hold    time.Duration
	logger  *log.Logger
	sleep   func(time.Duration)
}

func NewDispatcher(emu Sender, variant Variant, hold time.Duration, logger *log.Logger) *Dispatcher {
	if variant == "" {
		variant = VariantBitmask
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[INPUT] ", log.LstdFlags)
	}
	return &Dispatcher{emu: emu, variant: variant, hold: hold, logger: logger, sleep: time.Sleep}
}

// Press holds button for the configured duration, then releases it. The only
// error it returns is ErrInvalidButton; everything past validation is
// best-effort.
func (d *Dispatcher) Press(button string) error {
	button = strings.ToLower(button)
	bit, ok := buttonBits[button]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidButton, button)
	}

	var press, release string
	switch d.variant {
	case VariantNamed:
		token := strings.ToUpper(button)
		press = "PRESS " + token
		release = "RELEASE " + token
	default:
		press = fmt.Sprintf("INPUT %d", bit)
		release = "INPUT 0"
	}

	if err := d.emu.SendOnly(press); err != nil {
		d.logger.Printf("press %s failed: %v", button, err)
		return nil
	}
	d.sleep(d.hold)
	if err := d.emu.SendOnly(release); err != nil {
		d.logger.Printf("release %s failed: %v", button, err)
	}
	return nil
}
