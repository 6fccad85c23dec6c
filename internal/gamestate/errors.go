package gamestate

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is the errors.Is target for sanity-check failures on a
// resolved save-block pointer.
var ErrOutOfRange = errors.New("gamestate: pointer outside relocatable range")

// OutOfRangeError reports a save-block pointer that resolved outside the
// valid EWRAM range. The value cannot be trusted, so the fetch that read it
// is aborted for that cycle.
type OutOfRangeError struct {
	Pointer uint32 // fixed address the pointer was read from
	Value   uint32 // where it pointed
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("gamestate: pointer %08X resolves to %08X, outside [%08X, %08X)",
		e.Pointer, e.Value, ewramStart, ewramEnd)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }
