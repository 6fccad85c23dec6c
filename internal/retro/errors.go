package retro

import (
	"errors"
	"fmt"
)

// Sentinel targets for errors.Is checks. Callers treat both the same way:
// keep stale data, try again next cycle.
var (
	ErrTimeout        = errors.New("retro: no reply within retry budget")
	ErrMalformedReply = errors.New("retro: malformed reply")
)

// TimeoutError is returned when a request exhausts its retry budget without
// receiving a usable reply.
type TimeoutError struct {
	Command  string
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("retro: %s: no reply after %d attempts: %v", e.Command, e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// MalformedReplyError is returned when a reply datagram arrives but cannot be
// decoded. It is deliberately not distinguished from a timeout by callers.
type MalformedReplyError struct {
	Reply string
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("retro: malformed reply %q", truncate(e.Reply, 64))
}

func (e *MalformedReplyError) Is(target error) bool { return target == ErrMalformedReply }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
