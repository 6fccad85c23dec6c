// Package votes turns many concurrent vote submissions into exactly one
// control action per fixed interval: collect one vote per identity per
// window, tally on a periodic tick, break ties at random, dispatch the
// winner, then hold a cooldown before the next window opens.
package votes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// ErrCooldown is the defined outcome for a vote submitted while no
	// window is open. It is not a fault; callers surface it so voters can
	// tell "counted" apart from "voting is paused".
	ErrCooldown = errors.New("votes: voting is paused until the next window opens")

	// ErrUnknownButton rejects a button outside the configured set before
	// any state is touched.
	ErrUnknownButton = errors.New("votes: unknown button")
)

// Rand is the injectable random source for tie-breaking, so resolution is
// reproducible under test.
type Rand interface {
	Intn(n int) int
}

// Presser dispatches the winning button. Satisfied by input.Dispatcher.
type Presser interface {
	Press(button string) error
}

// Recorder persists resolved windows. Optional.
type Recorder interface {
	RecordExecution(res ExecutionResult) error
}

var defaultButtons = []string{"a", "b", "select", "start", "right", "left", "up", "down"}

// Config holds the engine's collaborators and timing knobs.
type Config struct {
	// Buttons is the valid button set. Defaults to the standard pad.
	Buttons []string

	// WindowDuration is the voting interval. Defaults to 10s.
	WindowDuration time.Duration

	// Cooldown holds new votes off after a window resolves, long enough
	// for the dispatched input to visibly take effect. Defaults to 2s.
	Cooldown time.Duration

	// TickInterval is the expiry-detection period. Short enough to catch
	// window expiry promptly, long enough to cost nothing. Defaults to
	// 100ms.
	TickInterval time.Duration

	Dispatcher Presser
	Recorder   Recorder

	// Publish, when set, receives TallyEvent and ExecutionEvent values
	// for live subscribers.
	Publish func(event any)

	// Rand and Now are injectable for tests.
	Rand Rand
	Now  func() time.Time

	Logger *log.Logger
}

// Engine is the single shared vote aggregate. All window state is guarded by
// mu; only the ticker transitions windows, so readers and submitters always
// observe a fully-formed window.
type Engine struct {
	cfg       Config
	buttons   []string
	buttonSet map[string]struct{}
	rng       Rand
	now       func() time.Time
	logger    *log.Logger

	mu            sync.Mutex
	current       *Window
	prev          *ExecutionResult
	cooldownUntil time.Time
}

// NewEngine builds an engine and opens its first window immediately.
func NewEngine(cfg Config) *Engine {
	if len(cfg.Buttons) == 0 {
		cfg.Buttons = defaultButtons
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 10 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[VOTES] ", log.LstdFlags)
	}

	buttonSet := make(map[string]struct{}, len(cfg.Buttons))
	for _, b := range cfg.Buttons {
		buttonSet[strings.ToLower(b)] = struct{}{}
	}

	e := &Engine{
		cfg:       cfg,
		buttons:   cfg.Buttons,
		buttonSet: buttonSet,
		rng:       cfg.Rand,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}

	e.mu.Lock()
	e.openWindowLocked(e.now())
	e.mu.Unlock()
	return e
}

// Buttons returns the configured button set.
func (e *Engine) Buttons() []string {
	return e.buttons
}

// Submit records one vote for identity in the current window. A repeat
// submission replaces the earlier vote and reports the change. Whether the
// vote lands is decided purely by engine state: a window that has passed its
// end time but not yet been resolved by the ticker still accepts votes.
func (e *Engine) Submit(identity, button, displayName string) (SubmitResult, error) {
	button = strings.ToLower(button)
	if _, ok := e.buttonSet[button]; !ok {
		return SubmitResult{}, fmt.Errorf("%w: %q", ErrUnknownButton, button)
	}

	e.mu.Lock()
	if e.current == nil || e.current.Resolved {
		e.mu.Unlock()
		return SubmitResult{}, ErrCooldown
	}

	prev, existed := e.current.Votes[identity]
	e.current.Votes[identity] = Vote{
		Button:      button,
		DisplayName: displayName,
		CastAt:      e.now(),
		Identity:    identity,
	}
	res := SubmitResult{WindowID: e.current.ID, IsChange: existed, PreviousButton: prev.Button}
	event := e.tallyEventLocked()
	e.mu.Unlock()

	e.publish(event)
	return res, nil
}

// Status returns a consistent view for external readers.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{Previous: e.prev}
	if e.current == nil {
		s.CoolingDown = true
		s.Tallies = TallyVotes(e.buttons, nil)
		return s
	}
	s.WindowID = e.current.ID
	if remaining := e.current.EndTime.Sub(e.now()); remaining > 0 {
		s.TimeRemaining = remaining
	}
	s.TotalVotes = len(e.current.Votes)
	s.Tallies = TallyVotes(e.buttons, e.current.Votes)
	return s
}

// PreviousResult returns the retained depth-1 result, or nil.
func (e *Engine) PreviousResult() *ExecutionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prev
}

// Run drives the engine until ctx is cancelled. Only this loop transitions
// window state.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(e.now())
		}
	}
}

// tick observes the clock once: it reopens after cooldown, resolves an
// expired window, or does nothing.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()

	if e.current == nil {
		if now.Before(e.cooldownUntil) {
			e.mu.Unlock()
			return
		}
		e.openWindowLocked(now)
		event := e.tallyEventLocked()
		e.mu.Unlock()
		e.publish(event)
		return
	}

	if now.Before(e.current.EndTime) {
		e.mu.Unlock()
		return
	}

	win := e.current
	win.Resolved = true
	tallies := TallyVotes(e.buttons, win.Votes)
	res := ExecutionResult{
		WindowID:   win.ID,
		Winner:     pickWinner(tallies, e.rng),
		TotalVotes: len(win.Votes),
		Tallies:    tallies,
		ExecutedAt: now,
	}
	e.prev = &res
	e.current = nil
	e.cooldownUntil = now.Add(e.cfg.Cooldown)
	e.mu.Unlock()

	if res.Winner == "" {
		e.logger.Printf("window %d ended with no votes", res.WindowID)
	} else {
		e.logger.Printf("window %d: executing %s (%d votes)", res.WindowID, res.Winner, res.TotalVotes)
	}

	// Dispatch off the lock and off the ticker, so a slow transport can
	// never stall submissions or expiry detection.
	go e.execute(res)
}

func (e *Engine) execute(res ExecutionResult) {
	if res.Winner != "" && e.cfg.Dispatcher != nil {
		if err := e.cfg.Dispatcher.Press(res.Winner); err != nil {
			e.logger.Printf("dispatch %s: %v", res.Winner, err)
		}
	}
	if e.cfg.Recorder != nil {
		if err := e.cfg.Recorder.RecordExecution(res); err != nil {
			e.logger.Printf("record window %d: %v", res.WindowID, err)
		}
	}
	e.publish(ExecutionEvent{Type: "execution", Result: res})
}

// openWindowLocked starts a fresh window whose id is the wall-clock interval
// index at the moment it opens. Ids are monotonic but not necessarily
// contiguous when cooldown spans an interval boundary.
func (e *Engine) openWindowLocked(now time.Time) {
	e.current = &Window{
		ID:        now.UnixMilli() / e.cfg.WindowDuration.Milliseconds(),
		StartTime: now,
		EndTime:   now.Add(e.cfg.WindowDuration),
		Votes:     make(map[string]Vote),
	}
}

func (e *Engine) tallyEventLocked() TallyEvent {
	event := TallyEvent{
		Type:     "tally",
		WindowID: e.current.ID,
		Tallies:  TallyVotes(e.buttons, e.current.Votes),
	}
	event.TotalVotes = len(e.current.Votes)
	if remaining := e.current.EndTime.Sub(e.now()); remaining > 0 {
		event.TimeRemainingMs = remaining.Milliseconds()
	}
	return event
}

func (e *Engine) publish(event any) {
	if e.cfg.Publish != nil {
		e.cfg.Publish(event)
	}
}
