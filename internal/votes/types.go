package votes

import "time"

// Vote is one caller's current choice inside a window. A later vote from the
// same identity replaces it; votes are never duplicated.
type Vote struct {
	Button      string    `json:"button"`
	DisplayName string    `json:"displayName"`
	CastAt      time.Time `json:"castAt"`
	Identity    string    `json:"-"`
}

// Window is one fixed-duration voting interval. The engine owns it
// exclusively; Resolved flips exactly once, on the ticker.
type Window struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Votes     map[string]Vote
	Resolved  bool
}

// Tally is the derived per-button count for a window. Every known button
// appears exactly once, zero-count buttons included.
type Tally struct {
	Button     string   `json:"button"`
	Count      int      `json:"count"`
	Percentage int      `json:"percentage"`
	Voters     []string `json:"voters"`
}

// ExecutionResult records how a window resolved. Winner is empty when the
// window had no votes.
type ExecutionResult struct {
	WindowID   int64     `json:"windowId"`
	Winner     string    `json:"winner,omitempty"`
	TotalVotes int       `json:"totalVotes"`
	Tallies    []Tally   `json:"tallies"`
	ExecutedAt time.Time `json:"executedAt"`
}

// SubmitResult reports the outcome of an accepted vote.
type SubmitResult struct {
	WindowID       int64  `json:"windowId"`
	IsChange       bool   `json:"isChange"`
	PreviousButton string `json:"previousButton,omitempty"`
}

// Status is a consistent view of the engine for external readers.
type Status struct {
	WindowID      int64            `json:"windowId"`
	TimeRemaining time.Duration    `json:"-"`
	TotalVotes    int              `json:"totalVotes"`
	Tallies       []Tally          `json:"tallies"`
	CoolingDown   bool             `json:"coolingDown"`
	Previous      *ExecutionResult `json:"previousResult,omitempty"`
}

// TallyEvent is broadcast to live subscribers whenever the current tallies
// change.
type TallyEvent struct {
	Type            string  `json:"type"`
	WindowID        int64   `json:"windowId"`
	TimeRemainingMs int64   `json:"timeRemainingMs"`
	TotalVotes      int     `json:"totalVotes"`
	Tallies         []Tally `json:"tallies"`
}

// ExecutionEvent is broadcast once per resolved window.
type ExecutionEvent struct {
	Type   string          `json:"type"`
	Result ExecutionResult `json:"result"`
}
