package api

import (
	"encoding/json"
	"time"

	"github.com/clawplays/crowdplay/internal/votes"
)

// VoteRequest is the body of POST /vote.
type VoteRequest struct {
	Button      string `json:"button"`
	DisplayName string `json:"displayName,omitempty"`
}

// VoteResponse reports an accepted vote.
type VoteResponse struct {
	Accepted       bool   `json:"accepted"`
	WindowID       int64  `json:"windowId"`
	IsChange       bool   `json:"isChange"`
	PreviousButton string `json:"previousButton,omitempty"`
}

// StatusResponse is the GET /status body. TimeRemainingMs is derived so
// callers never parse Go duration strings.
type StatusResponse struct {
	WindowID        int64                  `json:"windowId"`
	TimeRemainingMs int64                  `json:"timeRemainingMs"`
	TotalVotes      int                    `json:"totalVotes"`
	Tallies         []votes.Tally          `json:"tallies"`
	CoolingDown     bool                   `json:"coolingDown"`
	Previous        *votes.ExecutionResult `json:"previousResult,omitempty"`
}

// ButtonsResponse lists the accepted button names.
type ButtonsResponse struct {
	Buttons []string `json:"buttons"`
}

// HistoryEntry is one resolved window in GET /history. Tallies is the stored
// JSON passed through verbatim.
type HistoryEntry struct {
	ID         string          `json:"id"`
	WindowID   int64           `json:"windowId"`
	Winner     string          `json:"winner,omitempty"`
	TotalVotes int             `json:"totalVotes"`
	Tallies    json.RawMessage `json:"tallies"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// HistoryResponse is the GET /history body.
type HistoryResponse struct {
	Executions []HistoryEntry `json:"executions"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}
