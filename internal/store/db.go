package store

import (
	"time"
)

// DB is the persistence interface for resolved voting windows.
type DB interface {
	Close() error
	Migrate() error
	SaveExecution(exec *Execution) error
	ListExecutions(limit int) ([]Execution, error)
	LatestExecution() (*Execution, error)
}

// Execution is one resolved window as stored. Winner is empty for windows
// that ended with no votes; TalliesJSON carries the full per-button breakdown
// as serialized JSON so the schema never chases the tally shape.
type Execution struct {
	ID          string    `json:"id" db:"id"`
	WindowID    int64     `json:"windowId" db:"window_id"`
	Winner      string    `json:"winner,omitempty" db:"winner"`
	TotalVotes  int       `json:"totalVotes" db:"total_votes"`
	TalliesJSON string    `json:"-" db:"tallies_json"`
	ExecutedAt  time.Time `json:"executedAt" db:"executed_at"`
}
