package store

import (
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestSaveAndListExecutions(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	execs := []*Execution{
		{WindowID: 100, Winner: "a", TotalVotes: 3, TalliesJSON: `[{"button":"a","count":3}]`, ExecutedAt: base},
		{WindowID: 101, Winner: "", TotalVotes: 0, ExecutedAt: base.Add(12 * time.Second)},
		{WindowID: 102, Winner: "up", TotalVotes: 7, TalliesJSON: `[{"button":"up","count":7}]`, ExecutedAt: base.Add(24 * time.Second)},
	}
	for _, exec := range execs {
		if err := db.SaveExecution(exec); err != nil {
			t.Fatalf("Failed to save execution for window %d: %v", exec.WindowID, err)
		}
		if exec.ID == "" {
			t.Errorf("SaveExecution must assign an id, window %d", exec.WindowID)
		}
	}

	got, err := db.ListExecutions(10)
	if err != nil {
		t.Fatalf("Failed to list executions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 executions, got %d", len(got))
	}

	// Newest first.
	if got[0].WindowID != 102 || got[1].WindowID != 101 || got[2].WindowID != 100 {
		t.Errorf("Wrong ordering: %d, %d, %d", got[0].WindowID, got[1].WindowID, got[2].WindowID)
	}

	if got[0].Winner != "up" || got[0].TotalVotes != 7 {
		t.Errorf("Unexpected execution: %+v", got[0])
	}
	if !got[0].ExecutedAt.Equal(base.Add(24 * time.Second)) {
		t.Errorf("ExecutedAt round-trip: got %v", got[0].ExecutedAt)
	}

	// Empty window persists with an empty winner and default tallies.
	if got[1].Winner != "" || got[1].TalliesJSON != "[]" {
		t.Errorf("Empty window stored as %+v", got[1])
	}
}

func TestListExecutionsLimit(t *testing.T) {
	db := newTestDB(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		exec := &Execution{WindowID: int64(i), Winner: "b", TotalVotes: 1, ExecutedAt: base.Add(time.Duration(i) * time.Second)}
		if err := db.SaveExecution(exec); err != nil {
			t.Fatalf("Failed to save execution: %v", err)
		}
	}

	got, err := db.ListExecutions(2)
	if err != nil {
		t.Fatalf("Failed to list executions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 executions, got %d", len(got))
	}
	if got[0].WindowID != 4 {
		t.Errorf("Expected newest first, got window %d", got[0].WindowID)
	}

	// Out-of-range limits still produce a valid query: non-positive falls
	// back to the default page, oversized is clamped.
	if got, err = db.ListExecutions(0); err != nil || len(got) != 5 {
		t.Errorf("ListExecutions(0) = %d rows, err %v", len(got), err)
	}
	if got, err = db.ListExecutions(100000); err != nil || len(got) != 5 {
		t.Errorf("ListExecutions(100000) = %d rows, err %v", len(got), err)
	}
}

func TestLatestExecution(t *testing.T) {
	db := newTestDB(t)

	latest, err := db.LatestExecution()
	if err != nil {
		t.Fatalf("LatestExecution on empty database: %v", err)
	}
	if latest != nil {
		t.Fatalf("Expected nil on empty database, got %+v", latest)
	}

	base := time.Now().UTC()
	for i, winner := range []string{"a", "down"} {
		exec := &Execution{WindowID: int64(200 + i), Winner: winner, TotalVotes: i + 1, ExecutedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := db.SaveExecution(exec); err != nil {
			t.Fatalf("Failed to save execution: %v", err)
		}
	}

	latest, err = db.LatestExecution()
	if err != nil {
		t.Fatalf("Failed to get latest execution: %v", err)
	}
	if latest == nil || latest.Winner != "down" || latest.WindowID != 201 {
		t.Errorf("Unexpected latest execution: %+v", latest)
	}
}
