package history

import (
	"fmt"
	"testing"
	"time"
)

func TestAppendEvictsOldestBeyondCap(t *testing.T) {
	s := NewStore(200)

	for i := 0; i < 250; i++ {
		s.Append("session-1", Record{
			ID:        fmt.Sprintf("rec-%d", i),
			Amount:    int64(i),
			Status:    StatusSuccess,
			Timestamp: time.Now().UTC(),
		})
	}

	log := s.List("session-1")
	if len(log) != 200 {
		t.Fatalf("expected 200 records, got %d", len(log))
	}
	if log[0].ID != "rec-249" {
		t.Fatalf("expected newest record first, got %s", log[0].ID)
	}
	if log[199].ID != "rec-50" {
		t.Fatalf("expected the 50 oldest dropped, tail is %s", log[199].ID)
	}
}

func TestListIsNewestFirst(t *testing.T) {
	s := NewStore(10)
	s.Append("s", Record{ID: "first"})
	s.Append("s", Record{ID: "second"})

	log := s.List("s")
	if len(log) != 2 || log[0].ID != "second" || log[1].ID != "first" {
		t.Fatalf("unexpected order: %+v", log)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore(10)
	s.Append("a", Record{ID: "a-1"})

	if got := s.List("b"); len(got) != 0 {
		t.Fatalf("expected empty log for other session, got %d entries", len(got))
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := NewStore(10)
	s.Append("s", Record{ID: "only"})

	log := s.List("s")
	log[0].ID = "mutated"

	if s.List("s")[0].ID != "only" {
		t.Fatal("List must return a defensive copy")
	}
}
