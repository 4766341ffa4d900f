package history

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	// StatusSuccess marks an attempt the provider confirmed.
	StatusSuccess = "success"
	// StatusError marks a failed or compensated attempt.
	StatusError = "error"

	defaultLimit = 200
)

// Record is one withdrawal attempt as seen by the panel. Details carries
// the opaque provider response or failure payload.
type Record struct {
	ID        string          `json:"id"`
	Amount    int64           `json:"amount"`
	Operator  string          `json:"operator"`
	Status    string          `json:"status"`
	Details   json.RawMessage `json:"details"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store keeps a bounded most-recent-first transaction log per session.
// Sessions are disjoint; there is no cross-session visibility.
type Store struct {
	mu      sync.RWMutex
	limit   int
	entries map[string][]Record
}

// NewStore builds a store capped at limit records per session.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Store{limit: limit, entries: make(map[string][]Record)}
}

// Append inserts the record at the front of the session's log, evicting the
// oldest entries once the cap is exceeded.
func (s *Store) Append(sessionID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append([]Record{rec}, s.entries[sessionID]...)
	if len(log) > s.limit {
		log = log[:s.limit]
	}
	s.entries[sessionID] = log
}

// List returns a copy of the session's records, newest first.
func (s *Store) List(sessionID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.entries[sessionID]
	out := make([]Record, len(log))
	copy(out, log)
	return out
}
