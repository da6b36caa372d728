package state

import (
	"sync"
	"time"

	"icon-server/internal/types"
)

// ServerState holds process-wide generation counters
type ServerState struct {
	generated   int64
	failed      int64
	bytesServed int64
	lastError   string
	startedAt   time.Time
	lastAt      time.Time
	mutex       sync.RWMutex
}

var globalState = New()

// New returns an empty ServerState started now
func New() *ServerState {
	return &ServerState{startedAt: time.Now()}
}

// Global returns the process-wide state
func Global() *ServerState {
	return globalState
}

// RecordSuccess counts a generated icon of n bytes
func (s *ServerState) RecordSuccess(n int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.generated++
	s.bytesServed += int64(n)
	s.lastAt = time.Now()
}

// RecordFailure counts a failed generation
func (s *ServerState) RecordFailure(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failed++
	if err != nil {
		s.lastError = err.Error()
	}
	s.lastAt = time.Now()
}

// Snapshot returns a copy of the counters for JSON output
func (s *ServerState) Snapshot() types.ServerStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := types.ServerStats{
		Generated:   s.generated,
		Failed:      s.failed,
		BytesServed: s.bytesServed,
		LastError:   s.lastError,
		StartedAt:   s.startedAt.UTC().Format(time.RFC3339),
	}
	if !s.lastAt.IsZero() {
		stats.LastAt = s.lastAt.UTC().Format(time.RFC3339)
	}
	return stats
}
