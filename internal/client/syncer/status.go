package syncer

import (
	"sync"
	"time"
)

// State is the coarse sync state shown to the user.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Status is a point-in-time view of the engine.
type Status struct {
	State State
	// LastSynced is the start time of the last successful pass in this
	// process, by the server clock.
	LastSynced *time.Time
	LastError  string
}

type statusTracker struct {
	mu       sync.Mutex
	inFlight int
	status   Status
}

func (s *statusTracker) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight++
	s.status.State = StateSyncing
}

func (s *statusTracker) finish(res Result, started time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	if res.Success {
		s.status.LastSynced = &started
		s.status.LastError = ""
	} else {
		s.status.LastError = res.Error
	}

	if s.inFlight > 0 {
		return
	}
	if res.Success {
		s.status.State = StateSuccess
	} else {
		s.status.State = StateError
	}
}

func (s *statusTracker) snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status
	if st.State == "" {
		st.State = StateIdle
	}
	return st
}
