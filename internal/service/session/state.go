// Package session drives an intake session through its events and enforces
// the order in which they may happen.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a session.
type State int

const (
	// StateNew - Session created, nothing submitted yet.
	StateNew State = iota
	// StateInfoSubmitted - Doctor name and location recorded.
	StateInfoSubmitted
	// StatePopulated - Form slots filled from a recording.
	StatePopulated
	// StateSaved - Form persisted. A new recording starts the next encounter.
	StateSaved
	// StateClosed - Terminal. Every event is rejected.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateInfoSubmitted:
		return "INFO_SUBMITTED"
	case StatePopulated:
		return "POPULATED"
	case StateSaved:
		return "SAVED"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoAudio         = errors.New("no audio supplied")
)

// Lifecycle manages the state machine for a single session.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	NEW ──SubmitInfo──→ INFO_SUBMITTED ──Populate──→ POPULATED ──Save──→ SAVED
//	 │                                                  ↑                 │
//	 └──────────────Populate / Save (any open state)────┴───Populate──────┘
//
// Rules:
//   - SubmitInfo, Populate and Save are accepted in every open state
//   - SubmitInfo only moves NEW and SAVED forward; it keeps a populated form
//   - Close is allowed from any state and is idempotent
//   - CLOSED: every transition returns ErrSessionClosed
type Lifecycle struct {
	mu        sync.RWMutex
	sessionId string
	state     State
	encounter int
}

// NewLifecycle creates a new session lifecycle in NEW state.
func NewLifecycle(sessionId string) *Lifecycle {
	return &Lifecycle{
		sessionId: sessionId,
		state:     StateNew,
	}
}

func (l *Lifecycle) SessionId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessionId
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Encounter returns how many forms have been populated in this session.
func (l *Lifecycle) Encounter() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.encounter
}

func (l *Lifecycle) IsClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateClosed
}

// CheckOpen returns ErrSessionClosed once the session is closed.
func (l *Lifecycle) CheckOpen() error {
	if l.IsClosed() {
		return ErrSessionClosed
	}
	return nil
}

// SubmitInfo records that doctor information was submitted.
func (l *Lifecycle) SubmitInfo() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateNew, StateSaved:
		l.state = StateInfoSubmitted
		return nil
	case StateInfoSubmitted, StatePopulated:
		return nil
	case StateClosed:
		return ErrSessionClosed
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// Populate records that the form was filled from a recording.
func (l *Lifecycle) Populate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateNew, StateInfoSubmitted, StatePopulated, StateSaved:
		l.state = StatePopulated
		l.encounter++
		return nil
	case StateClosed:
		return ErrSessionClosed
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// Save records that the form was persisted.
func (l *Lifecycle) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateNew, StateInfoSubmitted, StatePopulated, StateSaved:
		l.state = StateSaved
		return nil
	case StateClosed:
		return ErrSessionClosed
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// Close transitions the session to CLOSED. It reports false if it was
// already closed.
func (l *Lifecycle) Close() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return false
	}
	l.state = StateClosed
	return true
}
