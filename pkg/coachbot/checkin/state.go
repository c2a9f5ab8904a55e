// Package checkin holds the conversation-state and formatting core for
// check-ins: which prompt (if any) the bot is currently waiting on, and how
// a free-text reply becomes a daily-note entry.
package checkin

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a check-in type.
type Kind string

const (
	// KindNone means no check-in reply is pending.
	KindNone Kind = ""

	// KindMorning is the morning routine check-in.
	KindMorning Kind = "morning"

	// KindEvening is the evening exercise check-in.
	KindEvening Kind = "evening"
)

// Label returns the human-readable name used in headings and /status output.
func (k Kind) Label() string {
	switch k {
	case KindMorning:
		return "Morning routine"
	case KindEvening:
		return "Exercise"
	default:
		return "None"
	}
}

// State tracks the single outstanding check-in prompt. The scheduler's fire
// callbacks and the message loop run on separate goroutines, so every access
// goes through the mutex. At most one prompt is outstanding at a time: a
// second Arm overwrites the first, it never queues.
type State struct {
	mu sync.Mutex

	// waitingFor is the check-in the next non-command reply answers.
	waitingFor Kind

	// armedAt is when the state last transitioned into a waiting kind.
	armedAt time.Time

	// promptID correlates the outstanding prompt with its reply in logs.
	promptID string
}

// NewState returns a State with no pending check-in.
func NewState() *State {
	return &State{}
}

// Arm marks the given check-in as pending and returns a fresh correlation ID
// for the prompt. Last writer wins.
func (s *State) Arm(kind Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waitingFor = kind
	s.armedAt = time.Now()
	s.promptID = uuid.NewString()
	return s.promptID
}

// Disarm clears the pending check-in.
func (s *State) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waitingFor = KindNone
	s.promptID = ""
}

// Peek returns the currently pending check-in kind without mutating state.
func (s *State) Peek() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitingFor
}

// Snapshot returns the pending kind, when it was armed, and the prompt
// correlation ID. armedAt is the zero time when nothing was ever armed.
func (s *State) Snapshot() (Kind, time.Time, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitingFor, s.armedAt, s.promptID
}
