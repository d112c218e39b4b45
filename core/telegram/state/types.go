package state

import "time"

// Step identifies the next input a conversation expects.
type Step string

const (
	// StepIdle is reported for users without an active session. It is never stored.
	StepIdle Step = "idle"
	// StepChoosingMood waits for a mood selection.
	StepChoosingMood Step = "choosing_mood"
	// StepChoosingPalette waits for a palette selection.
	StepChoosingPalette Step = "choosing_palette"
	// StepChoosingSubject waits for a subject selection.
	StepChoosingSubject Step = "choosing_subject"
	// StepWaitingForDescription waits for the free-text description.
	StepWaitingForDescription Step = "waiting_for_description"
)

// Next returns the step that follows s. The last step and StepIdle have no successor.
func (s Step) Next() (Step, bool) {
	switch s {
	case StepChoosingMood:
		return StepChoosingPalette, true
	case StepChoosingPalette:
		return StepChoosingSubject, true
	case StepChoosingSubject:
		return StepWaitingForDescription, true
	default:
		return "", false
	}
}

// Valid reports whether s is a step a stored session may be in.
func (s Step) Valid() bool {
	switch s {
	case StepChoosingMood, StepChoosingPalette, StepChoosingSubject, StepWaitingForDescription:
		return true
	}
	return false
}

// Session is one user's conversation record.
// Mood, Palette and Subject are set once their selection step has completed.
type Session struct {
	ID        string
	Step      Step
	Mood      string
	Palette   string
	Subject   string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Store owns the sessions. Implementations hand out copies, never live records.
type Store interface {
	// Get returns the user's session, or false when there is none.
	Get(userID int64) (Session, bool)
	// Start creates a fresh session at StepChoosingMood, replacing any existing one.
	Start(userID int64) Session
	// Update applies fn to the existing session atomically.
	// It returns false without calling fn when the user has no session.
	Update(userID int64, fn func(*Session)) (Session, bool)
	// Finish removes and returns the session when it is still sessionID and
	// waits for the description. Otherwise nothing changes and ok is false.
	Finish(userID int64, sessionID string) (Session, bool)
	// Clear removes the user's session. Clearing a missing session is a no-op.
	Clear(userID int64)
	// Len reports the number of active sessions.
	Len() int
}
