package events

import (
	"time"
)

// EventType identifies attempt lifecycle events consumed by downstream
// analytics (course completion aggregation) and notification services.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
)

// AttemptEvent is the envelope published for every attempt transition.
type AttemptEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

type AttemptStartedEvent struct {
	AttemptID        uint      `json:"attempt_id"`
	QuizID           uint      `json:"quiz_id"`
	QuizTitle        string    `json:"quiz_title"`
	UserID           string    `json:"user_id"`
	StartedAt        time.Time `json:"started_at"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
}

type AttemptSubmittedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	QuizID      uint      `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Passed      bool      `json:"passed"`
}
