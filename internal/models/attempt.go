package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	// AttemptSubmitted is the single terminal state: auto-gradable answers are
	// scored in the same write, so "submitted" and "graded" collapse into one.
	AttemptSubmitted AttemptStatus = "submitted"
)

type QuizAttempt struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:64;index;uniqueIndex:uq_quiz_attempts_active,where:status = 'in_progress'"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index;uniqueIndex:uq_quiz_attempts_active,where:status = 'in_progress'"`

	Status AttemptStatus `json:"status" gorm:"not null;size:20;default:in_progress;index"`

	// Score, MaxScore and Passed are nil until the terminal write.
	Score    *int  `json:"score"`
	MaxScore *int  `json:"max_score"`
	Passed   *bool `json:"passed"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz    Quiz            `json:"-" gorm:"foreignKey:QuizID"`
	Answers []AttemptAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// IsTerminal reports whether the attempt counts toward the attempt limit.
func (a *QuizAttempt) IsTerminal() bool {
	return a.Status != AttemptInProgress
}

type AttemptAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index;uniqueIndex:uq_attempt_answers_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:uq_attempt_answers_question"`

	// SelectedOptionIDs holds the submitted option id set for choice questions
	// as a JSON array; order is irrelevant.
	SelectedOptionIDs datatypes.JSON `json:"selected_option_ids" gorm:"type:jsonb"`
	FreeTextAnswer    *string        `json:"free_text_answer" gorm:"type:text"`

	// IsCorrect stays nil for survey and free_text answers.
	IsCorrect    *bool `json:"is_correct"`
	PointsEarned int   `json:"points_earned" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
}

func (AttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}

// SelectedOptions decodes the stored option id set. A missing or empty column
// decodes to nil.
func (a *AttemptAnswer) SelectedOptions() ([]uint, error) {
	if len(a.SelectedOptionIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(a.SelectedOptionIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// EncodeSelectedOptions stores the option id set as JSON.
func (a *AttemptAnswer) EncodeSelectedOptions(ids []uint) error {
	if ids == nil {
		a.SelectedOptionIDs = nil
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.SelectedOptionIDs = raw
	return nil
}
