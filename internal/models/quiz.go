package models

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	FreeText       QuestionType = "free_text"
	Survey         QuestionType = "survey"
)

// IsChoice reports whether the type is graded by option selection.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice
}

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	LessonID    *uint   `json:"lesson_id" gorm:"index"`

	// TimeLimitMinutes is advisory: clients run the countdown, the server
	// accepts late submits unchanged.
	TimeLimitMinutes *int `json:"time_limit_minutes" validate:"omitempty,min=1,max=600"`
	MaxAttempts      int  `json:"max_attempts" gorm:"default:1" validate:"min=1,max=10"`
	PassingScore     int  `json:"passing_score" gorm:"not null;default:70" validate:"min=0,max=100"`

	// Presentation-only flags; scoring never reads them.
	RandomizeQuestions bool `json:"randomize_questions" gorm:"default:false"`
	RandomizeOptions   bool `json:"randomize_options" gorm:"default:false"`

	// ShowResults gates answer-level detail in result projection. It is read
	// live at projection time, not frozen at submit.
	ShowResults bool `json:"show_results" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	QuizID      uint         `json:"quiz_id" gorm:"not null;index"`
	Text        string       `json:"text" gorm:"type:text;not null" validate:"required,min=1"`
	Type        QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Points      int          `json:"points" gorm:"default:1" validate:"min=1"`
	SortOrder   int          `json:"sort_order" gorm:"not null;index"`
	Explanation *string      `json:"explanation" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Options []AnswerOption `json:"options" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// CorrectOptionIDs returns the ids of options flagged correct, in option order.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

type AnswerOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	SortOrder  int    `json:"sort_order" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnswerOption) TableName() string {
	return "quiz_answer_options"
}
