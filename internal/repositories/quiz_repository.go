package repositories

import (
	"context"

	"github.com/mattzyzz/LMS-sub000/internal/models"
)

// QuizRepository owns the quiz definition: the quiz row plus its ordered
// questions and options.
//
// GetByID and GetByLessonID return the full nested structure with questions
// and options sorted by sort_order ascending, ties broken by id, so callers
// always see the same reproducible order.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)

	// Question management
	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestionByID(ctx context.Context, id uint) (*models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uint) error
	CreateQuestionsBatch(ctx context.Context, questions []*models.Question) error

	// Option management
	CreateOption(ctx context.Context, option *models.AnswerOption) error
	GetOptionByID(ctx context.Context, id uint) (*models.AnswerOption, error)
	UpdateOption(ctx context.Context, option *models.AnswerOption) error
	DeleteOption(ctx context.Context, id uint) error

	// MaxSortOrder returns the highest question sort_order in the quiz, zero
	// when the quiz has no questions.
	MaxSortOrder(ctx context.Context, quizID uint) (int, error)
}
