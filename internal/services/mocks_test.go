package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== MOCK REPOSITORY =====

type MockRepository struct {
	QuizRepo    *MockQuizRepository
	AttemptRepo *MockAttemptRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		QuizRepo:    new(MockQuizRepository),
		AttemptRepo: new(MockAttemptRepository),
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository       { return m.QuizRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository { return m.AttemptRepo }

func (m *MockRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuestion(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) CreateQuestionsBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuizRepository) CreateOption(ctx context.Context, option *models.AnswerOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockQuizRepository) GetOptionByID(ctx context.Context, id uint) (*models.AnswerOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerOption), args.Error(1)
}

func (m *MockQuizRepository) UpdateOption(ctx context.Context, option *models.AnswerOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteOption(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) MaxSortOrder(ctx context.Context, quizID uint) (int, error) {
	args := m.Called(ctx, quizID)
	return args.Int(0), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetOwned(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetOwnedWithAnswers(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActive(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CountTerminal(ctx context.Context, userID string, quizID uint) (int64, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) FinalizeSubmission(ctx context.Context, attempt *models.QuizAttempt, answers []*models.AttemptAnswer) error {
	args := m.Called(ctx, attempt, answers)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.AttemptStats), args.Error(1)
}
