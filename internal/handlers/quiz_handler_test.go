package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
	"github.com/mattzyzz/LMS-sub000/internal/services"
)

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) GetByLessonID(ctx context.Context, lessonID uint) (*models.Quiz, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizService) Create(ctx context.Context, req *services.CreateQuizRequest) (*models.Quiz, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) Update(ctx context.Context, id uint, req *services.UpdateQuizRequest) (*models.Quiz, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQuizService) AddQuestion(ctx context.Context, quizID uint, req *services.QuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, quizID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuizService) UpdateQuestion(ctx context.Context, questionID uint, req *services.QuestionRequest) (*models.Question, error) {
	args := m.Called(ctx, questionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuizService) RemoveQuestion(ctx context.Context, questionID uint) error {
	return m.Called(ctx, questionID).Error(0)
}

func (m *MockQuizService) AddOption(ctx context.Context, questionID uint, req *services.OptionRequest) (*models.AnswerOption, error) {
	args := m.Called(ctx, questionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerOption), args.Error(1)
}

func (m *MockQuizService) UpdateOption(ctx context.Context, optionID uint, req *services.OptionRequest) (*models.AnswerOption, error) {
	args := m.Called(ctx, optionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerOption), args.Error(1)
}

func (m *MockQuizService) RemoveOption(ctx context.Context, optionID uint) error {
	return m.Called(ctx, optionID).Error(0)
}

func setupQuizRouter(quizSvc services.QuizService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewQuizHandler(quizSvc, nil, nil, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())
	v1.GET("/quizzes/:id", handler.GetQuiz)
	return router
}

func sampleQuiz() *models.Quiz {
	explanation := "see handbook"
	return &models.Quiz{
		ID:           7,
		Title:        "Compliance Check",
		MaxAttempts:  2,
		PassingScore: 70,
		ShowResults:  true,
		Questions: []models.Question{
			{
				ID:          1,
				QuizID:      7,
				Text:        "Pick one",
				Type:        models.SingleChoice,
				Points:      1,
				Explanation: &explanation,
				Options: []models.AnswerOption{
					{ID: 11, QuestionID: 1, Text: "right", IsCorrect: true},
					{ID: 12, QuestionID: 1, Text: "wrong"},
				},
			},
		},
	}
}

func TestGetQuizEndpoint_HidesAnswerKey(t *testing.T) {
	svc := new(MockQuizService)
	router := setupQuizRouter(svc)

	svc.On("GetByID", mock.Anything, uint(7)).Return(sampleQuiz(), nil)

	recorder := doJSON(router, http.MethodGet, "/api/v1/quizzes/7", "user-1", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	// The raw payload must not carry correctness flags or explanations.
	body := recorder.Body.String()
	assert.NotContains(t, body, "is_correct")
	assert.NotContains(t, body, "explanation")
	assert.NotContains(t, body, "show_results")

	var view QuizView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &view))
	assert.Equal(t, uint(7), view.ID)
	require.Len(t, view.Questions, 1)
	require.Len(t, view.Questions[0].Options, 2)
}

func TestGetQuizEndpoint_NotFound(t *testing.T) {
	svc := new(MockQuizService)
	router := setupQuizRouter(svc)

	svc.On("GetByID", mock.Anything, uint(99)).Return(nil, services.ErrQuizNotFound)

	recorder := doJSON(router, http.MethodGet, "/api/v1/quizzes/99", "user-1", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
