package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattzyzz/LMS-sub000/internal/events"
	"github.com/mattzyzz/LMS-sub000/internal/models"
	"github.com/mattzyzz/LMS-sub000/internal/repositories"
	"github.com/mattzyzz/LMS-sub000/internal/scoring"
	"github.com/mattzyzz/LMS-sub000/internal/validator"
)

// AttemptService drives the attempt lifecycle: start (or resume), submit with
// synchronous grading, and result reads. All operations are scoped to the
// calling learner.
type AttemptService interface {
	Start(ctx context.Context, userID string, req *StartAttemptRequest) (*models.QuizAttempt, error)
	Submit(ctx context.Context, userID string, attemptID uint, req *SubmitAttemptRequest) (*AttemptResult, error)
	GetResult(ctx context.Context, userID string, attemptID uint) (*AttemptResult, error)
	List(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error)
	GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error)
}

// ===== REQUEST TYPES =====

type StartAttemptRequest struct {
	QuizID uint `json:"quiz_id" validate:"required"`
}

type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" validate:"dive"`
}

// SubmittedAnswer is one answer in a submit payload. Answers referencing
// questions outside the quiz are dropped; when the same question appears more
// than once the last occurrence wins.
type SubmittedAnswer struct {
	QuestionID        uint    `json:"question_id" validate:"required"`
	SelectedOptionIDs []uint  `json:"selected_option_ids"`
	FreeTextAnswer    *string `json:"free_text_answer"`
}

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a new attempt or resumes the learner's existing in_progress
// attempt for the quiz. Resume is idempotent and free: it never consumes the
// attempt limit. Only submitted attempts count against max_attempts, so an
// abandoned in_progress attempt never locks a learner out.
func (s *attemptService) Start(ctx context.Context, userID string, req *StartAttemptRequest) (*models.QuizAttempt, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if active, err := s.repo.Attempt().GetActive(ctx, userID, quiz.ID); err != nil {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	} else if active != nil {
		s.logger.Info("Resuming attempt", "attempt_id", active.ID, "quiz_id", quiz.ID, "user_id", userID)
		return active, nil
	}

	terminal, err := s.repo.Attempt().CountTerminal(ctx, userID, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if terminal >= int64(quiz.MaxAttempts) {
		return nil, ErrAttemptLimitExceeded
	}

	attempt := &models.QuizAttempt{
		UserID:    userID,
		QuizID:    quiz.ID,
		Status:    models.AttemptInProgress,
		StartedAt: s.now(),
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a race with a concurrent start for the same learner; the
			// winner's attempt is the one to resume.
			active, activeErr := s.repo.Attempt().GetActive(ctx, userID, quiz.ID)
			if activeErr != nil {
				return nil, fmt.Errorf("failed to resume concurrent attempt: %w", activeErr)
			}
			if active != nil {
				return active, nil
			}
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started", "attempt_id", attempt.ID, "quiz_id", quiz.ID, "user_id", userID)

	if err := s.publisher.PublishAttemptEvent(ctx, events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID:        attempt.ID,
		QuizID:           quiz.ID,
		QuizTitle:        quiz.Title,
		UserID:           userID,
		StartedAt:        attempt.StartedAt,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
	}); err != nil {
		s.logger.Error("Failed to publish attempt started event", "attempt_id", attempt.ID, "error", err)
	}

	return attempt, nil
}

// Submit grades the payload against the current quiz definition and writes
// the terminal state in one transaction. The quiz time limit is advisory:
// clients enforce it, the server accepts late submissions.
func (s *attemptService) Submit(ctx context.Context, userID string, attemptID uint, req *SubmitAttemptRequest) (*AttemptResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetOwned(ctx, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.IsTerminal() {
		return nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	submissions := make([]scoring.Submission, 0, len(req.Answers))
	for _, answer := range req.Answers {
		submissions = append(submissions, scoring.Submission{
			QuestionID:        answer.QuestionID,
			SelectedOptionIDs: answer.SelectedOptionIDs,
			FreeTextAnswer:    answer.FreeTextAnswer,
		})
	}

	graded := scoring.Score(quiz, submissions)

	submittedAt := s.now()
	attempt.Status = models.AttemptSubmitted
	attempt.Score = &graded.TotalScore
	attempt.MaxScore = &graded.MaxScore
	attempt.Passed = &graded.Passed
	attempt.SubmittedAt = &submittedAt

	answerRows := make([]*models.AttemptAnswer, 0, len(graded.Answers))
	for _, result := range graded.Answers {
		row := &models.AttemptAnswer{
			AttemptID:      attempt.ID,
			QuestionID:     result.QuestionID,
			FreeTextAnswer: result.FreeTextAnswer,
			IsCorrect:      result.IsCorrect,
			PointsEarned:   result.PointsEarned,
		}
		if err := row.EncodeSelectedOptions(result.SelectedOptionIDs); err != nil {
			return nil, fmt.Errorf("failed to encode answer options: %w", err)
		}
		answerRows = append(answerRows, row)
	}

	if err := s.repo.Attempt().FinalizeSubmission(ctx, attempt, answerRows); err != nil {
		if errors.Is(err, repositories.ErrNotInProgress) {
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to finalize submission: %w", err)
	}
	attempt.Answers = make([]models.AttemptAnswer, 0, len(answerRows))
	for _, row := range answerRows {
		attempt.Answers = append(attempt.Answers, *row)
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"user_id", userID,
		"score", graded.TotalScore,
		"max_score", graded.MaxScore,
		"passed", graded.Passed)

	if err := s.publisher.PublishAttemptEvent(ctx, events.EventAttemptSubmitted, events.AttemptSubmittedEvent{
		AttemptID:   attempt.ID,
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		UserID:      userID,
		SubmittedAt: submittedAt,
		Score:       graded.TotalScore,
		MaxScore:    graded.MaxScore,
		Passed:      graded.Passed,
	}); err != nil {
		s.logger.Error("Failed to publish attempt submitted event", "attempt_id", attempt.ID, "error", err)
	}

	return buildAttemptResult(attempt, quiz), nil
}

// GetResult returns the learner's view of an attempt. For an in_progress
// attempt the aggregates are nil; for a submitted one the detail section
// follows the quiz's current show_results flag.
func (s *attemptService) GetResult(ctx context.Context, userID string, attemptID uint) (*AttemptResult, error) {
	attempt, err := s.repo.Attempt().GetOwnedWithAnswers(ctx, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, attempt.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	return buildAttemptResult(attempt, quiz), nil
}

func (s *attemptService) List(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error) {
	attempts, err := s.repo.Attempt().ListByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (s *attemptService) GetStats(ctx context.Context, quizID uint) (*repositories.AttemptStats, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	stats, err := s.repo.Attempt().GetStats(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}
	return stats, nil
}
