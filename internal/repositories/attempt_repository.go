package repositories

import (
	"context"

	"github.com/mattzyzz/LMS-sub000/internal/models"
)

// AttemptRepository owns quiz attempts and their answer rows.
type AttemptRepository interface {
	// Create inserts a new in_progress attempt. A partial unique index on
	// (user_id, quiz_id) where status = 'in_progress' backs the "at most one
	// active attempt" invariant; a conflicting insert surfaces as a
	// duplicate-key error (see IsDuplicateError).
	Create(ctx context.Context, attempt *models.QuizAttempt) error

	// GetOwned loads an attempt only when it belongs to userID. A missing row
	// and an attempt owned by someone else are indistinguishable: both are
	// not-found.
	GetOwned(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error)
	GetOwnedWithAnswers(ctx context.Context, id uint, userID string) (*models.QuizAttempt, error)

	// GetActive returns the user's in_progress attempt for the quiz, or nil
	// when there is none.
	GetActive(ctx context.Context, userID string, quizID uint) (*models.QuizAttempt, error)

	// CountTerminal counts the user's submitted attempts for the quiz; these
	// are the ones consuming the attempt limit.
	CountTerminal(ctx context.Context, userID string, quizID uint) (int64, error)

	// ListByUserAndQuiz returns the user's attempts for the quiz, newest
	// first.
	ListByUserAndQuiz(ctx context.Context, userID string, quizID uint) ([]*models.QuizAttempt, error)

	// ListByQuiz returns every submitted attempt for the quiz, oldest first.
	// Instructor-facing: feeds the results export.
	ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error)

	// FinalizeSubmission writes the terminal state: it flips the attempt from
	// in_progress to submitted with a compare-and-swap on status and inserts
	// the graded answer rows in the same transaction. If the attempt is no
	// longer in_progress nothing is written and ErrNotInProgress is returned.
	FinalizeSubmission(ctx context.Context, attempt *models.QuizAttempt, answers []*models.AttemptAnswer) error

	// GetStats aggregates attempt counts, average score and pass rate for a
	// quiz; read-only, consumed by the analytics surface.
	GetStats(ctx context.Context, quizID uint) (*AttemptStats, error)
}
